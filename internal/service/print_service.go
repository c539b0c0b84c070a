package service

import (
	"context"
	"errors"

	"vendapos/internal/apperror"
	"vendapos/internal/dto"
	"vendapos/internal/model"
	"vendapos/internal/printing"
	"vendapos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type PrintService interface {
	RegisterDevice(ctx context.Context, companyID uuid.UUID, req dto.RegisterDeviceRequest) error
	CreatePrinter(ctx context.Context, companyID uuid.UUID, req dto.CreatePrinterRequest) (*dto.PrinterResponse, error)
	ListPrinters(ctx context.Context, companyID uuid.UUID) ([]dto.PrinterResponse, error)
	SetDefault(ctx context.Context, companyID, id uuid.UUID) error
	// Dispatch never fails; problems are reported inside the result.
	Dispatch(ctx context.Context, companyID uuid.UUID, computerID, content string, cut bool) printing.Result
	Status(ctx context.Context, companyID uuid.UUID, name string) (*dto.PrinterStatusResponse, error)
}

type printService struct {
	resolver  *printing.Resolver
	devices   printing.DeviceRegistry
	printers  repository.PrinterRepository
	transport printing.Transport
	now       clock
}

func NewPrintService(
	devices printing.DeviceRegistry,
	printers repository.PrinterRepository,
	transport printing.Transport,
) PrintService {
	return &printService{
		resolver:  printing.NewResolver(devices, printers, transport),
		devices:   devices,
		printers:  printers,
		transport: transport,
	}
}

// deviceKey namespaces client computers per company.
func deviceKey(companyID uuid.UUID, computerID string) string {
	if computerID == "" {
		return ""
	}
	return companyID.String() + ":" + computerID
}

func (s *printService) RegisterDevice(ctx context.Context, companyID uuid.UUID, req dto.RegisterDeviceRequest) error {
	list := make([]printing.DevicePrinter, 0, len(req.Printers))
	for _, p := range req.Printers {
		list = append(list, printing.DevicePrinter{Name: p.Name, Address: p.Address, IsDefault: p.IsDefault, Online: p.Online})
	}
	if err := s.devices.Register(ctx, deviceKey(companyID, req.ComputerID), list); err != nil {
		return apperror.Integrity(err)
	}
	return nil
}

func (s *printService) CreatePrinter(ctx context.Context, companyID uuid.UUID, req dto.CreatePrinterRequest) (*dto.PrinterResponse, error) {
	width := req.PaperWidth
	if width == 0 {
		width = 32
	}
	p := &model.Printer{
		CompanyID:      companyID,
		Name:           req.Name,
		ConnectionType: req.ConnectionType,
		Address:        req.Address,
		PaperWidth:     width,
		IsDefault:      req.IsDefault,
		IsConnected:    true,
	}
	err := runTx(ctx, s.printers.DB(), func(tx *gorm.DB) error {
		if p.IsDefault {
			if err := s.printers.ClearDefaultTx(tx, companyID); err != nil {
				return err
			}
		}
		return s.printers.CreateTx(tx, p)
	})
	if err != nil {
		if repository.IsUniqueViolation(err, "") {
			return nil, apperror.Conflict(apperror.CodeDuplicate, "Já existe uma impressora com este nome").
				WithDetail("name", req.Name)
		}
		return nil, asAppError(err)
	}
	resp := printerToResponse(p)
	return &resp, nil
}

func (s *printService) ListPrinters(ctx context.Context, companyID uuid.UUID) ([]dto.PrinterResponse, error) {
	ps, err := s.printers.List(ctx, companyID)
	if err != nil {
		return nil, asAppError(err)
	}
	out := make([]dto.PrinterResponse, 0, len(ps))
	for i := range ps {
		out = append(out, printerToResponse(&ps[i]))
	}
	return out, nil
}

func (s *printService) SetDefault(ctx context.Context, companyID, id uuid.UUID) error {
	err := runTx(ctx, s.printers.DB(), func(tx *gorm.DB) error {
		if err := s.printers.ClearDefaultTx(tx, companyID); err != nil {
			return err
		}
		ok, err := s.printers.SetDefaultTx(tx, companyID, id)
		if err != nil {
			return err
		}
		if !ok {
			return apperror.NotFound("Impressora")
		}
		return nil
	})
	return asAppError(err)
}

func (s *printService) Dispatch(ctx context.Context, companyID uuid.UUID, computerID, content string, cut bool) printing.Result {
	res := s.resolver.Dispatch(ctx, printing.Request{
		CompanyID:  companyID,
		ComputerID: deviceKey(companyID, computerID),
		Content:    content,
		Cut:        cut,
	})
	if !res.Success && res.Details != nil {
		log.Warn().
			Str("company_id", companyID.String()).
			Str("printer", res.PrinterName).
			Str("reason", res.Details.Reason).
			Msg("print_service: dispatch failed")
	}
	return res
}

// Status checks a company printer by name, falling back to a printer the
// transport knows on its own.
func (s *printService) Status(ctx context.Context, companyID uuid.UUID, name string) (*dto.PrinterStatusResponse, error) {
	target := printing.Target{Name: name}
	var dbPrinter *model.Printer
	p, err := s.printers.FindByName(ctx, companyID, name)
	switch {
	case err == nil:
		dbPrinter = p
		target.Address = deref(p.Address)
	case !repository.IsNotFound(err):
		return nil, asAppError(err)
	}

	st, err := s.resolver.CheckStatus(ctx, target)
	if errors.Is(err, printing.ErrUnknownPrinter) {
		return nil, apperror.NotFound("Impressora")
	}
	if err != nil {
		log.Warn().Err(err).Str("printer", name).Msg("print_service: status check failed")
		st = printing.Status{}
	}
	if dbPrinter != nil {
		if uErr := s.printers.UpdateStatus(ctx, dbPrinter.ID, st.Online, s.now.now()); uErr != nil {
			log.Warn().Err(uErr).Str("printer", name).Msg("print_service: could not persist status")
		}
	}
	return &dto.PrinterStatusResponse{Name: name, Online: st.Online, PaperOK: st.PaperOK}, nil
}
