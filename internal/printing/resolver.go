package printing

import (
	"context"
	"fmt"
	"time"

	"vendapos/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Tier names which fallback level picked the printer.
type Tier string

const (
	TierClientDevice Tier = "client_device"
	TierCompany      Tier = "company"
	TierSystem       Tier = "system"
)

// Failure reasons reported in Result.Details.
const (
	ReasonNoPrinter   = "no_printer"
	ReasonOffline     = "offline"
	ReasonPaperError  = "paper_error"
	ReasonPrintFailed = "print_failed"
)

// Details explains a failed dispatch.
type Details struct {
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

// Result is returned by Dispatch for every outcome; callers never get an error.
type Result struct {
	Success     bool     `json:"success"`
	PrinterName string   `json:"printerName,omitempty"`
	Tier        Tier     `json:"tier,omitempty"`
	Details     *Details `json:"details,omitempty"`
}

// PrinterStore is the company printer table. repository.PrinterRepository
// satisfies it.
type PrinterStore interface {
	ListConnected(ctx context.Context, companyID uuid.UUID) ([]model.Printer, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, connected bool, checkedAt time.Time) error
}

type Request struct {
	CompanyID  uuid.UUID
	ComputerID string
	Content    string
	Cut        bool
}

// Resolver picks a printer through three tiers (client device, company
// printers, system printers) and prints to it.
type Resolver struct {
	devices   DeviceRegistry
	printers  PrinterStore
	transport Transport
	now       func() time.Time
}

func NewResolver(devices DeviceRegistry, printers PrinterStore, transport Transport) *Resolver {
	return &Resolver{devices: devices, printers: printers, transport: transport, now: time.Now}
}

type candidate struct {
	target    Target
	tier      Tier
	printerID *uuid.UUID
}

// Dispatch prints req.Content. Failures come back inside Result.
func (r *Resolver) Dispatch(ctx context.Context, req Request) (res Result) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Interface("panic", rec).Str("company_id", req.CompanyID.String()).Msg("printing: dispatch panicked")
			res = failure("", "", ReasonPrintFailed, "Falha inesperada ao imprimir")
		}
	}()

	c, ok := r.resolve(ctx, req)
	if !ok {
		return failure("", "", ReasonNoPrinter, "Nenhuma impressora disponível")
	}

	status, err := r.transport.CheckStatus(ctx, c.target)
	if err != nil || !status.Online {
		return failure(c.target.Name, c.tier, ReasonOffline, fmt.Sprintf("Impressora %s está offline", c.target.Name))
	}
	if !status.PaperOK {
		return failure(c.target.Name, c.tier, ReasonPaperError, fmt.Sprintf("Impressora %s sem papel ou com erro de papel", c.target.Name))
	}

	if err := r.transport.Print(ctx, c.target, req.Content, req.Cut); err != nil {
		log.Warn().Err(err).Str("printer", c.target.Name).Str("tier", string(c.tier)).Msg("printing: print command failed")
		return failure(c.target.Name, c.tier, ReasonPrintFailed, fmt.Sprintf("Falha ao enviar impressão para %s", c.target.Name))
	}

	if c.printerID != nil && r.printers != nil {
		if err := r.printers.UpdateStatus(ctx, *c.printerID, true, r.now()); err != nil {
			log.Warn().Err(err).Str("printer", c.target.Name).Msg("printing: could not update last status check")
		}
	}
	return Result{Success: true, PrinterName: c.target.Name, Tier: c.tier}
}

// CheckStatus asks the transport directly for the named printer.
func (r *Resolver) CheckStatus(ctx context.Context, t Target) (Status, error) {
	return r.transport.CheckStatus(ctx, t)
}

func (r *Resolver) resolve(ctx context.Context, req Request) (candidate, bool) {
	if req.ComputerID != "" && r.devices != nil {
		printers, err := r.devices.Lookup(ctx, req.ComputerID)
		if err != nil {
			log.Warn().Err(err).Str("computer_id", req.ComputerID).Msg("printing: device registry lookup failed")
		}
		if p, ok := pickDevicePrinter(printers); ok {
			return candidate{target: Target{Name: p.Name, Address: p.Address}, tier: TierClientDevice}, true
		}
	}

	if r.printers != nil {
		printers, err := r.printers.ListConnected(ctx, req.CompanyID)
		if err != nil {
			log.Warn().Err(err).Str("company_id", req.CompanyID.String()).Msg("printing: company printers lookup failed")
		}
		if len(printers) > 0 {
			p := printers[0]
			id := p.ID
			var addr string
			if p.Address != nil {
				addr = *p.Address
			}
			return candidate{target: Target{Name: p.Name, Address: addr}, tier: TierCompany, printerID: &id}, true
		}
	}

	system, err := r.transport.ListSystemPrinters(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("printing: listing system printers failed")
	}
	if p, ok := pickSystemPrinter(system); ok {
		return candidate{target: Target{Name: p.Name}, tier: TierSystem}, true
	}
	return candidate{}, false
}

func pickDevicePrinter(ps []DevicePrinter) (DevicePrinter, bool) {
	for _, p := range ps {
		if p.IsDefault && p.Online {
			return p, true
		}
	}
	for _, p := range ps {
		if p.Online {
			return p, true
		}
	}
	return DevicePrinter{}, false
}

func pickSystemPrinter(ps []SystemPrinter) (SystemPrinter, bool) {
	for _, p := range ps {
		if p.IsDefault && p.Online {
			return p, true
		}
	}
	for _, p := range ps {
		if p.Online {
			return p, true
		}
	}
	return SystemPrinter{}, false
}

func failure(name string, tier Tier, reason, msg string) Result {
	return Result{
		Success:     false,
		PrinterName: name,
		Tier:        tier,
		Details:     &Details{Reason: reason, Message: msg},
	}
}
