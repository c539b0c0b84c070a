package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"vendapos/internal/dto"
	"vendapos/internal/fiscal"
	"vendapos/internal/model"
	"vendapos/internal/printing"
	"vendapos/internal/render"
	"vendapos/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ── Printer transport double ─────────────────────────────────────────────────

type stubTransport struct {
	mu       sync.Mutex
	system   []printing.SystemPrinter
	status   printing.Status
	printErr error
	printed  []string
}

func (t *stubTransport) ListSystemPrinters(context.Context) ([]printing.SystemPrinter, error) {
	return t.system, nil
}

func (t *stubTransport) CheckStatus(_ context.Context, target printing.Target) (printing.Status, error) {
	for _, p := range t.system {
		if p.Name == target.Name {
			return t.status, nil
		}
	}
	if target.Address != "" {
		return t.status, nil
	}
	return printing.Status{}, printing.ErrUnknownPrinter
}

func (t *stubTransport) Print(_ context.Context, _ printing.Target, text string, _ bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.printErr != nil {
		return t.printErr
	}
	t.printed = append(t.printed, text)
	return nil
}

// ── Fiscal issuer doubles ────────────────────────────────────────────────────

type failingIssuer struct{ err error }

func (f failingIssuer) Issue(context.Context, fiscal.Request) (*fiscal.Authorization, error) {
	return nil, f.err
}

func (f failingIssuer) Cancel(context.Context, string, string, string) error { return f.err }

// switchIssuer fails until healed, then delegates to the mock issuer.
type switchIssuer struct {
	mu     sync.Mutex
	healed bool
	mock   *fiscal.MockIssuer
}

func (s *switchIssuer) heal() {
	s.mu.Lock()
	s.healed = true
	s.mu.Unlock()
}

func (s *switchIssuer) Issue(ctx context.Context, req fiscal.Request) (*fiscal.Authorization, error) {
	s.mu.Lock()
	healed := s.healed
	s.mu.Unlock()
	if !healed {
		return nil, errors.New("gateway timeout")
	}
	auth, err := s.mock.Issue(ctx, req)
	if err == nil {
		auth.Status = "Autorizada"
	}
	return auth, err
}

func (s *switchIssuer) Cancel(context.Context, string, string, string) error { return nil }

type recordingQueue struct {
	mu   sync.Mutex
	jobs []dto.ReceiptEmailJob
	err  error
}

func (q *recordingQueue) EnqueueEmail(_ context.Context, payload interface{}) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, payload.(dto.ReceiptEmailJob))
	return nil
}

// ── Fixture ──────────────────────────────────────────────────────────────────

type fixture struct {
	store     *memStore
	company   *model.Company
	seller    *model.Seller
	transport *stubTransport
	queue     *recordingQueue

	prints   service.PrintService
	fiscal   service.FiscalService
	closures service.CashClosureService
	sales    service.SaleService
	budgets  service.BudgetService
}

type fixtureOption func(*fixtureConfig)

type fixtureConfig struct {
	individualCash bool
	issuer         fiscal.Issuer
	mode           string
}

func withIndividualCash() fixtureOption {
	return func(c *fixtureConfig) { c.individualCash = true }
}

func withIssuer(mode string, issuer fiscal.Issuer) fixtureOption {
	return func(c *fixtureConfig) { c.mode, c.issuer = mode, issuer }
}

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()
	cfg := fixtureConfig{mode: fiscal.ModeMock, issuer: fiscal.NewMockIssuer("https://nfce.test/qrcode")}
	for _, o := range opts {
		o(&cfg)
	}

	store := newMemStore()
	f := &fixture{
		store:     store,
		company:   store.addCompany(cfg.individualCash),
		transport: &stubTransport{status: printing.Status{Online: true, PaperOK: true}},
		queue:     &recordingQueue{},
	}
	f.seller = store.addSeller(f.company.ID, "Ana Souza")
	f.transport.system = []printing.SystemPrinter{{Name: "Balcao", IsDefault: true, Online: true}}

	renderer := render.New(32)
	f.prints = service.NewPrintService(printing.NewMemoryDeviceRegistry(time.Minute), printerRepo{store}, f.transport)
	f.fiscal = service.NewFiscalService(
		fiscalDocRepo{store}, saleRepo{store}, companyRepo{store},
		fiscal.NewFacade(cfg.mode, cfg.issuer, nil), renderer,
		service.FiscalSettings{StateCode: "35", Series: 1, QRCodeBaseURL: "https://nfce.test/qrcode", Homologation: true},
	)
	f.closures = service.NewCashClosureService(closureRepo{store}, saleRepo{store}, companyRepo{store}, f.prints, renderer)
	f.sales = service.NewSaleService(
		saleRepo{store}, productRepo{store}, movementRepo{store}, sellerRepo{store}, companyRepo{store},
		f.closures, closureRepo{store}, f.fiscal, f.prints, f.queue, renderer, 24*time.Hour,
	)
	f.budgets = service.NewBudgetService(budgetRepo{store}, productRepo{store}, companyRepo{store}, f.sales, renderer)
	return f
}

func (f *fixture) openClosure(t *testing.T, amount string) *dto.CashClosureResponse {
	t.Helper()
	resp, err := f.closures.Open(context.Background(), f.company.ID, f.seller.ID, dto.OpenCashClosureRequest{
		OpeningAmount: dec(amount),
	})
	if err != nil {
		t.Fatalf("open closure: %v", err)
	}
	return resp
}

func (f *fixture) sell(t *testing.T, p *model.Product, qty int, payments ...dto.PaymentRequest) *dto.CreateSaleResponse {
	t.Helper()
	noPrint := false
	resp, err := f.sales.CreateSale(context.Background(), f.company.ID, f.seller.ID, dto.CreateSaleRequest{
		Items:          []dto.SaleItemRequest{{ProductID: p.ID.String(), Quantity: qty}},
		PaymentMethods: payments,
		Print:          &noPrint,
	}, nil)
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}
	return resp
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func pay(method, amount string) dto.PaymentRequest {
	return dto.PaymentRequest{Method: method, Amount: dec(amount)}
}

func mustUUID(t *testing.T, s string) uuid.UUID {
	t.Helper()
	id, err := uuid.Parse(s)
	if err != nil {
		t.Fatalf("parse uuid %q: %v", s, err)
	}
	return id
}
