package service_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"vendapos/internal/model"
	"vendapos/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── In-memory store shared by every repository stub ──────────────────────────

type memStore struct {
	mu          sync.Mutex
	companies   map[uuid.UUID]*model.Company
	sellers     map[uuid.UUID]*model.Seller
	products    map[uuid.UUID]*model.Product
	sales       map[uuid.UUID]*model.Sale
	movements   []model.StockMovement
	closures    map[uuid.UUID]*model.CashClosure
	withdrawals []model.CashWithdrawal
	fiscalDocs  map[uuid.UUID]*model.FiscalDocument
	budgets     map[uuid.UUID]*model.Budget
	printers    map[uuid.UUID]*model.Printer

	// onProductLookup runs after FindByIDs returns, outside the lock.
	onProductLookup func()
	// companyLookupFailures fails that many company lookups first.
	companyLookupFailures int
}

func newMemStore() *memStore {
	return &memStore{
		companies:  make(map[uuid.UUID]*model.Company),
		sellers:    make(map[uuid.UUID]*model.Seller),
		products:   make(map[uuid.UUID]*model.Product),
		sales:      make(map[uuid.UUID]*model.Sale),
		closures:   make(map[uuid.UUID]*model.CashClosure),
		fiscalDocs: make(map[uuid.UUID]*model.FiscalDocument),
		budgets:    make(map[uuid.UUID]*model.Budget),
		printers:   make(map[uuid.UUID]*model.Printer),
	}
}

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint}
}

func (m *memStore) addCompany(individualCash bool) *model.Company {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := &model.Company{ID: uuid.New(), Name: "Mercado Bom Preço LTDA", CNPJ: "12345678000195", IndividualCash: individualCash}
	m.companies[c.ID] = c
	return c
}

func (m *memStore) addSeller(companyID uuid.UUID, name string) *model.Seller {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := &model.Seller{ID: uuid.New(), CompanyID: companyID, Name: name, Active: true}
	m.sellers[s.ID] = s
	return s
}

func (m *memStore) addProduct(companyID uuid.UUID, name, price string, stock int) *model.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := &model.Product{
		ID:            uuid.New(),
		CompanyID:     companyID,
		Name:          name,
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
		Unit:          "UN",
		Active:        true,
	}
	m.products[p.ID] = p
	return p
}

func (m *memStore) stock(id uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.products[id].StockQuantity
}

func (m *memStore) movementsFor(productID uuid.UUID) []model.StockMovement {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.StockMovement
	for _, mv := range m.movements {
		if mv.ProductID == productID {
			out = append(out, mv)
		}
	}
	return out
}

// ── Company / Seller ─────────────────────────────────────────────────────────

type companyRepo struct{ *memStore }

func (r companyRepo) Create(_ context.Context, c *model.Company) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.companies[c.ID] = c
	return nil
}

func (r companyRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.companyLookupFailures > 0 {
		r.companyLookupFailures--
		return nil, errors.New("connection reset by peer")
	}
	c, ok := r.companies[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (r companyRepo) NextBudgetNumberTx(_ *gorm.DB, id uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.companies[id]
	if !ok {
		return 0, gorm.ErrRecordNotFound
	}
	c.LastBudgetNumber++
	return c.LastBudgetNumber, nil
}

type sellerRepo struct{ *memStore }

func (r sellerRepo) Create(_ context.Context, s *model.Seller) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sellers[s.ID] = s
	return nil
}

func (r sellerRepo) FindByID(_ context.Context, companyID, id uuid.UUID) (*model.Seller, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sellers[id]
	if !ok || s.CompanyID != companyID {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}

// ── Products / stock ─────────────────────────────────────────────────────────

type productRepo struct{ *memStore }

func (r productRepo) DB() *gorm.DB { return nil }

func (r productRepo) Create(_ context.Context, p *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[p.ID] = p
	return nil
}

func (r productRepo) FindByID(_ context.Context, companyID, id uuid.UUID) (*model.Product, error) {
	return r.FindByIDTx(nil, companyID, id)
}

func (r productRepo) FindByIDs(_ context.Context, companyID uuid.UUID, ids []uuid.UUID) ([]model.Product, error) {
	r.mu.Lock()
	var out []model.Product
	for _, id := range ids {
		if p, ok := r.products[id]; ok && p.CompanyID == companyID {
			out = append(out, *p)
		}
	}
	hook := r.onProductLookup
	r.mu.Unlock()
	if hook != nil {
		hook()
	}
	return out, nil
}

func (r productRepo) FindByIDTx(_ *gorm.DB, companyID, id uuid.UUID) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok || p.CompanyID != companyID {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r productRepo) DecrementStockTx(_ *gorm.DB, companyID, id uuid.UUID, qty int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok || p.CompanyID != companyID || p.StockQuantity < qty {
		return false, nil
	}
	p.StockQuantity -= qty
	return true, nil
}

func (r productRepo) IncrementStockTx(_ *gorm.DB, companyID, id uuid.UUID, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok || p.CompanyID != companyID {
		return gorm.ErrRecordNotFound
	}
	p.StockQuantity += qty
	return nil
}

type movementRepo struct{ *memStore }

func (r movementRepo) CreateTx(_ *gorm.DB, mv *model.StockMovement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	mv.ID = uuid.New()
	r.movements = append(r.movements, *mv)
	return nil
}

func (r movementRepo) ListByReference(_ context.Context, companyID, referenceID uuid.UUID) ([]model.StockMovement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.StockMovement
	for _, mv := range r.movements {
		if mv.CompanyID == companyID && mv.ReferenceID != nil && *mv.ReferenceID == referenceID {
			out = append(out, mv)
		}
	}
	return out, nil
}

// ── Sales ────────────────────────────────────────────────────────────────────

type saleRepo struct{ *memStore }

func (r saleRepo) DB() *gorm.DB { return nil }

func (r saleRepo) Create(_ context.Context, _ *gorm.DB, s *model.Sale) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.BudgetID != nil {
		for _, other := range r.sales {
			if other.BudgetID != nil && *other.BudgetID == *s.BudgetID {
				return uniqueViolation(repository.IdxSaleBudget)
			}
		}
	}
	s.ID = uuid.New()
	for i := range s.Items {
		s.Items[i].ID = uuid.New()
		s.Items[i].SaleID = s.ID
	}
	for i := range s.PaymentMethods {
		s.PaymentMethods[i].ID = uuid.New()
		s.PaymentMethods[i].SaleID = s.ID
	}
	cp := *s
	r.sales[s.ID] = &cp
	return nil
}

// loaded mimics the repository preloads. Caller holds the lock.
func (r saleRepo) loaded(s *model.Sale) model.Sale {
	cp := *s
	cp.Items = make([]model.SaleItem, len(s.Items))
	for i, it := range s.Items {
		if p, ok := r.products[it.ProductID]; ok {
			pc := *p
			it.Product = &pc
		}
		cp.Items[i] = it
	}
	cp.PaymentMethods = append([]model.SalePaymentMethod(nil), s.PaymentMethods...)
	if seller, ok := r.sellers[s.SellerID]; ok {
		sc := *seller
		cp.Seller = &sc
	}
	return cp
}

func (r saleRepo) FindByID(_ context.Context, companyID, id uuid.UUID) (*model.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sales[id]
	if !ok || s.CompanyID != companyID {
		return nil, gorm.ErrRecordNotFound
	}
	out := r.loaded(s)
	return &out, nil
}

func (r saleRepo) FindByBudgetID(_ context.Context, companyID, budgetID uuid.UUID) (*model.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sales {
		if s.CompanyID == companyID && s.BudgetID != nil && *s.BudgetID == budgetID {
			out := r.loaded(s)
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r saleRepo) DeleteTx(_ *gorm.DB, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sales, id)
	for _, d := range r.fiscalDocs {
		if d.SaleID != nil && *d.SaleID == id {
			d.SaleID = nil
		}
	}
	return nil
}

func (r saleRepo) List(_ context.Context, f repository.SaleFilter) ([]model.Sale, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Sale
	for _, s := range r.sales {
		if s.CompanyID != f.CompanyID {
			continue
		}
		if f.SellerID != nil && s.SellerID != *f.SellerID {
			continue
		}
		if f.CashClosureID != nil && (s.CashClosureID == nil || *s.CashClosureID != *f.CashClosureID) {
			continue
		}
		out = append(out, r.loaded(s))
	}
	sortSales(out)
	return out, int64(len(out)), nil
}

func (r saleRepo) ListByClosure(_ context.Context, closureID uuid.UUID) ([]model.Sale, error) {
	return r.ListByClosureTx(nil, closureID)
}

func (r saleRepo) ListByClosureTx(_ *gorm.DB, closureID uuid.UUID) ([]model.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Sale
	for _, s := range r.sales {
		if s.CashClosureID != nil && *s.CashClosureID == closureID {
			out = append(out, r.loaded(s))
		}
	}
	sortSales(out)
	return out, nil
}

func sortSales(s []model.Sale) {
	sort.Slice(s, func(i, j int) bool {
		if !s[i].SaleDate.Equal(s[j].SaleDate) {
			return s[i].SaleDate.Before(s[j].SaleDate)
		}
		return s[i].ID.String() < s[j].ID.String()
	})
}

// ── Cash closures ────────────────────────────────────────────────────────────

type closureRepo struct{ *memStore }

func (r closureRepo) DB() *gorm.DB { return nil }

func sameScope(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (r closureRepo) Create(_ context.Context, c *model.CashClosure) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, other := range r.closures {
		if other.CompanyID == c.CompanyID && !other.IsClosed && sameScope(other.SellerID, c.SellerID) {
			return uniqueViolation(repository.IdxOpenClosurePerScope)
		}
	}
	c.ID = uuid.New()
	cp := *c
	r.closures[c.ID] = &cp
	return nil
}

// withWithdrawals returns a copy with its withdrawals attached. Caller holds the lock.
func (r closureRepo) withWithdrawals(c *model.CashClosure) *model.CashClosure {
	cp := *c
	cp.Withdrawals = nil
	for _, w := range r.withdrawals {
		if w.CashClosureID == c.ID {
			cp.Withdrawals = append(cp.Withdrawals, w)
		}
	}
	return &cp
}

func (r closureRepo) FindOpen(_ context.Context, companyID uuid.UUID, sellerID *uuid.UUID) (*model.CashClosure, error) {
	return r.FindOpenForUpdateTx(nil, companyID, sellerID)
}

func (r closureRepo) FindOpenForUpdateTx(_ *gorm.DB, companyID uuid.UUID, sellerID *uuid.UUID) (*model.CashClosure, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.closures {
		if c.CompanyID == companyID && !c.IsClosed && sameScope(c.SellerID, sellerID) {
			return r.withWithdrawals(c), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r closureRepo) FindOpenForShareTx(tx *gorm.DB, companyID uuid.UUID, sellerID *uuid.UUID) (*model.CashClosure, error) {
	return r.FindOpenForUpdateTx(tx, companyID, sellerID)
}

func (r closureRepo) FindByIDForShareTx(_ *gorm.DB, companyID, id uuid.UUID) (*model.CashClosure, error) {
	return r.FindByID(context.Background(), companyID, id)
}

func (r closureRepo) FindByID(_ context.Context, companyID, id uuid.UUID) (*model.CashClosure, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.closures[id]
	if !ok || c.CompanyID != companyID {
		return nil, gorm.ErrRecordNotFound
	}
	return r.withWithdrawals(c), nil
}

func (r closureRepo) List(_ context.Context, f repository.ClosureFilter) ([]model.CashClosure, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.CashClosure
	for _, c := range r.closures {
		if c.CompanyID != f.CompanyID {
			continue
		}
		if f.IsClosed != nil && c.IsClosed != *f.IsClosed {
			continue
		}
		out = append(out, *r.withWithdrawals(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OpeningDate.After(out[j].OpeningDate) })
	return out, int64(len(out)), nil
}

func (r closureRepo) SumPaymentsByMethod(_ context.Context, closureID uuid.UUID) ([]repository.PaymentTotal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	byMethod := make(map[string]*repository.PaymentTotal)
	for _, s := range r.sales {
		if s.CashClosureID == nil || *s.CashClosureID != closureID {
			continue
		}
		for _, pm := range s.PaymentMethods {
			t, ok := byMethod[pm.Method]
			if !ok {
				t = &repository.PaymentTotal{Method: pm.Method, Total: decimal.Zero}
				byMethod[pm.Method] = t
			}
			t.Total = t.Total.Add(pm.Amount)
			t.Count++
		}
	}
	out := make([]repository.PaymentTotal, 0, len(byMethod))
	for _, t := range byMethod {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Method < out[j].Method })
	return out, nil
}

func (r closureRepo) UpdateTx(_ *gorm.DB, c *model.CashClosure) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	cp.Withdrawals = nil
	r.closures[c.ID] = &cp
	return nil
}

func (r closureRepo) CreateWithdrawalTx(_ *gorm.DB, w *model.CashWithdrawal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w.ID = uuid.New()
	if w.CreatedAt.IsZero() {
		w.CreatedAt = time.Now()
	}
	r.withdrawals = append(r.withdrawals, *w)
	if c, ok := r.closures[w.CashClosureID]; ok {
		c.TotalWithdrawals = c.TotalWithdrawals.Add(w.Amount)
	}
	return nil
}

func (r closureRepo) ListWithdrawalsTx(_ *gorm.DB, closureID uuid.UUID) ([]model.CashWithdrawal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.CashWithdrawal
	for _, w := range r.withdrawals {
		if w.CashClosureID == closureID {
			out = append(out, w)
		}
	}
	return out, nil
}

// ── Fiscal documents ─────────────────────────────────────────────────────────

type fiscalDocRepo struct{ *memStore }

func (r fiscalDocRepo) Create(_ context.Context, d *model.FiscalDocument) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, other := range r.fiscalDocs {
		if other.CompanyID == d.CompanyID && other.DocumentType == d.DocumentType &&
			other.Series == d.Series && other.DocumentNumber == d.DocumentNumber {
			return uniqueViolation(repository.IdxFiscalNumber)
		}
	}
	d.ID = uuid.New()
	cp := *d
	r.fiscalDocs[d.ID] = &cp
	return nil
}

func (r fiscalDocRepo) FindByID(_ context.Context, companyID, id uuid.UUID) (*model.FiscalDocument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.fiscalDocs[id]
	if !ok || d.CompanyID != companyID {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *d
	return &cp, nil
}

func (r fiscalDocRepo) FindBySaleID(_ context.Context, companyID, saleID uuid.UUID) (*model.FiscalDocument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.fiscalDocs {
		if d.CompanyID == companyID && d.SaleID != nil && *d.SaleID == saleID {
			cp := *d
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r fiscalDocRepo) Update(_ context.Context, d *model.FiscalDocument) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *d
	r.fiscalDocs[d.ID] = &cp
	return nil
}

func (r fiscalDocRepo) NextNumber(_ context.Context, companyID uuid.UUID, docType string, series int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var max int64
	for _, d := range r.fiscalDocs {
		if d.CompanyID == companyID && d.DocumentType == docType && d.Series == series && d.DocumentNumber > max {
			max = d.DocumentNumber
		}
	}
	return max + 1, nil
}

func (r fiscalDocRepo) ListDueForRetry(_ context.Context, now time.Time, limit int) ([]model.FiscalDocument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.FiscalDocument
	for _, d := range r.fiscalDocs {
		if d.Status == model.FiscalStatusPending && d.NextRetryAt != nil && !d.NextRetryAt.After(now) {
			out = append(out, *d)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// due makes every Pendente document eligible for the next retry pass.
func (m *memStore) due() {
	m.mu.Lock()
	defer m.mu.Unlock()
	past := time.Now().Add(-time.Minute)
	for _, d := range m.fiscalDocs {
		if d.NextRetryAt != nil {
			d.NextRetryAt = &past
		}
	}
}

// ── Budgets ──────────────────────────────────────────────────────────────────

type budgetRepo struct{ *memStore }

func (r budgetRepo) DB() *gorm.DB { return nil }

func (r budgetRepo) FindByID(_ context.Context, companyID, id uuid.UUID) (*model.Budget, error) {
	return r.FindByIDForUpdateTx(nil, companyID, id)
}

func (r budgetRepo) ExpirePending(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, b := range r.budgets {
		if b.Status == model.BudgetPending && b.ValidUntil.Before(now) {
			b.Status = model.BudgetExpired
			n++
		}
	}
	return n, nil
}

func (r budgetRepo) CreateTx(_ *gorm.DB, b *model.Budget) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b.ID = uuid.New()
	for i := range b.Items {
		b.Items[i].ID = uuid.New()
		b.Items[i].BudgetID = b.ID
	}
	cp := *b
	r.budgets[b.ID] = &cp
	return nil
}

func (r budgetRepo) FindByIDForUpdateTx(_ *gorm.DB, companyID, id uuid.UUID) (*model.Budget, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.budgets[id]
	if !ok || b.CompanyID != companyID {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *b
	cp.Items = append([]model.BudgetItem(nil), b.Items...)
	return &cp, nil
}

func (r budgetRepo) UpdateStatusTx(_ *gorm.DB, id uuid.UUID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.budgets[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	b.Status = status
	return nil
}

func (r budgetRepo) LinkSale(_ context.Context, id, saleID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.budgets[id]; ok {
		b.SaleID = &saleID
	}
	return nil
}

// ── Printers ─────────────────────────────────────────────────────────────────

type printerRepo struct{ *memStore }

func (r printerRepo) DB() *gorm.DB { return nil }

func (r printerRepo) Create(_ context.Context, p *model.Printer) error {
	return r.CreateTx(nil, p)
}

func (r printerRepo) CreateTx(_ *gorm.DB, p *model.Printer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, other := range r.printers {
		if other.CompanyID == p.CompanyID && other.Name == p.Name {
			return uniqueViolation("idx_printer_company_name")
		}
	}
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	cp := *p
	r.printers[p.ID] = &cp
	return nil
}

func (r printerRepo) List(_ context.Context, companyID uuid.UUID) ([]model.Printer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Printer
	for _, p := range r.printers {
		if p.CompanyID == companyID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r printerRepo) ListConnected(ctx context.Context, companyID uuid.UUID) ([]model.Printer, error) {
	all, _ := r.List(ctx, companyID)
	var out []model.Printer
	for _, p := range all {
		if p.IsConnected {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r printerRepo) FindByName(_ context.Context, companyID uuid.UUID, name string) (*model.Printer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.printers {
		if p.CompanyID == companyID && p.Name == name {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r printerRepo) UpdateStatus(_ context.Context, id uuid.UUID, connected bool, checkedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.printers[id]; ok {
		p.IsConnected = connected
		p.LastStatusCheck = &checkedAt
	}
	return nil
}

func (r printerRepo) ClearDefaultTx(_ *gorm.DB, companyID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.printers {
		if p.CompanyID == companyID {
			p.IsDefault = false
		}
	}
	return nil
}

func (r printerRepo) SetDefaultTx(_ *gorm.DB, companyID, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.printers[id]
	if !ok || p.CompanyID != companyID {
		return false, nil
	}
	p.IsDefault = true
	return true, nil
}

var (
	_ repository.CompanyRepository        = companyRepo{}
	_ repository.SellerRepository         = sellerRepo{}
	_ repository.ProductRepository        = productRepo{}
	_ repository.StockMovementRepository  = movementRepo{}
	_ repository.SaleRepository           = saleRepo{}
	_ repository.CashClosureRepository    = closureRepo{}
	_ repository.FiscalDocumentRepository = fiscalDocRepo{}
	_ repository.BudgetRepository         = budgetRepo{}
	_ repository.PrinterRepository        = printerRepo{}
)
