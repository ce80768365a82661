package server

import (
	"context"
	"sync"
	"time"

	"procurement/domain"
	"procurement/internal/repositories"
)

// In-memory stand-ins for the repositories, so handler tests run without
// Postgres, redis or NATS.

type fakeOrders struct {
	mu         sync.Mutex
	orders     map[string]*domain.PurchaseOrder
	docs       map[string][]domain.Document
	docErr     error
	lastLimit  int
	lastOffset int
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{
		orders: make(map[string]*domain.PurchaseOrder),
		docs:   make(map[string][]domain.Document),
	}
}

func (f *fakeOrders) add(o domain.PurchaseOrder) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := o
	f.orders[o.ID] = &cp
}

func (f *fakeOrders) Create(_ context.Context, order *domain.PurchaseOrder) (int64, error) {
	f.add(*order)
	return 1, nil
}

func (f *fakeOrders) Get(_ context.Context, id string) (domain.PurchaseOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return domain.PurchaseOrder{}, repositories.ErrNotFound
	}
	return *o, nil
}

func (f *fakeOrders) ListPending(_ context.Context, limit, offset int) ([]domain.PurchaseOrder, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastLimit, f.lastOffset = limit, offset

	var pending []domain.PurchaseOrder
	for _, o := range f.orders {
		if o.Status == domain.StatusPending {
			pending = append(pending, *o)
		}
	}
	total := len(pending)
	if offset > len(pending) {
		offset = len(pending)
	}
	end := offset + limit
	if end > len(pending) {
		end = len(pending)
	}
	return pending[offset:end], total, nil
}

func (f *fakeOrders) Documents(_ context.Context, orderID string) ([]domain.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.docErr != nil {
		return nil, f.docErr
	}
	return f.docs[orderID], nil
}

func (f *fakeOrders) Verify(_ context.Context, id, actor, note string) error {
	return f.decide(id, domain.StatusVerified, actor, note)
}

func (f *fakeOrders) Reject(_ context.Context, id, actor, reason string) error {
	return f.decide(id, domain.StatusRejected, actor, reason)
}

func (f *fakeOrders) decide(id, status, actor, note string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return repositories.ErrNotFound
	}
	if !o.CanDecide() {
		return domain.ErrOrderDecided
	}
	now := time.Now()
	o.Status = status
	o.VerifiedAt = &now
	o.VerifierNote = note
	o.Events = append(o.Events, domain.OrderEvent{Action: status, Actor: actor, Note: note, At: now})
	return nil
}

type fakeProducts struct {
	mu       sync.Mutex
	products map[string]*domain.Product
	lastList repositories.ProductFilter
}

func newFakeProducts() *fakeProducts {
	return &fakeProducts{products: make(map[string]*domain.Product)}
}

func (f *fakeProducts) skuTaken(sku, exceptID string) bool {
	for _, p := range f.products {
		if p.SKU == sku && p.ID != exceptID && p.Active {
			return true
		}
	}
	return false
}

func (f *fakeProducts) Create(_ context.Context, p *domain.Product) error {
	if err := p.Normalize(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.skuTaken(p.SKU, "") {
		return domain.ErrSKUTaken
	}
	if p.ID == "" {
		p.ID = "prod-" + p.SKU
	}
	p.Active = true
	cp := *p
	f.products[p.ID] = &cp
	return nil
}

func (f *fakeProducts) Update(_ context.Context, p *domain.Product) error {
	if err := p.Normalize(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.products[p.ID]; !ok {
		return repositories.ErrNotFound
	}
	if f.skuTaken(p.SKU, p.ID) {
		return domain.ErrSKUTaken
	}
	cp := *p
	cp.Active = true
	f.products[p.ID] = &cp
	return nil
}

func (f *fakeProducts) Archive(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok || !p.Active {
		return repositories.ErrNotFound
	}
	p.Active = false
	return nil
}

func (f *fakeProducts) Get(_ context.Context, id string) (domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return domain.Product{}, repositories.ErrNotFound
	}
	return *p, nil
}

func (f *fakeProducts) List(_ context.Context, filter repositories.ProductFilter) ([]domain.Product, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastList = filter

	var out []domain.Product
	for _, p := range f.products {
		if p.Active {
			out = append(out, *p)
		}
	}
	return out, len(out), nil
}

func (f *fakeProducts) Categories(_ context.Context) ([]string, error) {
	return []string{"PPE", "Tools"}, nil
}

type fakeSuppliers struct {
	mu          sync.Mutex
	suppliers   []domain.Supplier
	report      []domain.SupplierReportRow
	reportCalls int
}

func (f *fakeSuppliers) List(_ context.Context) ([]domain.Supplier, error) {
	return f.suppliers, nil
}

func (f *fakeSuppliers) Report(_ context.Context, _ domain.ReportPeriod) ([]domain.SupplierReportRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reportCalls++
	return f.report, nil
}

func (f *fakeSuppliers) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reportCalls
}

type fakeRequests struct {
	mu         sync.Mutex
	requests   map[string]*domain.CustomItemRequest
	products   *fakeProducts
	lastLimit  int
	lastOffset int
}

func newFakeRequests(products *fakeProducts) *fakeRequests {
	return &fakeRequests{
		requests: make(map[string]*domain.CustomItemRequest),
		products: products,
	}
}

func (f *fakeRequests) add(r domain.CustomItemRequest) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := r
	f.requests[r.ID] = &cp
}

func (f *fakeRequests) ListOpen(_ context.Context, limit, offset int) ([]domain.CustomItemRequest, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastLimit, f.lastOffset = limit, offset
	var open []domain.CustomItemRequest
	for _, r := range f.requests {
		if r.Open() {
			open = append(open, *r)
		}
	}
	return open, len(open), nil
}

func (f *fakeRequests) Get(_ context.Context, id string) (domain.CustomItemRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.requests[id]
	if !ok {
		return domain.CustomItemRequest{}, repositories.ErrNotFound
	}
	return *r, nil
}

func (f *fakeRequests) Triage(_ context.Context, id, status, actor, note string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.requests[id]
	if !ok {
		return repositories.ErrNotFound
	}
	if !r.Open() {
		return domain.ErrRequestTriaged
	}
	now := time.Now()
	r.Status = status
	r.TriagedBy = actor
	r.TriageNote = note
	r.TriagedAt = &now
	return nil
}

func (f *fakeRequests) Convert(ctx context.Context, id, actor string, product *domain.Product) error {
	if err := f.products.Create(ctx, product); err != nil {
		return err
	}
	return f.Triage(ctx, id, domain.RequestConverted, actor, "converted to product "+product.SKU)
}

type fakeBank struct {
	mu         sync.Mutex
	accounts   map[string]domain.BankAccount
	payouts    map[string][]domain.Payout
	lastLimit  int
	lastOffset int
}

func newFakeBank() *fakeBank {
	return &fakeBank{
		accounts: make(map[string]domain.BankAccount),
		payouts:  make(map[string][]domain.Payout),
	}
}

func (f *fakeBank) UpsertAccount(_ context.Context, account *domain.BankAccount) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if account.ID == "" {
		account.ID = "acc-" + account.SupplierID
	}
	f.accounts[account.SupplierID] = *account
	return nil
}

func (f *fakeBank) GetAccount(_ context.Context, supplierID string) (domain.BankAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	acc, ok := f.accounts[supplierID]
	if !ok {
		return domain.BankAccount{}, repositories.ErrNotFound
	}
	return acc, nil
}

func (f *fakeBank) CreatePayout(_ context.Context, payout *domain.Payout) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if payout.ID == "" {
		payout.ID = "payout-1"
	}
	if payout.Status == "" {
		payout.Status = domain.PayoutRequested
	}
	f.payouts[payout.SupplierID] = append(f.payouts[payout.SupplierID], *payout)
	return nil
}

func (f *fakeBank) ListPayouts(_ context.Context, supplierID string, limit, offset int) ([]domain.Payout, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastLimit, f.lastOffset = limit, offset
	payouts := f.payouts[supplierID]
	return payouts, len(payouts), nil
}

// fakeReports is a map-backed ReportCache with a switchable rate limit.
type fakeReports struct {
	mu      sync.Mutex
	entries map[string][]byte
	limited bool
}

func newFakeReports() *fakeReports {
	return &fakeReports{entries: make(map[string][]byte)}
}

func (f *fakeReports) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if raw, ok := f.entries[key]; ok {
		return raw, nil
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeReports) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[key] = data
	return nil
}

func (f *fakeReports) IsRateLimited(_ context.Context, _ string, _ int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.limited
}

// fakeBus records published events.
type fakeBus struct {
	mu       sync.Mutex
	subjects []string
}

func (f *fakeBus) Publish(subject string, _ []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subjects = append(f.subjects, subject)
	return nil
}

func (f *fakeBus) published() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.subjects...)
}
