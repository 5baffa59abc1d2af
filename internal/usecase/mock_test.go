//go:build !integration

package usecase_test

import (
	"context"
	"encoding/json"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"whatsapp-reseller/internal/domain"
	"whatsapp-reseller/internal/domain/model"
	"whatsapp-reseller/internal/domain/ports/adapter"
	"whatsapp-reseller/internal/domain/ports/repository"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

// =============================
// Transaction manager
// =============================

type MockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	return fn(ctx, repository.NoTX)
}

// =============================
// Repositories (in-memory)
// =============================

// ---- Payments ----

type MockPaymentRepo struct {
	mu   sync.Mutex
	byID map[string]*model.Payment

	TransitionStatusFunc func(ctx context.Context, id string, from, to model.PaymentStatus) (bool, error)
}

var _ repository.PaymentRepository = (*MockPaymentRepo)(nil)

func NewMockPaymentRepo() *MockPaymentRepo {
	return &MockPaymentRepo{byID: map[string]*model.Payment{}}
}

func clonePayment(p *model.Payment) *model.Payment {
	cp := *p
	cp.CallbackHistory = append([]model.CallbackEntry(nil), p.CallbackHistory...)
	return &cp
}

func (m *MockPaymentRepo) Save(_ context.Context, _ repository.Tx, p *model.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[p.ID]; ok {
		return domain.ErrAlreadyExists
	}
	m.byID[p.ID] = clonePayment(p)
	return nil
}

func (m *MockPaymentRepo) FindByID(_ context.Context, _ repository.Tx, id string) (*model.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.byID[id]; ok {
		return clonePayment(p), nil
	}
	return nil, domain.ErrPaymentNotFound
}

func (m *MockPaymentRepo) FindByExternalReference(_ context.Context, _ repository.Tx, reference string) (*model.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.byID {
		if p.ExternalReference != "" && p.ExternalReference == reference {
			return clonePayment(p), nil
		}
	}
	return nil, domain.ErrPaymentNotFound
}

func (m *MockPaymentRepo) FindByTransactionAndProvider(_ context.Context, _ repository.Tx, transactionID, provider string) (*model.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.byID {
		if p.TransactionID == transactionID && p.Provider == provider {
			return clonePayment(p), nil
		}
	}
	return nil, domain.ErrPaymentNotFound
}

func (m *MockPaymentRepo) SetExternalReference(_ context.Context, _ repository.Tx, id, reference, paymentURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok {
		return domain.ErrPaymentNotFound
	}
	p.ExternalReference = reference
	p.PaymentURL = paymentURL
	return nil
}

func (m *MockPaymentRepo) TransitionStatus(ctx context.Context, _ repository.Tx, id string, from, to model.PaymentStatus, entry model.CallbackEntry, paidAt *time.Time) (bool, error) {
	if m.TransitionStatusFunc != nil {
		return m.TransitionStatusFunc(ctx, id, from, to)
	}
	if !model.CanTransition(from, to) {
		return false, domain.ErrIllegalTransition
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok || p.Status != from {
		return false, nil
	}
	p.Status = to
	p.CallbackHistory = append(p.CallbackHistory, entry)
	if paidAt != nil {
		t := *paidAt
		p.PaymentDate = &t
	}
	return true, nil
}

func (m *MockPaymentRepo) ListPendingOlderThan(_ context.Context, _ repository.Tx, olderThan time.Time, limit int) ([]*model.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Payment
	for _, p := range m.byID {
		if p.Status == model.PaymentStatusPending && p.CreatedAt.Before(olderThan) {
			out = append(out, clonePayment(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ---- Transactions ----

type MockTransactionRepo struct {
	mu   sync.Mutex
	byID map[string]*model.Transaction
}

var _ repository.TransactionRepository = (*MockTransactionRepo)(nil)

func NewMockTransactionRepo() *MockTransactionRepo {
	return &MockTransactionRepo{byID: map[string]*model.Transaction{}}
}

func cloneTransaction(t *model.Transaction) *model.Transaction {
	cp := *t
	cp.Items = append([]model.TransactionItem(nil), t.Items...)
	return &cp
}

func (m *MockTransactionRepo) Save(_ context.Context, _ repository.Tx, t *model.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[t.ID]; ok {
		return domain.ErrAlreadyExists
	}
	m.byID[t.ID] = cloneTransaction(t)
	return nil
}

func (m *MockTransactionRepo) FindByID(_ context.Context, _ repository.Tx, id string) (*model.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.byID[id]; ok {
		return cloneTransaction(t), nil
	}
	return nil, domain.ErrTransactionNotFound
}

func (m *MockTransactionRepo) UpdateStatusIfPending(_ context.Context, _ repository.Tx, id string, status model.TransactionStatus, paidAt *time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.byID[id]
	if !ok || t.Status != model.TransactionStatusPending {
		return false, nil
	}
	t.Status = status
	t.PaidAt = paidAt
	return true, nil
}

// ---- Vouchers ----

type MockVoucherRepo struct {
	mu          sync.Mutex
	byID        map[string]*model.Voucher
	redemptions []model.VoucherRedemption
}

var _ repository.VoucherRepository = (*MockVoucherRepo)(nil)

func NewMockVoucherRepo(vs ...*model.Voucher) *MockVoucherRepo {
	m := &MockVoucherRepo{byID: map[string]*model.Voucher{}}
	for _, v := range vs {
		m.byID[v.ID] = v
	}
	return m
}

func (m *MockVoucherRepo) FindByCode(_ context.Context, _ repository.Tx, code string) (*model.Voucher, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.byID {
		if strings.EqualFold(v.Code, code) {
			cp := *v
			return &cp, nil
		}
	}
	return nil, domain.ErrVoucherNotFound
}

func (m *MockVoucherRepo) FindByID(_ context.Context, _ repository.Tx, id string) (*model.Voucher, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.byID[id]; ok {
		cp := *v
		return &cp, nil
	}
	return nil, domain.ErrVoucherNotFound
}

func (m *MockVoucherRepo) IncrementUsage(_ context.Context, _ repository.Tx, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.byID[id]
	if !ok {
		return false, domain.ErrVoucherNotFound
	}
	if v.UsageExhausted() {
		return false, nil
	}
	v.UsedCount++
	return true, nil
}

func (m *MockVoucherRepo) HasRedemption(_ context.Context, _ repository.Tx, voucherID, customerID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.redemptions {
		if r.VoucherID == voucherID && r.CustomerID == customerID {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockVoucherRepo) SaveRedemption(_ context.Context, _ repository.Tx, r *model.VoucherRedemption) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.redemptions {
		if x.VoucherID == r.VoucherID && x.TransactionID == r.TransactionID {
			return domain.ErrAlreadyExists
		}
	}
	m.redemptions = append(m.redemptions, *r)
	return nil
}

func (m *MockVoucherRepo) UsedCount(id string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byID[id].UsedCount
}

// ---- Purchases ----

type MockPurchaseRepo struct {
	mu      sync.Mutex
	records []*model.PurchaseRecord
}

var _ repository.PurchaseRepository = (*MockPurchaseRepo)(nil)

func (m *MockPurchaseRepo) Save(_ context.Context, _ repository.Tx, pu *model.PurchaseRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *pu
	m.records = append(m.records, &cp)
	return nil
}

func (m *MockPurchaseRepo) ListByCustomer(_ context.Context, _ repository.Tx, customerID string) ([]*model.PurchaseRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.PurchaseRecord
	for _, r := range m.records {
		if r.CustomerID == customerID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockPurchaseRepo) ExistsForTransaction(_ context.Context, _ repository.Tx, transactionID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.TransactionID == transactionID {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockPurchaseRepo) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

// ---- Catalog ----

type MockPackageRepo struct {
	packages map[string]*model.ServicePackage
	addons   map[string]*model.Addon
}

var _ repository.PackageRepository = (*MockPackageRepo)(nil)

func NewMockPackageRepo() *MockPackageRepo {
	return &MockPackageRepo{packages: map[string]*model.ServicePackage{}, addons: map[string]*model.Addon{}}
}

func (m *MockPackageRepo) Save(_ context.Context, _ repository.Tx, p *model.ServicePackage) error {
	m.packages[p.ID] = p
	return nil
}

func (m *MockPackageRepo) FindByID(_ context.Context, _ repository.Tx, id string) (*model.ServicePackage, error) {
	if p, ok := m.packages[id]; ok {
		return p, nil
	}
	return nil, domain.ErrPackageNotFound
}

func (m *MockPackageRepo) ListAll(_ context.Context, _ repository.Tx) ([]*model.ServicePackage, error) {
	out := make([]*model.ServicePackage, 0, len(m.packages))
	for _, p := range m.packages {
		out = append(out, p)
	}
	return out, nil
}

func (m *MockPackageRepo) FindAddonByID(_ context.Context, _ repository.Tx, id string) (*model.Addon, error) {
	if a, ok := m.addons[id]; ok {
		return a, nil
	}
	return nil, domain.ErrNotFound
}

type MockCustomerRepo struct {
	byID map[string]*model.Customer
}

var _ repository.CustomerRepository = (*MockCustomerRepo)(nil)

func (m *MockCustomerRepo) Save(_ context.Context, _ repository.Tx, c *model.Customer) error {
	if m.byID == nil {
		m.byID = map[string]*model.Customer{}
	}
	m.byID[c.ID] = c
	return nil
}

func (m *MockCustomerRepo) FindByID(_ context.Context, _ repository.Tx, id string) (*model.Customer, error) {
	if c, ok := m.byID[id]; ok {
		return c, nil
	}
	return nil, domain.ErrNotFound
}

// ---- Outbox ----

type MockOutboxRepo struct {
	mu     sync.Mutex
	events map[string]*model.OutboxEvent
}

var _ repository.OutboxRepository = (*MockOutboxRepo)(nil)

func NewMockOutboxRepo() *MockOutboxRepo {
	return &MockOutboxRepo{events: map[string]*model.OutboxEvent{}}
}

func (m *MockOutboxRepo) Enqueue(_ context.Context, _ repository.Tx, ev *model.OutboxEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *ev
	m.events[ev.ID] = &cp
	return nil
}

func (m *MockOutboxRepo) Claim(_ context.Context, _ repository.Tx, id string) (*model.OutboxEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ev, ok := m.events[id]
	if !ok || ev.Status != model.OutboxStatusPending {
		return nil, domain.ErrOutboxEventUnavailable
	}
	ev.Status = model.OutboxStatusProcessing
	ev.Attempts++
	cp := *ev
	return &cp, nil
}

func (m *MockOutboxRepo) MarkDelivered(_ context.Context, _ repository.Tx, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[id].Status = model.OutboxStatusDelivered
	return nil
}

func (m *MockOutboxRepo) MarkRetry(_ context.Context, _ repository.Tx, id string, lastErr string, next time.Time, final bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ev := m.events[id]
	ev.LastError = lastErr
	ev.AvailableAt = next
	ev.Status = model.OutboxStatusPending
	if final {
		ev.Status = model.OutboxStatusFailed
	}
	return nil
}

func (m *MockOutboxRepo) ListDue(_ context.Context, _ repository.Tx, now time.Time, limit int) ([]*model.OutboxEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.OutboxEvent
	for _, ev := range m.events {
		if ev.Status == model.OutboxStatusPending && !ev.AvailableAt.After(now) {
			cp := *ev
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockOutboxRepo) ReleaseStale(_ context.Context, _ repository.Tx, cutoff time.Time) (int64, error) {
	return 0, nil
}

func (m *MockOutboxRepo) Get(id string) model.OutboxEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.events[id]
}

func (m *MockOutboxRepo) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

// =============================
// Adapters
// =============================

// ---- Gateway ----

type MockGateway struct {
	mu       sync.Mutex
	Requests []adapter.InvoiceRequest

	RequestPaymentFunc func(ctx context.Context, req adapter.InvoiceRequest) (adapter.InvoiceResult, error)
	VerifyCallbackFunc func(p model.CallbackPayload) bool
}

var _ adapter.PaymentGateway = (*MockGateway)(nil)

func (m *MockGateway) Name() string { return "duitku" }

func (m *MockGateway) RequestPayment(ctx context.Context, req adapter.InvoiceRequest) (adapter.InvoiceResult, error) {
	m.mu.Lock()
	m.Requests = append(m.Requests, req)
	m.mu.Unlock()
	if m.RequestPaymentFunc != nil {
		return m.RequestPaymentFunc(ctx, req)
	}
	return adapter.InvoiceResult{Reference: "REF-" + req.MerchantOrderID, PaymentURL: "https://pay.example/" + req.MerchantOrderID}, nil
}

func (m *MockGateway) VerifyCallback(p model.CallbackPayload) bool {
	if m.VerifyCallbackFunc != nil {
		return m.VerifyCallbackFunc(p)
	}
	return p.Signature == "valid"
}

// ---- Notifier ----

type MockNotifier struct {
	mu      sync.Mutex
	Notices []adapter.PaymentNotice

	NotifyFunc func(ctx context.Context, n adapter.PaymentNotice) error
}

var _ adapter.Notifier = (*MockNotifier)(nil)

func (m *MockNotifier) Name() string { return "mock" }

func (m *MockNotifier) NotifyPaymentSuccess(ctx context.Context, n adapter.PaymentNotice) error {
	m.mu.Lock()
	m.Notices = append(m.Notices, n)
	m.mu.Unlock()
	if m.NotifyFunc != nil {
		return m.NotifyFunc(ctx, n)
	}
	return nil
}

func (m *MockNotifier) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Notices)
}

// ---- Activator ----

type MockActivator struct {
	mu        sync.Mutex
	Calls     []string
	SettledAt []time.Time

	UpdateFunc func(ctx context.Context, transactionID string, status model.PaymentStatus) error
}

var _ adapter.SettledActivator = (*MockActivator)(nil)

func (m *MockActivator) UpdateTransactionOnPayment(ctx context.Context, transactionID string, status model.PaymentStatus) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, transactionID)
	m.mu.Unlock()
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, transactionID, status)
	}
	return nil
}

func (m *MockActivator) ActivateSettled(ctx context.Context, transactionID string, paidAt time.Time) error {
	m.mu.Lock()
	m.SettledAt = append(m.SettledAt, paidAt)
	m.mu.Unlock()
	return m.UpdateTransactionOnPayment(ctx, transactionID, model.PaymentStatusPaid)
}

// ---- Replay guard ----

type MockReplayGuard struct {
	mu   sync.Mutex
	seen map[string]bool

	SeenErr error
}

var _ adapter.ReplayGuard = (*MockReplayGuard)(nil)

func replayKey(p model.CallbackPayload) string {
	b, _ := json.Marshal([]string{p.MerchantOrderID, p.ResultCode, p.Reference, p.Amount, p.Signature})
	return string(b)
}

func (m *MockReplayGuard) Seen(_ context.Context, p model.CallbackPayload) (bool, error) {
	if m.SeenErr != nil {
		return false, m.SeenErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seen[replayKey(p)], nil
}

func (m *MockReplayGuard) Mark(_ context.Context, p model.CallbackPayload) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seen == nil {
		m.seen = map[string]bool{}
	}
	m.seen[replayKey(p)] = true
	return nil
}

// ---- Dispatch ----

// syncSubmitter runs submitted tasks inline.
type syncSubmitter struct{}

func (syncSubmitter) Submit(task func(ctx context.Context) error) error {
	_ = task(context.Background())
	return nil
}

// recordingDispatcher only remembers enqueued event ids.
type recordingDispatcher struct {
	mu  sync.Mutex
	ids []string
}

func (d *recordingDispatcher) Enqueue(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ids = append(d.ids, id)
}

func (d *recordingDispatcher) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.ids)
}
