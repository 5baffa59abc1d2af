//go:build !integration

package usecase_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	"whatsapp-reseller/internal/domain/model"
	"whatsapp-reseller/internal/domain/ports/adapter"
	"whatsapp-reseller/internal/usecase"
)

// fixture wires the real use cases over in-memory repositories. Outbox
// events are delivered inline, so a paid callback activates before
// HandleCallback returns.
type fixture struct {
	payments     *MockPaymentRepo
	transactions *MockTransactionRepo
	vouchers     *MockVoucherRepo
	purchases    *MockPurchaseRepo
	packages     *MockPackageRepo
	customers    *MockCustomerRepo
	outbox       *MockOutboxRepo
	tm           *MockTxManager
	gateway      *MockGateway
	notifier     *MockNotifier
	replay       *MockReplayGuard

	activator  adapter.Activator
	dispatcher *usecase.ActivationDispatcher
	callbacks  usecase.CallbackUseCase
	checkout   usecase.CheckoutUseCase
	voucherUC  usecase.VoucherUseCase
	reports    usecase.ReportUseCase
}

const (
	testCustomer = "cust-1"
	testFee      = 2500
)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		payments:     NewMockPaymentRepo(),
		transactions: NewMockTransactionRepo(),
		purchases:    &MockPurchaseRepo{},
		packages:     NewMockPackageRepo(),
		customers:    &MockCustomerRepo{},
		outbox:       NewMockOutboxRepo(),
		tm:           &MockTxManager{},
		gateway:      &MockGateway{},
		notifier:     &MockNotifier{},
	}
	ctx := context.Background()
	_ = f.packages.Save(ctx, nil, &model.ServicePackage{ID: "pkg-basic", Name: "Basic", Group: "basic", MonthlyPrice: 100000, IsActive: true})
	_ = f.packages.Save(ctx, nil, &model.ServicePackage{ID: "pkg-pro", Name: "Pro", Group: "pro", MonthlyPrice: 250000, YearlyPrice: 2500000, IsActive: true})
	_ = f.packages.Save(ctx, nil, &model.ServicePackage{ID: "pkg-old", Name: "Old", MonthlyPrice: 50000, IsActive: false})
	f.packages.addons["addon-device"] = &model.Addon{ID: "addon-device", Name: "Extra device", Price: 25000, IsActive: true}
	_ = f.customers.Save(ctx, nil, &model.Customer{ID: testCustomer, Name: "Budi", Email: "budi@example.com", Phone: "+628111"})

	past := time.Now().Add(-24 * time.Hour)
	maxUses := int64(100)
	f.vouchers = NewMockVoucherRepo(
		&model.Voucher{ID: "v-save10", Code: "SAVE10", Kind: model.CalcPercentage, Scope: model.ScopeTotal, Value: 10, IsActive: true, ValidFrom: past, MaxUses: &maxUses},
		&model.Voucher{ID: "v-fixed", Code: "FIXED50", Kind: model.CalcFixedAmount, Scope: model.ScopeTotal, Value: 50000, IsActive: true, ValidFrom: past, AllowMultiUse: true},
	)

	f.wire(nil)
	return f
}

// wire builds the use cases. A non-nil activator replaces the real
// activation use case.
func (f *fixture) wire(activator adapter.Activator) {
	log := newTestLogger()
	f.activator = usecase.NewActivationUseCase(f.transactions, f.packages, f.purchases, f.vouchers, f.tm, log)
	if activator != nil {
		f.activator = activator
	}
	f.dispatcher = usecase.NewActivationDispatcher(f.outbox, f.payments, f.transactions, f.customers, f.activator, f.notifier, syncSubmitter{},
		usecase.DispatchSettings{MaxAttempts: 3, RetryBackoff: time.Second}, log)

	var replay adapter.ReplayGuard
	if f.replay != nil {
		replay = f.replay
	}
	f.callbacks = usecase.NewCallbackUseCase(f.payments, f.transactions, f.outbox, f.tm, f.gateway, replay, f.dispatcher, "WAR", log)
	f.voucherUC = usecase.NewVoucherUseCase(f.vouchers, f.packages, log)
	f.checkout = usecase.NewCheckoutUseCase(f.customers, f.packages, f.transactions, f.payments, f.voucherUC, f.gateway, f.tm,
		usecase.CheckoutSettings{OrderPrefix: "WAR", Currency: "IDR", ServiceFee: testFee, CallbackURL: "https://api.example/cb", ExpiryMinutes: 60}, log)
	f.reports = usecase.NewReportUseCase(f.purchases, f.packages, log)
}

func (f *fixture) mustCheckout(t *testing.T, voucher string, items ...usecase.CartItem) *usecase.CheckoutResult {
	t.Helper()
	if len(items) == 0 {
		items = []usecase.CartItem{{ScopeTag: "package", ID: "pkg-basic", Quantity: 1}}
	}
	res, err := f.checkout.Checkout(context.Background(), usecase.CheckoutInput{CustomerID: testCustomer, Items: items, VoucherCode: voucher})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	return res
}

func callbackFor(p *model.Payment, resultCode string) model.CallbackPayload {
	amount := strconv.FormatInt(p.Amount, 10)
	return model.CallbackPayloadFromValues(map[string]string{
		"merchantCode":    "D0001",
		"amount":          amount,
		"merchantOrderId": p.MerchantOrderID,
		"resultCode":      resultCode,
		"reference":       p.ExternalReference,
		"signature":       "valid",
	})
}
