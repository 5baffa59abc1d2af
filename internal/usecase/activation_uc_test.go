//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"whatsapp-reseller/internal/domain"
	"whatsapp-reseller/internal/domain/model"
	"whatsapp-reseller/internal/domain/ports/adapter"
	"whatsapp-reseller/internal/usecase"
)

func TestActivationUseCase_UpdateTransactionOnPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("should write one purchase per package line with its discounted amount", func(t *testing.T) {
		f := newFixture(t)
		res := f.mustCheckout(t, "SAVE10",
			usecase.CartItem{ScopeTag: "package", ID: "pkg-basic", Quantity: 1},
			usecase.CartItem{ScopeTag: "addon", ID: "addon-device", Quantity: 2},
		)

		if err := f.activator.UpdateTransactionOnPayment(ctx, res.Transaction.ID, model.PaymentStatusPaid); err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		recs, _ := f.purchases.ListByCustomer(ctx, nil, testCustomer)
		if len(recs) != 1 {
			t.Fatalf("expected one purchase record, got %d", len(recs))
		}
		r := recs[0]
		if r.PackageGroup != "basic" || r.AmountPaidForService != 90000 || r.ServiceFee != testFee {
			t.Errorf("unexpected purchase record: %+v", r)
		}
		if r.TransactionAmount != res.Transaction.ChargeAmount() {
			t.Errorf("expected transaction amount %d, got %d", res.Transaction.ChargeAmount(), r.TransactionAmount)
		}
	})

	t.Run("should date purchases at the settlement time", func(t *testing.T) {
		f := newFixture(t)
		res := f.mustCheckout(t, "")
		settled := time.Now().Add(-3 * time.Hour).Truncate(time.Second)

		sa, ok := f.activator.(adapter.SettledActivator)
		if !ok {
			t.Fatal("expected the activation use case to accept a settlement time")
		}
		if err := sa.ActivateSettled(ctx, res.Transaction.ID, settled); err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		recs, _ := f.purchases.ListByCustomer(ctx, nil, testCustomer)
		if len(recs) != 1 || !recs[0].PaidAt.Equal(settled) {
			t.Fatalf("expected purchase paid at %v, got %+v", settled, recs)
		}
		tr, _ := f.transactions.FindByID(ctx, nil, res.Transaction.ID)
		if tr.PaidAt == nil || !tr.PaidAt.Equal(settled) {
			t.Errorf("expected transaction paid at %v, got %v", settled, tr.PaidAt)
		}
	})

	t.Run("should be a no-op for an already paid transaction", func(t *testing.T) {
		f := newFixture(t)
		res := f.mustCheckout(t, "SAVE10")
		for i := 0; i < 3; i++ {
			if err := f.activator.UpdateTransactionOnPayment(ctx, res.Transaction.ID, model.PaymentStatusPaid); err != nil {
				t.Fatalf("attempt %d: %v", i, err)
			}
		}
		if f.purchases.Count() != 1 || f.vouchers.UsedCount("v-save10") != 1 {
			t.Errorf("expected single activation, got purchases=%d used=%d", f.purchases.Count(), f.vouchers.UsedCount("v-save10"))
		}
	})

	t.Run("should refuse to pay a closed transaction", func(t *testing.T) {
		f := newFixture(t)
		res := f.mustCheckout(t, "")
		if err := f.activator.UpdateTransactionOnPayment(ctx, res.Transaction.ID, model.PaymentStatusExpired); err != nil {
			t.Fatalf("expire failed: %v", err)
		}

		err := f.activator.UpdateTransactionOnPayment(ctx, res.Transaction.ID, model.PaymentStatusPaid)
		if !errors.Is(err, domain.ErrIllegalTransition) {
			t.Fatalf("expected ErrIllegalTransition, got %v", err)
		}
		if f.purchases.Count() != 0 {
			t.Error("no purchase may be written for a closed transaction")
		}
	})

	t.Run("should still activate when the voucher ran out meanwhile", func(t *testing.T) {
		f := newFixture(t)
		res := f.mustCheckout(t, "SAVE10")
		v, _ := f.vouchers.FindByID(ctx, nil, "v-save10")
		f.vouchers.byID["v-save10"].UsedCount = *v.MaxUses

		if err := f.activator.UpdateTransactionOnPayment(ctx, res.Transaction.ID, model.PaymentStatusPaid); err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if f.purchases.Count() != 1 {
			t.Errorf("expected the purchase to stand, got %d records", f.purchases.Count())
		}
	})

	t.Run("should report an unknown transaction", func(t *testing.T) {
		f := newFixture(t)
		err := f.activator.UpdateTransactionOnPayment(ctx, "missing", model.PaymentStatusPaid)
		if !errors.Is(err, domain.ErrTransactionNotFound) {
			t.Fatalf("expected ErrTransactionNotFound, got %v", err)
		}
	})
}
