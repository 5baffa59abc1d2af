//go:build integration

package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"whatsapp-reseller/internal/domain"
	"whatsapp-reseller/internal/domain/model"
)

func TestTransactionAndPurchaseRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}
	ctx := context.Background()

	t.Run("should round-trip a transaction with ordered items", func(t *testing.T) {
		cleanup(t)
		tr := seedTransaction(t, ctx)
		got, err := NewTransactionRepo(testPool).FindByID(ctx, nil, tr.ID)
		if err != nil {
			t.Fatalf("FindByID failed: %v", err)
		}
		if len(got.Items) != 1 || got.Items[0].RefID != "pkg" || got.Items[0].Duration != model.DurationMonth {
			t.Errorf("unexpected items: %+v", got.Items)
		}

		repo := NewTransactionRepo(testPool)
		now := time.Now()
		if ok, _ := repo.UpdateStatusIfPending(ctx, nil, tr.ID, model.TransactionStatusPaid, &now); !ok {
			t.Error("expected first update to succeed")
		}
		if ok, _ := repo.UpdateStatusIfPending(ctx, nil, tr.ID, model.TransactionStatusFailed, nil); ok {
			t.Error("expected second update to be rejected")
		}
	})

	t.Run("should save and list purchases by customer", func(t *testing.T) {
		cleanup(t)
		tr := seedTransaction(t, ctx)
		if err := NewPackageRepo(testPool).Save(ctx, nil, &model.ServicePackage{ID: "pkg", Name: "Basic", MonthlyPrice: 100000, IsActive: true}); err != nil {
			t.Fatalf("failed to save package: %v", err)
		}
		repo := NewPurchaseRepo(testPool)
		pu := &model.PurchaseRecord{ID: uuid.NewString(), CustomerID: tr.CustomerID, TransactionID: tr.ID, PackageID: "pkg", Duration: model.DurationMonth, PaidAt: time.Now(), AmountPaidForService: 100000, TransactionAmount: 100000}
		if err := repo.Save(ctx, nil, pu); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		list, err := repo.ListByCustomer(ctx, nil, tr.CustomerID)
		if err != nil || len(list) != 1 {
			t.Fatalf("expected 1 purchase, got %d err=%v", len(list), err)
		}
		if ok, _ := repo.ExistsForTransaction(ctx, nil, tr.ID); !ok {
			t.Error("expected purchases to exist for the transaction")
		}
	})
}

func TestVoucherRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}
	ctx := context.Background()
	repo := NewVoucherRepo(testPool)

	cleanup(t)
	maxUses := int64(1)
	_, err := testPool.Exec(ctx, `INSERT INTO vouchers (id, code, type, discount_type, value, max_uses, valid_from) VALUES ('v1','SAVE10','total','percentage',10,$1,NOW() - INTERVAL '1 day')`, maxUses)
	if err != nil {
		t.Fatalf("failed to insert voucher: %v", err)
	}

	t.Run("should normalize swapped legacy columns", func(t *testing.T) {
		v, err := repo.FindByCode(ctx, nil, "save10")
		if err != nil {
			t.Fatalf("FindByCode failed: %v", err)
		}
		if v.Kind != model.CalcPercentage || v.Scope != model.ScopeTotal {
			t.Errorf("unexpected voucher kind=%s scope=%s", v.Kind, v.Scope)
		}
	})

	t.Run("should stop incrementing at max uses", func(t *testing.T) {
		if ok, err := repo.IncrementUsage(ctx, nil, "v1"); err != nil || !ok {
			t.Fatalf("expected first increment to succeed, got ok=%v err=%v", ok, err)
		}
		if ok, _ := repo.IncrementUsage(ctx, nil, "v1"); ok {
			t.Error("expected increment past max_uses to be rejected")
		}
	})

	t.Run("unknown code is not found", func(t *testing.T) {
		if _, err := repo.FindByCode(ctx, nil, "NOPE"); !errors.Is(err, domain.ErrVoucherNotFound) {
			t.Errorf("expected ErrVoucherNotFound, got %v", err)
		}
	})
}

func TestOutboxRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}
	ctx := context.Background()
	repo := NewOutboxRepo(testPool)
	cleanup(t)

	payload, _ := json.Marshal(model.PaymentPaidEvent{PaymentID: "p1", TransactionID: "t1"})
	now := time.Now()
	ev := &model.OutboxEvent{ID: "01J0000000000000000000000A", Kind: model.OutboxKindPaymentPaid, AggregateID: "p1", Payload: payload, AvailableAt: now, CreatedAt: now}
	if err := repo.Enqueue(ctx, nil, ev); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	due, err := repo.ListDue(ctx, nil, now.Add(time.Second), 10)
	if err != nil || len(due) != 1 {
		t.Fatalf("expected 1 due event, got %d err=%v", len(due), err)
	}

	claimed, err := repo.Claim(ctx, nil, ev.ID)
	if err != nil || claimed.Attempts != 1 {
		t.Fatalf("expected claim with 1 attempt, got %+v err=%v", claimed, err)
	}
	if _, err := repo.Claim(ctx, nil, ev.ID); !errors.Is(err, domain.ErrOutboxEventUnavailable) {
		t.Fatalf("expected second claim to fail, got %v", err)
	}

	if err := repo.MarkRetry(ctx, nil, ev.ID, "boom", now.Add(time.Hour), false); err != nil {
		t.Fatalf("MarkRetry failed: %v", err)
	}
	if due, _ := repo.ListDue(ctx, nil, now.Add(time.Second), 10); len(due) != 0 {
		t.Error("event must not be due before its backoff elapses")
	}

	if _, err := repo.Claim(ctx, nil, ev.ID); err != nil {
		t.Fatalf("expected re-claim after retry, got %v", err)
	}
	if err := repo.MarkDelivered(ctx, nil, ev.ID); err != nil {
		t.Fatalf("MarkDelivered failed: %v", err)
	}
}
