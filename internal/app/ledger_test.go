package app_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/neomorfeo/innledger/internal/app"
	"github.com/neomorfeo/innledger/internal/domain"
)

func TestLedger_MutationGate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.room(t, "101")
	s := f.stay(t, r.ID, "2024-03-01", "2024-03-03", domain.StatusCheckedOut)

	pay, err := f.svc.Ledger.CreatePayment(ctx, f.manager, app.CreatePaymentCommand{
		StayID: s.ID, PaidAt: at("2024-03-02T09:00:00Z"),
		Channel: domain.StandardChannel(domain.MethodCard), Amount: decimal.NewFromInt(200),
	})
	require.NoError(t, err)
	tr, err := f.svc.Ledger.CreateTransfer(ctx, f.manager, app.CreateTransferCommand{
		TransferredAt: at("2024-03-31T18:00:00Z"),
		From:          domain.StandardChannel(domain.MethodCash),
		To:            domain.StandardChannel(domain.MethodCard),
		Amount:        decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	_, _, err = f.svc.Closings.ClosePreviousMonth(ctx, f.manager)
	require.NoError(t, err)

	amount := decimal.NewFromInt(250)
	_, err = f.svc.Ledger.UpdatePayment(ctx, f.manager, pay.ID, app.PaymentPatch{Amount: &amount})
	require.ErrorIs(t, err, domain.ErrPeriodClosed)

	comment := "paid at the front desk"
	got, err := f.svc.Ledger.UpdatePayment(ctx, f.manager, pay.ID, app.PaymentPatch{Comment: &comment})
	require.NoError(t, err, "comment-only edits are not gated")
	require.Equal(t, comment, got.Comment)

	require.ErrorIs(t, f.svc.Ledger.DeletePayment(ctx, f.manager, pay.ID), domain.ErrPeriodClosed)
	require.ErrorIs(t, f.svc.Ledger.DeleteTransfer(ctx, f.manager, tr.ID), domain.ErrPeriodClosed)

	// Admins bypass the gate.
	_, err = f.svc.Ledger.UpdatePayment(ctx, f.admin, pay.ID, app.PaymentPatch{Amount: &amount})
	require.NoError(t, err)
	require.NoError(t, f.svc.Ledger.DeleteTransfer(ctx, f.admin, tr.ID))
}

func TestLedger_TimezoneChangeCannotReopenRecords(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	e, err := f.svc.Ledger.CreateExpense(ctx, f.manager, app.CreateExpenseCommand{
		SpentAt: at("2024-03-31T20:00:00Z"), Amount: decimal.NewFromInt(40),
	})
	require.NoError(t, err)
	closing, _, err := f.svc.Closings.ClosePreviousMonth(ctx, f.manager)
	require.NoError(t, err)
	require.True(t, closing.Totals.TotalExpenses.Equal(decimal.NewFromInt(40)))
	require.ErrorIs(t, f.svc.Ledger.DeleteExpense(ctx, f.manager, e.ID), domain.ErrPeriodClosed)

	almaty := "Asia/Almaty"
	_, err = f.svc.Hotels.UpdateHotel(ctx, f.manager, nil, &almaty)
	require.ErrorIs(t, err, domain.ErrForbidden)
	require.ErrorIs(t, f.svc.Ledger.DeleteExpense(ctx, f.manager, e.ID), domain.ErrPeriodClosed)

	utc := "UTC"
	name := "Seaside Inn"
	h, err := f.svc.Hotels.UpdateHotel(ctx, f.manager, &name, &utc)
	require.NoError(t, err, "keeping the timezone is not a change")
	require.Equal(t, name, h.Name)

	h, err = f.svc.Hotels.UpdateHotel(ctx, f.admin, nil, &almaty)
	require.NoError(t, err)
	require.Equal(t, almaty, h.Timezone)
}

func TestLedger_MovingIntoClosedMonthIsGated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _, err := f.svc.Closings.ClosePreviousMonth(ctx, f.manager)
	require.NoError(t, err)

	e, err := f.svc.Ledger.CreateExpense(ctx, f.manager, app.CreateExpenseCommand{
		SpentAt: at("2024-04-02T10:00:00Z"), Category: domain.CategoryCleaning, Amount: decimal.NewFromInt(30),
	})
	require.NoError(t, err)

	back := at("2024-03-30T10:00:00Z")
	_, err = f.svc.Ledger.UpdateExpense(ctx, f.manager, e.ID, app.ExpensePatch{SpentAt: &back})
	require.ErrorIs(t, err, domain.ErrPeriodClosed)
}

func TestLedger_CreationInClosedMonthIsNotGated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, _, err := f.svc.Closings.ClosePreviousMonth(ctx, f.manager)
	require.NoError(t, err)

	_, err = f.svc.Ledger.CreateExpense(ctx, f.manager, app.CreateExpenseCommand{
		SpentAt: at("2024-03-15T10:00:00Z"), Amount: decimal.NewFromInt(10),
	})
	require.NoError(t, err)
}

func TestLedger_ExpenseVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	mine, err := f.svc.Ledger.CreateExpense(ctx, f.manager, app.CreateExpenseCommand{Amount: decimal.NewFromInt(10)})
	require.NoError(t, err)
	require.Equal(t, f.manager.UserID, mine.CreatedBy)
	require.Equal(t, domain.CategoryOther, mine.Category)
	require.Equal(t, f.clock.Now(), mine.SpentAt)

	_, err = f.svc.Ledger.CreateExpense(ctx, f.admin, app.CreateExpenseCommand{Amount: decimal.NewFromInt(20)})
	require.NoError(t, err)

	own, err := f.svc.Ledger.ListExpenses(ctx, f.manager, domain.TimeRange{})
	require.NoError(t, err)
	require.Len(t, own, 1)
	require.Equal(t, mine.ID, own[0].ID)

	all, err := f.svc.Ledger.ListExpenses(ctx, f.admin, domain.TimeRange{})
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestLedger_TransferValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cash := domain.StandardChannel(domain.MethodCash)
	card := domain.StandardChannel(domain.MethodCard)

	tests := []struct {
		name string
		cmd  app.CreateTransferCommand
	}{
		{"missing from", app.CreateTransferCommand{From: domain.ChannelFromParts("", ""), To: cash, Amount: decimal.NewFromInt(5)}},
		{"missing to", app.CreateTransferCommand{From: card, Amount: decimal.NewFromInt(5)}},
		{"same channel", app.CreateTransferCommand{From: cash, To: cash, Amount: decimal.NewFromInt(5)}},
		{"zero amount", app.CreateTransferCommand{From: cash, To: card}},
		{"negative amount", app.CreateTransferCommand{From: cash, To: card, Amount: decimal.NewFromInt(-5)}},
		{"custom label equal to method", app.CreateTransferCommand{From: cash, To: domain.CustomChannelLabel("CASH"), Amount: decimal.NewFromInt(5)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Ledger.CreateTransfer(ctx, f.manager, tt.cmd)
			require.ErrorIs(t, err, domain.ErrInvalidInterval)
		})
	}

	tr, err := f.svc.Ledger.CreateTransfer(ctx, f.manager, app.CreateTransferCommand{From: cash, To: card, Amount: decimal.NewFromInt(5)})
	require.NoError(t, err)
	_, err = f.svc.Ledger.UpdateTransfer(ctx, f.manager, tr.ID, app.TransferPatch{To: &cash})
	require.ErrorIs(t, err, domain.ErrInvalidInterval)
}

func TestLedger_PaymentNeedsStay(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Ledger.CreatePayment(context.Background(), f.manager, app.CreatePaymentCommand{
		StayID: "missing", Amount: decimal.NewFromInt(1),
	})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLedger_Events(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	e, err := f.svc.Ledger.CreateExpense(ctx, f.manager, app.CreateExpenseCommand{Amount: decimal.NewFromInt(10)})
	require.NoError(t, err)
	amount := decimal.NewFromInt(12)
	_, err = f.svc.Ledger.UpdateExpense(ctx, f.manager, e.ID, app.ExpensePatch{Amount: &amount})
	require.NoError(t, err)
	require.NoError(t, f.svc.Ledger.DeleteExpense(ctx, f.manager, e.ID))

	events := f.publisher.Events()
	require.Len(t, events, 3)
	require.Equal(t, domain.ChangeCreated, events[0].Change)
	require.Nil(t, events[0].Before)
	require.Equal(t, domain.ChangeUpdated, events[1].Change)
	require.Equal(t, e, events[1].Before)
	require.Equal(t, domain.ChangeDeleted, events[2].Change)
	require.Nil(t, events[2].After)
	for _, ev := range events {
		require.Equal(t, domain.KindExpense, ev.Entity)
		require.Equal(t, f.manager.UserID, ev.ActorID)
	}
}

func TestLedger_PublishFailureKeepsWrite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.publisher.err = errPublish

	e, err := f.svc.Ledger.CreateExpense(ctx, f.manager, app.CreateExpenseCommand{Amount: decimal.NewFromInt(10)})
	require.NoError(t, err)
	_, err = f.svc.Ledger.GetExpense(ctx, f.manager, e.ID)
	require.NoError(t, err)
}
