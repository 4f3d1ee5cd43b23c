package sqlite

import (
	"context"
	"fmt"

	"github.com/neomorfeo/innledger/internal/domain"
)

// Channels are stored as (method, custom_label) and rebuilt with
// domain.ChannelFromParts, where the label wins.

// --- payments ---

const paymentColumns = `id, tenant_id, stay_id, paid_at, method, custom_label, amount, comment, created_at`

// CreatePayment inserts the payment only if its stay exists in the same tenant.
func (s *Store) CreatePayment(ctx context.Context, p domain.Payment) error {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO payments (`+paymentColumns+`)
		 SELECT ?, ?, ?, ?, ?, ?, ?, ?, ?
		 WHERE EXISTS (SELECT 1 FROM stays WHERE tenant_id = ? AND id = ?)`,
		p.ID, p.TenantID, p.StayID, formatTime(p.PaidAt),
		string(p.Channel.Method()), p.Channel.CustomLabel(), p.Amount, p.Comment, formatTime(p.CreatedAt),
		p.TenantID, p.StayID,
	)
	if err != nil {
		return fmt.Errorf("inserting payment: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return &domain.NotFoundError{Kind: domain.KindStay, ID: p.StayID}
	}
	return nil
}

func (s *Store) GetPayment(ctx context.Context, tenantID, id string) (domain.Payment, error) {
	return queryOne(ctx, s.db, domain.KindPayment, id, scanPayment,
		`SELECT `+paymentColumns+` FROM payments WHERE tenant_id = ? AND id = ?`, tenantID, id)
}

func (s *Store) ListPayments(ctx context.Context, tenantID string, r domain.TimeRange) ([]domain.Payment, error) {
	query, args := rangeClause(`SELECT `+paymentColumns+` FROM payments WHERE tenant_id = ?`,
		"paid_at", r, []any{tenantID})
	payments, err := queryAll(ctx, s.db, scanPayment, query+` ORDER BY paid_at DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("listing payments: %w", err)
	}
	return payments, nil
}

func (s *Store) CountPaymentsForStay(ctx context.Context, tenantID, stayID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM payments WHERE tenant_id = ? AND stay_id = ?`, tenantID, stayID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting payments: %w", err)
	}
	return n, nil
}

func (s *Store) UpdatePayment(ctx context.Context, p domain.Payment) error {
	return execOne(ctx, s.db, domain.KindPayment, p.ID,
		`UPDATE payments SET paid_at = ?, method = ?, custom_label = ?, amount = ?, comment = ?
		 WHERE tenant_id = ? AND id = ?`,
		formatTime(p.PaidAt), string(p.Channel.Method()), p.Channel.CustomLabel(), p.Amount, p.Comment,
		p.TenantID, p.ID)
}

func (s *Store) DeletePayment(ctx context.Context, tenantID, id string) error {
	return execOne(ctx, s.db, domain.KindPayment, id,
		`DELETE FROM payments WHERE tenant_id = ? AND id = ?`, tenantID, id)
}

func scanPayment(row scanner) (domain.Payment, error) {
	var p domain.Payment
	var paidAt, method, label, createdAt string
	err := row.Scan(&p.ID, &p.TenantID, &p.StayID, &paidAt, &method, &label, &p.Amount, &p.Comment, &createdAt)
	if err != nil {
		return domain.Payment{}, err
	}
	var d decoder
	p.PaidAt = d.time(paidAt)
	p.Channel = domain.ChannelFromParts(method, label)
	p.CreatedAt = d.time(createdAt)
	return p, d.err
}

// --- expenses ---

const expenseColumns = `id, tenant_id, spent_at, category, method, custom_label, amount, created_by, comment, created_at`

func (s *Store) CreateExpense(ctx context.Context, e domain.Expense) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO expenses (`+expenseColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.TenantID, formatTime(e.SpentAt), string(e.Category),
		string(e.Channel.Method()), e.Channel.CustomLabel(), e.Amount, e.CreatedBy, e.Comment,
		formatTime(e.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting expense: %w", err)
	}
	return nil
}

func (s *Store) GetExpense(ctx context.Context, tenantID, id string) (domain.Expense, error) {
	return queryOne(ctx, s.db, domain.KindExpense, id, scanExpense,
		`SELECT `+expenseColumns+` FROM expenses WHERE tenant_id = ? AND id = ?`, tenantID, id)
}

func (s *Store) ListExpenses(ctx context.Context, tenantID string, r domain.TimeRange) ([]domain.Expense, error) {
	query, args := rangeClause(`SELECT `+expenseColumns+` FROM expenses WHERE tenant_id = ?`,
		"spent_at", r, []any{tenantID})
	expenses, err := queryAll(ctx, s.db, scanExpense, query+` ORDER BY spent_at DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("listing expenses: %w", err)
	}
	return expenses, nil
}

func (s *Store) UpdateExpense(ctx context.Context, e domain.Expense) error {
	return execOne(ctx, s.db, domain.KindExpense, e.ID,
		`UPDATE expenses SET spent_at = ?, category = ?, method = ?, custom_label = ?, amount = ?, comment = ?
		 WHERE tenant_id = ? AND id = ?`,
		formatTime(e.SpentAt), string(e.Category), string(e.Channel.Method()), e.Channel.CustomLabel(),
		e.Amount, e.Comment, e.TenantID, e.ID)
}

func (s *Store) DeleteExpense(ctx context.Context, tenantID, id string) error {
	return execOne(ctx, s.db, domain.KindExpense, id,
		`DELETE FROM expenses WHERE tenant_id = ? AND id = ?`, tenantID, id)
}

func scanExpense(row scanner) (domain.Expense, error) {
	var e domain.Expense
	var spentAt, category, method, label, createdAt string
	err := row.Scan(&e.ID, &e.TenantID, &spentAt, &category, &method, &label, &e.Amount,
		&e.CreatedBy, &e.Comment, &createdAt)
	if err != nil {
		return domain.Expense{}, err
	}
	var d decoder
	e.SpentAt = d.time(spentAt)
	e.Category = domain.ExpenseCategory(category)
	e.Channel = domain.ChannelFromParts(method, label)
	e.CreatedAt = d.time(createdAt)
	return e, d.err
}

// --- transfers ---

const transferColumns = `id, tenant_id, transferred_at, from_method, from_custom_label,
	to_method, to_custom_label, amount, comment, created_at`

func (s *Store) CreateTransfer(ctx context.Context, t domain.Transfer) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transfers (`+transferColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.TenantID, formatTime(t.TransferredAt),
		string(t.From.Method()), t.From.CustomLabel(),
		string(t.To.Method()), t.To.CustomLabel(),
		t.Amount, t.Comment, formatTime(t.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting transfer: %w", err)
	}
	return nil
}

func (s *Store) GetTransfer(ctx context.Context, tenantID, id string) (domain.Transfer, error) {
	return queryOne(ctx, s.db, domain.KindTransfer, id, scanTransfer,
		`SELECT `+transferColumns+` FROM transfers WHERE tenant_id = ? AND id = ?`, tenantID, id)
}

func (s *Store) ListTransfers(ctx context.Context, tenantID string, r domain.TimeRange) ([]domain.Transfer, error) {
	query, args := rangeClause(`SELECT `+transferColumns+` FROM transfers WHERE tenant_id = ?`,
		"transferred_at", r, []any{tenantID})
	transfers, err := queryAll(ctx, s.db, scanTransfer, query+` ORDER BY transferred_at DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transfers: %w", err)
	}
	return transfers, nil
}

func (s *Store) UpdateTransfer(ctx context.Context, t domain.Transfer) error {
	return execOne(ctx, s.db, domain.KindTransfer, t.ID,
		`UPDATE transfers SET transferred_at = ?, from_method = ?, from_custom_label = ?,
		 to_method = ?, to_custom_label = ?, amount = ?, comment = ?
		 WHERE tenant_id = ? AND id = ?`,
		formatTime(t.TransferredAt), string(t.From.Method()), t.From.CustomLabel(),
		string(t.To.Method()), t.To.CustomLabel(), t.Amount, t.Comment,
		t.TenantID, t.ID)
}

func (s *Store) DeleteTransfer(ctx context.Context, tenantID, id string) error {
	return execOne(ctx, s.db, domain.KindTransfer, id,
		`DELETE FROM transfers WHERE tenant_id = ? AND id = ?`, tenantID, id)
}

func scanTransfer(row scanner) (domain.Transfer, error) {
	var t domain.Transfer
	var at, fromMethod, fromLabel, toMethod, toLabel, createdAt string
	err := row.Scan(&t.ID, &t.TenantID, &at, &fromMethod, &fromLabel, &toMethod, &toLabel,
		&t.Amount, &t.Comment, &createdAt)
	if err != nil {
		return domain.Transfer{}, err
	}
	var d decoder
	t.TransferredAt = d.time(at)
	t.From = domain.ChannelFromParts(fromMethod, fromLabel)
	t.To = domain.ChannelFromParts(toMethod, toLabel)
	t.CreatedAt = d.time(createdAt)
	return t, d.err
}
