package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/neomorfeo/innledger/internal/domain"
)

// --- month closings ---

const closingColumns = `id, tenant_id, month, closed_at, totals_json`

// InsertClosingIfAbsent relies on UNIQUE (tenant_id, month): a concurrent
// close loses the insert and reads the winner's row.
func (s *Store) InsertClosingIfAbsent(ctx context.Context, c domain.MonthClosing) (domain.MonthClosing, bool, error) {
	totals, err := json.Marshal(c.Totals)
	if err != nil {
		return domain.MonthClosing{}, false, fmt.Errorf("encoding totals: %w", err)
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO month_closings (`+closingColumns+`) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (tenant_id, month) DO NOTHING`,
		c.ID, c.TenantID, string(c.Month), formatTime(c.ClosedAt), string(totals),
	)
	if err != nil {
		return domain.MonthClosing{}, false, fmt.Errorf("inserting closing: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return domain.MonthClosing{}, false, fmt.Errorf("checking rows affected: %w", err)
	}

	stored, err := s.GetClosing(ctx, c.TenantID, c.Month)
	if err != nil {
		return domain.MonthClosing{}, false, err
	}
	return stored, n == 1, nil
}

func (s *Store) GetClosing(ctx context.Context, tenantID string, month domain.Month) (domain.MonthClosing, error) {
	return queryOne(ctx, s.db, domain.KindMonthClosing, month.String(), scanClosing,
		`SELECT `+closingColumns+` FROM month_closings WHERE tenant_id = ? AND month = ?`,
		tenantID, string(month))
}

func (s *Store) ListClosings(ctx context.Context, tenantID string) ([]domain.MonthClosing, error) {
	closings, err := queryAll(ctx, s.db, scanClosing,
		`SELECT `+closingColumns+` FROM month_closings WHERE tenant_id = ? ORDER BY month DESC`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("listing closings: %w", err)
	}
	return closings, nil
}

func (s *Store) DeleteClosing(ctx context.Context, tenantID string, month domain.Month) error {
	return execOne(ctx, s.db, domain.KindMonthClosing, month.String(),
		`DELETE FROM month_closings WHERE tenant_id = ? AND month = ?`, tenantID, string(month))
}

func scanClosing(row scanner) (domain.MonthClosing, error) {
	var c domain.MonthClosing
	var month, closedAt, totals string
	if err := row.Scan(&c.ID, &c.TenantID, &month, &closedAt, &totals); err != nil {
		return domain.MonthClosing{}, err
	}
	if err := json.Unmarshal([]byte(totals), &c.Totals); err != nil {
		return domain.MonthClosing{}, fmt.Errorf("decoding totals of %s: %w", month, err)
	}
	var d decoder
	c.Month = domain.Month(month)
	c.ClosedAt = d.time(closedAt)
	return c, d.err
}
