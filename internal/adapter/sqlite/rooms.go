package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/neomorfeo/innledger/internal/domain"
)

// --- hotels ---

func (s *Store) CreateHotel(ctx context.Context, h domain.Hotel) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO hotels (id, name, timezone, created_at) VALUES (?, ?, ?, ?)`,
		h.ID, h.Name, h.Timezone, formatTime(h.CreatedAt),
	)
	if isUniqueViolation(err) {
		return &domain.ConflictError{Kind: domain.KindHotel, Key: h.ID}
	}
	if err != nil {
		return fmt.Errorf("inserting hotel: %w", err)
	}
	return nil
}

func (s *Store) GetHotel(ctx context.Context, id string) (domain.Hotel, error) {
	return queryOne(ctx, s.db, domain.KindHotel, id, scanHotel,
		`SELECT id, name, timezone, created_at FROM hotels WHERE id = ?`, id)
}

func (s *Store) UpdateHotel(ctx context.Context, h domain.Hotel) error {
	return execOne(ctx, s.db, domain.KindHotel, h.ID,
		`UPDATE hotels SET name = ?, timezone = ? WHERE id = ?`,
		h.Name, h.Timezone, h.ID)
}

func (s *Store) DeleteHotel(ctx context.Context, id string) error {
	return execOne(ctx, s.db, domain.KindHotel, id, `DELETE FROM hotels WHERE id = ?`, id)
}

func scanHotel(row scanner) (domain.Hotel, error) {
	var h domain.Hotel
	var createdAt string
	if err := row.Scan(&h.ID, &h.Name, &h.Timezone, &createdAt); err != nil {
		return domain.Hotel{}, err
	}
	var d decoder
	h.CreatedAt = d.time(createdAt)
	return h, d.err
}

// --- rooms ---

const roomColumns = `id, tenant_id, number, floor, room_type, capacity, base_price, active, notes, created_at`

func (s *Store) CreateRoom(ctx context.Context, r domain.Room) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO rooms (`+roomColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.TenantID, r.Number, r.Floor, string(r.Type), r.Capacity,
		r.BasePrice, r.Active, r.Notes, formatTime(r.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting room: %w", err)
	}
	return nil
}

func (s *Store) GetRoom(ctx context.Context, tenantID, id string) (domain.Room, error) {
	return queryOne(ctx, s.db, domain.KindRoom, id, scanRoom,
		`SELECT `+roomColumns+` FROM rooms WHERE tenant_id = ? AND id = ?`, tenantID, id)
}

func (s *Store) ListRooms(ctx context.Context, tenantID string) ([]domain.Room, error) {
	rooms, err := queryAll(ctx, s.db, scanRoom,
		`SELECT `+roomColumns+` FROM rooms WHERE tenant_id = ? ORDER BY floor, number`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("listing rooms: %w", err)
	}
	return rooms, nil
}

func (s *Store) UpdateRoom(ctx context.Context, r domain.Room) error {
	return execOne(ctx, s.db, domain.KindRoom, r.ID,
		`UPDATE rooms SET number = ?, floor = ?, room_type = ?, capacity = ?, base_price = ?, active = ?, notes = ?
		 WHERE tenant_id = ? AND id = ?`,
		r.Number, r.Floor, string(r.Type), r.Capacity, r.BasePrice, r.Active, r.Notes,
		r.TenantID, r.ID)
}

func (s *Store) DeleteRoom(ctx context.Context, tenantID, id string) error {
	err := execOne(ctx, s.db, domain.KindRoom, id,
		`DELETE FROM rooms WHERE tenant_id = ? AND id = ?`, tenantID, id)
	if isForeignKeyViolation(err) {
		return &domain.ConflictError{Kind: domain.KindStay, Key: "room " + id}
	}
	return err
}

func scanRoom(row scanner) (domain.Room, error) {
	var r domain.Room
	var roomType, createdAt string
	err := row.Scan(&r.ID, &r.TenantID, &r.Number, &r.Floor, &roomType, &r.Capacity,
		&r.BasePrice, &r.Active, &r.Notes, &createdAt)
	if err != nil {
		return domain.Room{}, err
	}
	var d decoder
	r.Type = domain.RoomType(roomType)
	r.CreatedAt = d.time(createdAt)
	return r, d.err
}

// --- stays ---

const stayColumns = `id, tenant_id, room_id, guest_name, guest_phone, check_in, check_out, status,
	price_per_night, weekly_discount, manual_adjustment, deposit_expected, comment, created_at`

func (s *Store) CreateStay(ctx context.Context, st domain.Stay) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO stays (`+stayColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		st.ID, st.TenantID, st.RoomID, st.GuestName, st.GuestPhone,
		formatDate(st.CheckIn), formatDate(st.CheckOut), string(st.Status),
		st.PricePerNight, st.WeeklyDiscount, st.ManualAdjustment, st.DepositExpected,
		st.Comment, formatTime(st.CreatedAt),
	)
	if isForeignKeyViolation(err) {
		return &domain.NotFoundError{Kind: domain.KindRoom, ID: st.RoomID}
	}
	if err != nil {
		return fmt.Errorf("inserting stay: %w", err)
	}
	return nil
}

func (s *Store) GetStay(ctx context.Context, tenantID, id string) (domain.Stay, error) {
	return queryOne(ctx, s.db, domain.KindStay, id, scanStay,
		`SELECT `+stayColumns+` FROM stays WHERE tenant_id = ? AND id = ?`, tenantID, id)
}

// ListStays filters in SQL. Dates are stored as YYYY-MM-DD so string
// comparison orders them correctly.
func (s *Store) ListStays(ctx context.Context, tenantID string, f domain.StayFilter) ([]domain.Stay, error) {
	query := `SELECT ` + stayColumns + ` FROM stays WHERE tenant_id = ?`
	args := []any{tenantID}

	if f.RoomID != "" {
		query += ` AND room_id = ?`
		args = append(args, f.RoomID)
	}
	if len(f.Statuses) > 0 {
		query += ` AND status IN (?` + strings.Repeat(`, ?`, len(f.Statuses)-1) + `)`
		for _, st := range f.Statuses {
			args = append(args, string(st))
		}
	}
	if f.Overlapping != nil {
		query += ` AND check_in < ? AND check_out > ?`
		args = append(args, formatDate(f.Overlapping.End), formatDate(f.Overlapping.Start))
	}
	query += ` ORDER BY check_in DESC, created_at DESC, id`

	stays, err := queryAll(ctx, s.db, scanStay, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing stays: %w", err)
	}
	return stays, nil
}

func (s *Store) UpdateStay(ctx context.Context, st domain.Stay) error {
	err := execOne(ctx, s.db, domain.KindStay, st.ID,
		`UPDATE stays SET room_id = ?, guest_name = ?, guest_phone = ?, check_in = ?, check_out = ?, status = ?,
		 price_per_night = ?, weekly_discount = ?, manual_adjustment = ?, deposit_expected = ?, comment = ?
		 WHERE tenant_id = ? AND id = ?`,
		st.RoomID, st.GuestName, st.GuestPhone, formatDate(st.CheckIn), formatDate(st.CheckOut), string(st.Status),
		st.PricePerNight, st.WeeklyDiscount, st.ManualAdjustment, st.DepositExpected, st.Comment,
		st.TenantID, st.ID)
	if isForeignKeyViolation(err) {
		return &domain.NotFoundError{Kind: domain.KindRoom, ID: st.RoomID}
	}
	return err
}

func (s *Store) DeleteStay(ctx context.Context, tenantID, id string) error {
	err := execOne(ctx, s.db, domain.KindStay, id,
		`DELETE FROM stays WHERE tenant_id = ? AND id = ?`, tenantID, id)
	if isForeignKeyViolation(err) {
		return domain.ErrHasPayments
	}
	return err
}

func scanStay(row scanner) (domain.Stay, error) {
	var st domain.Stay
	var checkIn, checkOut, status, createdAt string
	err := row.Scan(&st.ID, &st.TenantID, &st.RoomID, &st.GuestName, &st.GuestPhone,
		&checkIn, &checkOut, &status,
		&st.PricePerNight, &st.WeeklyDiscount, &st.ManualAdjustment, &st.DepositExpected,
		&st.Comment, &createdAt)
	if err != nil {
		return domain.Stay{}, err
	}
	var d decoder
	st.CheckIn = d.date(checkIn)
	st.CheckOut = d.date(checkOut)
	st.Status = domain.StayStatus(status)
	st.CreatedAt = d.time(createdAt)
	return st, d.err
}
