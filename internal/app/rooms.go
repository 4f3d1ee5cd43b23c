package app

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/neomorfeo/innledger/internal/domain"
)

// CreateRoomCommand holds the fields of a new room.
type CreateRoomCommand struct {
	Number    string
	Floor     int
	Type      domain.RoomType
	Capacity  int
	BasePrice decimal.Decimal
	Active    bool
	Notes     string
}

// RoomPatch lists the room fields to change. Nil fields are kept.
type RoomPatch struct {
	Number    *string
	Floor     *int
	Type      *domain.RoomType
	Capacity  *int
	BasePrice *decimal.Decimal
	Active    *bool
	Notes     *string
}

// RoomService manages the hotel's rooms.
type RoomService struct {
	store domain.Store
	guard *AccessGuard
	locks *RoomLocks
	clock domain.Clock
}

// NewRoomService wires a RoomService. locks must be the instance shared
// with the BookingService.
func NewRoomService(store domain.Store, guard *AccessGuard, locks *RoomLocks, clock domain.Clock) *RoomService {
	return &RoomService{store: store, guard: guard, locks: locks, clock: clock}
}

// CreateRoom adds a room to the caller's hotel.
func (s *RoomService) CreateRoom(ctx context.Context, caller domain.Caller, cmd CreateRoomCommand) (domain.Room, error) {
	if err := s.guard.Authorize(caller); err != nil {
		return domain.Room{}, err
	}
	if cmd.Type == "" {
		cmd.Type = domain.RoomDouble
	}
	room := domain.Room{
		ID:        generateID(),
		TenantID:  caller.TenantID,
		Number:    strings.TrimSpace(cmd.Number),
		Floor:     cmd.Floor,
		Type:      cmd.Type,
		Capacity:  cmd.Capacity,
		BasePrice: cmd.BasePrice,
		Active:    cmd.Active,
		Notes:     cmd.Notes,
		CreatedAt: s.clock.Now(),
	}
	if err := validateRoom(room); err != nil {
		return domain.Room{}, err
	}
	if err := s.store.CreateRoom(ctx, room); err != nil {
		return domain.Room{}, fmt.Errorf("creating room: %w", err)
	}
	return room, nil
}

// GetRoom returns one room of the hotel.
func (s *RoomService) GetRoom(ctx context.Context, caller domain.Caller, id string) (domain.Room, error) {
	if err := s.guard.Authorize(caller); err != nil {
		return domain.Room{}, err
	}
	return s.store.GetRoom(ctx, caller.TenantID, id)
}

// ListRooms returns the hotel's rooms ordered by floor, then number.
func (s *RoomService) ListRooms(ctx context.Context, caller domain.Caller) ([]domain.Room, error) {
	if err := s.guard.Authorize(caller); err != nil {
		return nil, err
	}
	rooms, err := s.store.ListRooms(ctx, caller.TenantID)
	if err != nil {
		return nil, fmt.Errorf("listing rooms: %w", err)
	}
	sort.SliceStable(rooms, func(i, j int) bool {
		if rooms[i].Floor != rooms[j].Floor {
			return rooms[i].Floor < rooms[j].Floor
		}
		return rooms[i].Number < rooms[j].Number
	})
	return rooms, nil
}

// UpdateRoom applies patch to a room.
func (s *RoomService) UpdateRoom(ctx context.Context, caller domain.Caller, id string, patch RoomPatch) (domain.Room, error) {
	if err := s.guard.Authorize(caller); err != nil {
		return domain.Room{}, err
	}
	room, err := s.store.GetRoom(ctx, caller.TenantID, id)
	if err != nil {
		return domain.Room{}, err
	}
	if patch.Number != nil {
		room.Number = strings.TrimSpace(*patch.Number)
	}
	if patch.Floor != nil {
		room.Floor = *patch.Floor
	}
	if patch.Type != nil {
		room.Type = *patch.Type
	}
	if patch.Capacity != nil {
		room.Capacity = *patch.Capacity
	}
	if patch.BasePrice != nil {
		room.BasePrice = *patch.BasePrice
	}
	if patch.Active != nil {
		room.Active = *patch.Active
	}
	if patch.Notes != nil {
		room.Notes = *patch.Notes
	}
	if err := validateRoom(room); err != nil {
		return domain.Room{}, err
	}
	if err := s.store.UpdateRoom(ctx, room); err != nil {
		return domain.Room{}, fmt.Errorf("updating room %s: %w", id, err)
	}
	return room, nil
}

// DeleteRoom removes a room that no stay references.
func (s *RoomService) DeleteRoom(ctx context.Context, caller domain.Caller, id string) error {
	if err := s.guard.Authorize(caller); err != nil {
		return err
	}

	unlock := s.locks.Lock(caller.TenantID, id)
	defer unlock()

	if _, err := s.store.GetRoom(ctx, caller.TenantID, id); err != nil {
		return err
	}
	stays, err := s.store.ListStays(ctx, caller.TenantID, domain.StayFilter{RoomID: id})
	if err != nil {
		return fmt.Errorf("listing stays of room %s: %w", id, err)
	}
	if len(stays) > 0 {
		return &domain.ConflictError{Kind: domain.KindStay, Key: "room " + id}
	}
	if err := s.store.DeleteRoom(ctx, caller.TenantID, id); err != nil {
		return fmt.Errorf("deleting room %s: %w", id, err)
	}
	return nil
}

func validateRoom(r domain.Room) error {
	if r.Number == "" {
		return &domain.ValidationError{Kind: domain.ErrInvalidInput, Message: "room number is required"}
	}
	switch r.Type {
	case domain.RoomSingle, domain.RoomDouble, domain.RoomSuite, domain.RoomFamily:
	default:
		return &domain.ValidationError{Kind: domain.ErrInvalidInput, Message: fmt.Sprintf("unknown room type %q", r.Type)}
	}
	if r.Capacity < 0 || r.BasePrice.IsNegative() {
		return &domain.ValidationError{Kind: domain.ErrInvalidInput, Message: "capacity and base price must not be negative"}
	}
	return nil
}
