package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/neomorfeo/innledger/internal/domain"
)

// RegisterHotelCommand bootstraps a tenant together with its owner.
type RegisterHotelCommand struct {
	Name          string
	Timezone      string
	OwnerFullName string
	OwnerUsername string
}

// HotelService manages tenant settings.
type HotelService struct {
	store domain.Store
	guard *AccessGuard
	clock domain.Clock
}

// NewHotelService wires a HotelService.
func NewHotelService(store domain.Store, guard *AccessGuard, clock domain.Clock) *HotelService {
	return &HotelService{store: store, guard: guard, clock: clock}
}

// RegisterHotel creates a hotel and its first profile, which becomes the
// owner. It is called by the identity provider on sign-up.
func (s *HotelService) RegisterHotel(ctx context.Context, cmd RegisterHotelCommand) (domain.Hotel, domain.Profile, error) {
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return domain.Hotel{}, domain.Profile{}, &domain.ValidationError{Kind: domain.ErrInvalidInput, Message: "hotel name is required"}
	}
	now := s.clock.Now()
	hotel, err := domain.NewHotel(generateID(), name, cmd.Timezone, now)
	if err != nil {
		return domain.Hotel{}, domain.Profile{}, err
	}
	owner := domain.Profile{
		ID:        generateID(),
		TenantID:  hotel.ID,
		FullName:  strings.TrimSpace(cmd.OwnerFullName),
		Username:  strings.ToLower(strings.TrimSpace(cmd.OwnerUsername)),
		Role:      domain.RoleAdmin,
		CreatedAt: now,
	}
	if err := validateProfile(owner); err != nil {
		return domain.Hotel{}, domain.Profile{}, err
	}

	if err := s.store.CreateHotel(ctx, hotel); err != nil {
		return domain.Hotel{}, domain.Profile{}, fmt.Errorf("creating hotel: %w", err)
	}
	if err := s.store.CreateProfile(ctx, owner); err != nil {
		if derr := s.store.DeleteHotel(ctx, hotel.ID); derr != nil {
			return domain.Hotel{}, domain.Profile{}, errors.Join(err, fmt.Errorf("removing hotel %s: %w", hotel.ID, derr))
		}
		return domain.Hotel{}, domain.Profile{}, err
	}
	return hotel, owner, nil
}

// GetHotel returns the caller's hotel settings.
func (s *HotelService) GetHotel(ctx context.Context, caller domain.Caller) (domain.Hotel, error) {
	if err := s.guard.Authorize(caller); err != nil {
		return domain.Hotel{}, err
	}
	return s.store.GetHotel(ctx, caller.TenantID)
}

// UpdateHotel changes the name and, when set, the timezone of the caller's
// hotel. Changing the timezone moves records across month boundaries, so it
// is admin only.
func (s *HotelService) UpdateHotel(ctx context.Context, caller domain.Caller, name, timezone *string) (domain.Hotel, error) {
	if err := s.guard.Authorize(caller); err != nil {
		return domain.Hotel{}, err
	}
	hotel, err := s.store.GetHotel(ctx, caller.TenantID)
	if err != nil {
		return domain.Hotel{}, err
	}
	if name != nil {
		hotel.Name = strings.TrimSpace(*name)
	}
	if timezone != nil && *timezone != hotel.Timezone {
		if err := s.guard.RequireAdmin(caller, "changing the timezone"); err != nil {
			return domain.Hotel{}, err
		}
		hotel.Timezone = *timezone
	}
	validated, err := domain.NewHotel(hotel.ID, hotel.Name, hotel.Timezone, hotel.CreatedAt)
	if err != nil {
		return domain.Hotel{}, err
	}
	if validated.Name == "" {
		return domain.Hotel{}, &domain.ValidationError{Kind: domain.ErrInvalidInput, Message: "hotel name is required"}
	}
	if err := s.store.UpdateHotel(ctx, validated); err != nil {
		return domain.Hotel{}, fmt.Errorf("updating hotel: %w", err)
	}
	return validated, nil
}
