package app

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/neomorfeo/innledger/internal/domain"
)

// ChannelService manages the hotel's custom payment channel names.
type ChannelService struct {
	store domain.Store
	guard *AccessGuard
	clock domain.Clock
}

// NewChannelService wires a ChannelService.
func NewChannelService(store domain.Store, guard *AccessGuard, clock domain.Clock) *ChannelService {
	return &ChannelService{store: store, guard: guard, clock: clock}
}

// CreateChannel adds a custom channel. Admin only; names are unique per hotel.
func (s *ChannelService) CreateChannel(ctx context.Context, caller domain.Caller, name string) (domain.CustomChannel, error) {
	if err := s.guard.RequireAdmin(caller, "creating payment channels"); err != nil {
		return domain.CustomChannel{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.CustomChannel{}, &domain.ValidationError{Kind: domain.ErrInvalidInput, Message: "channel name is required"}
	}
	if domain.Method(strings.ToUpper(name)).Valid() {
		return domain.CustomChannel{}, &domain.ConflictError{Kind: domain.KindCustomChannel, Key: name}
	}

	c := domain.CustomChannel{
		ID:        generateID(),
		TenantID:  caller.TenantID,
		Name:      name,
		CreatedAt: s.clock.Now(),
	}
	if err := s.store.CreateChannel(ctx, c); err != nil {
		return domain.CustomChannel{}, err
	}
	return c, nil
}

// ListChannels returns the hotel's custom channels ordered by name.
func (s *ChannelService) ListChannels(ctx context.Context, caller domain.Caller) ([]domain.CustomChannel, error) {
	if err := s.guard.Authorize(caller); err != nil {
		return nil, err
	}
	channels, err := s.store.ListChannels(ctx, caller.TenantID)
	if err != nil {
		return nil, fmt.Errorf("listing channels: %w", err)
	}
	sort.Slice(channels, func(i, j int) bool { return channels[i].Name < channels[j].Name })
	return channels, nil
}

// DeleteChannel removes a custom channel. Admin only. Past payments keep their label.
func (s *ChannelService) DeleteChannel(ctx context.Context, caller domain.Caller, id string) error {
	if err := s.guard.RequireAdmin(caller, "deleting payment channels"); err != nil {
		return err
	}
	if _, err := s.store.GetChannel(ctx, caller.TenantID, id); err != nil {
		return err
	}
	return s.store.DeleteChannel(ctx, caller.TenantID, id)
}
