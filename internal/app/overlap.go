package app

import (
	"context"
	"fmt"

	"github.com/neomorfeo/innledger/internal/domain"
)

// OverlapDetector decides whether a proposed stay interval collides with an
// existing stay of the same room. It only reads the store.
type OverlapDetector struct {
	stays domain.StayRepository
}

// NewOverlapDetector creates a detector over the given stay repository.
func NewOverlapDetector(stays domain.StayRepository) *OverlapDetector {
	return &OverlapDetector{stays: stays}
}

// Conflicts reports whether any stay of roomID with a status in statuses
// overlaps iv. excludeID, when set, is skipped so a stay is never checked
// against itself.
func (d *OverlapDetector) Conflicts(ctx context.Context, tenantID, roomID string, iv domain.Interval, statuses []domain.StayStatus, excludeID string) (bool, error) {
	_, found, err := d.FirstConflict(ctx, tenantID, roomID, iv, statuses, excludeID)
	return found, err
}

// FirstConflict is Conflicts but also returns the first conflicting stay.
func (d *OverlapDetector) FirstConflict(ctx context.Context, tenantID, roomID string, iv domain.Interval, statuses []domain.StayStatus, excludeID string) (domain.Stay, bool, error) {
	if !iv.End.After(iv.Start) {
		return domain.Stay{}, false, &domain.ValidationError{
			Kind:    domain.ErrInvalidInterval,
			Message: "interval must end after it starts",
		}
	}

	candidates, err := d.stays.ListStays(ctx, tenantID, domain.StayFilter{
		RoomID:      roomID,
		Statuses:    statuses,
		Overlapping: &iv,
	})
	if err != nil {
		return domain.Stay{}, false, fmt.Errorf("scanning stays of room %s: %w", roomID, err)
	}

	for _, s := range candidates {
		if s.ID == excludeID || s.RoomID != roomID || !s.Status.In(statuses) {
			continue
		}
		if s.Interval().Overlaps(iv) {
			return s, true, nil
		}
	}
	return domain.Stay{}, false, nil
}
