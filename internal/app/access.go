package app

import (
	"context"
	"fmt"

	"github.com/neomorfeo/innledger/internal/domain"
)

// AccessGuard enforces caller identity, role checks and the protected-owner rule.
type AccessGuard struct {
	profiles domain.ProfileRepository
}

// NewAccessGuard creates a guard that derives hotel owners from profiles.
func NewAccessGuard(profiles domain.ProfileRepository) *AccessGuard {
	return &AccessGuard{profiles: profiles}
}

// Authorize rejects callers without a tenant or with an unknown role.
func (g *AccessGuard) Authorize(c domain.Caller) error {
	if c.TenantID == "" {
		return &domain.ForbiddenError{Reason: "caller has no hotel"}
	}
	if !c.Role.Valid() {
		return &domain.ForbiddenError{Reason: fmt.Sprintf("unknown role %q", c.Role)}
	}
	return nil
}

// RequireAdmin authorizes the caller and requires the admin role for action.
func (g *AccessGuard) RequireAdmin(c domain.Caller, action string) error {
	if err := g.Authorize(c); err != nil {
		return err
	}
	if !c.IsAdmin() {
		return &domain.ForbiddenError{Reason: action + " requires admin role"}
	}
	return nil
}

// OwnerID returns the hotel owner: the profile created first. It scans every
// profile of the tenant.
func (g *AccessGuard) OwnerID(ctx context.Context, tenantID string) (string, error) {
	profiles, err := g.profiles.ListProfiles(ctx, tenantID)
	if err != nil {
		return "", fmt.Errorf("listing profiles: %w", err)
	}
	return domain.OwnerID(profiles), nil
}

// ProtectOwner fails when targetID is the hotel owner.
func (g *AccessGuard) ProtectOwner(ctx context.Context, tenantID, targetID, action string) error {
	owner, err := g.OwnerID(ctx, tenantID)
	if err != nil {
		return err
	}
	if owner != "" && owner == targetID {
		return &domain.ForbiddenError{Reason: "cannot " + action + " the hotel owner"}
	}
	return nil
}
