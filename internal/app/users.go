package app

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/neomorfeo/innledger/internal/domain"
)

// CreateUserCommand holds a new hotel user. Credentials are issued by the
// identity provider, not here.
type CreateUserCommand struct {
	FullName string
	Username string
	Role     domain.Role
}

// UserView is a profile with its derived owner flag.
type UserView struct {
	domain.Profile
	IsOwner bool `json:"is_owner"`
}

// UserService is admin-only user management with the protected-owner rule.
type UserService struct {
	store domain.Store
	guard *AccessGuard
	clock domain.Clock
}

// NewUserService wires a UserService.
func NewUserService(store domain.Store, guard *AccessGuard, clock domain.Clock) *UserService {
	return &UserService{store: store, guard: guard, clock: clock}
}

// ListUsers returns the hotel's users, oldest first.
func (s *UserService) ListUsers(ctx context.Context, caller domain.Caller) ([]UserView, error) {
	if err := s.guard.RequireAdmin(caller, "listing users"); err != nil {
		return nil, err
	}
	profiles, err := s.store.ListProfiles(ctx, caller.TenantID)
	if err != nil {
		return nil, fmt.Errorf("listing profiles: %w", err)
	}
	owner := domain.OwnerID(profiles)
	sort.SliceStable(profiles, func(i, j int) bool { return profiles[i].CreatedAt.Before(profiles[j].CreatedAt) })

	users := make([]UserView, len(profiles))
	for i, p := range profiles {
		users[i] = UserView{Profile: p, IsOwner: p.ID == owner}
	}
	return users, nil
}

// CreateUser adds a profile to the caller's hotel.
func (s *UserService) CreateUser(ctx context.Context, caller domain.Caller, cmd CreateUserCommand) (domain.Profile, error) {
	if err := s.guard.RequireAdmin(caller, "creating users"); err != nil {
		return domain.Profile{}, err
	}
	p := domain.Profile{
		ID:        generateID(),
		TenantID:  caller.TenantID,
		FullName:  strings.TrimSpace(cmd.FullName),
		Username:  strings.ToLower(strings.TrimSpace(cmd.Username)),
		Role:      cmd.Role,
		CreatedAt: s.clock.Now(),
	}
	if p.Role == "" {
		p.Role = domain.RoleManager
	}
	if err := validateProfile(p); err != nil {
		return domain.Profile{}, err
	}
	if err := s.store.CreateProfile(ctx, p); err != nil {
		return domain.Profile{}, err
	}
	return p, nil
}

// ChangeRole sets the role of a user. The owner's role never changes.
func (s *UserService) ChangeRole(ctx context.Context, caller domain.Caller, userID string, role domain.Role) (domain.Profile, error) {
	if err := s.guard.RequireAdmin(caller, "changing roles"); err != nil {
		return domain.Profile{}, err
	}
	if !role.Valid() {
		return domain.Profile{}, &domain.ValidationError{Kind: domain.ErrInvalidInput, Message: fmt.Sprintf("unknown role %q", role)}
	}
	p, err := s.store.GetProfile(ctx, caller.TenantID, userID)
	if err != nil {
		return domain.Profile{}, err
	}
	if err := s.guard.ProtectOwner(ctx, caller.TenantID, userID, "change the role of"); err != nil {
		return domain.Profile{}, err
	}
	p.Role = role
	if err := s.store.UpdateProfile(ctx, p); err != nil {
		return domain.Profile{}, fmt.Errorf("updating profile %s: %w", userID, err)
	}
	return p, nil
}

// DeleteUser removes a user. Nobody deletes themselves or the owner.
func (s *UserService) DeleteUser(ctx context.Context, caller domain.Caller, userID string) error {
	if err := s.guard.RequireAdmin(caller, "deleting users"); err != nil {
		return err
	}
	if userID == caller.UserID {
		return &domain.ForbiddenError{Reason: "cannot delete your own account"}
	}
	if _, err := s.store.GetProfile(ctx, caller.TenantID, userID); err != nil {
		return err
	}
	if err := s.guard.ProtectOwner(ctx, caller.TenantID, userID, "delete"); err != nil {
		return err
	}
	if err := s.store.DeleteProfile(ctx, caller.TenantID, userID); err != nil {
		return fmt.Errorf("deleting profile %s: %w", userID, err)
	}
	return nil
}

func validateProfile(p domain.Profile) error {
	if p.Username == "" || p.FullName == "" {
		return &domain.ValidationError{Kind: domain.ErrInvalidInput, Message: "full name and username are required"}
	}
	if !p.Role.Valid() {
		return &domain.ValidationError{Kind: domain.ErrInvalidInput, Message: fmt.Sprintf("unknown role %q", p.Role)}
	}
	return nil
}
