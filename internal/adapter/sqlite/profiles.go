package sqlite

import (
	"context"
	"fmt"

	"github.com/neomorfeo/innledger/internal/domain"
)

// --- profiles ---

const profileColumns = `id, tenant_id, full_name, username, role, created_at`

func (s *Store) CreateProfile(ctx context.Context, p domain.Profile) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO profiles (`+profileColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.TenantID, p.FullName, p.Username, string(p.Role), formatTime(p.CreatedAt),
	)
	if isUniqueViolation(err) {
		return &domain.ConflictError{Kind: domain.KindProfile, Key: p.Username}
	}
	if err != nil {
		return fmt.Errorf("inserting profile: %w", err)
	}
	return nil
}

func (s *Store) GetProfile(ctx context.Context, tenantID, id string) (domain.Profile, error) {
	return queryOne(ctx, s.db, domain.KindProfile, id, scanProfile,
		`SELECT `+profileColumns+` FROM profiles WHERE tenant_id = ? AND id = ?`, tenantID, id)
}

func (s *Store) ListProfiles(ctx context.Context, tenantID string) ([]domain.Profile, error) {
	profiles, err := queryAll(ctx, s.db, scanProfile,
		`SELECT `+profileColumns+` FROM profiles WHERE tenant_id = ? ORDER BY created_at, id`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("listing profiles: %w", err)
	}
	return profiles, nil
}

func (s *Store) UpdateProfile(ctx context.Context, p domain.Profile) error {
	err := execOne(ctx, s.db, domain.KindProfile, p.ID,
		`UPDATE profiles SET full_name = ?, username = ?, role = ? WHERE tenant_id = ? AND id = ?`,
		p.FullName, p.Username, string(p.Role), p.TenantID, p.ID)
	if isUniqueViolation(err) {
		return &domain.ConflictError{Kind: domain.KindProfile, Key: p.Username}
	}
	return err
}

func (s *Store) DeleteProfile(ctx context.Context, tenantID, id string) error {
	return execOne(ctx, s.db, domain.KindProfile, id,
		`DELETE FROM profiles WHERE tenant_id = ? AND id = ?`, tenantID, id)
}

func scanProfile(row scanner) (domain.Profile, error) {
	var p domain.Profile
	var role, createdAt string
	if err := row.Scan(&p.ID, &p.TenantID, &p.FullName, &p.Username, &role, &createdAt); err != nil {
		return domain.Profile{}, err
	}
	var d decoder
	p.Role = domain.Role(role)
	p.CreatedAt = d.time(createdAt)
	return p, d.err
}

// --- custom channels ---

func (s *Store) CreateChannel(ctx context.Context, c domain.CustomChannel) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO custom_channels (id, tenant_id, name, created_at) VALUES (?, ?, ?, ?)`,
		c.ID, c.TenantID, c.Name, formatTime(c.CreatedAt),
	)
	if isUniqueViolation(err) {
		return &domain.ConflictError{Kind: domain.KindCustomChannel, Key: c.Name}
	}
	if err != nil {
		return fmt.Errorf("inserting channel: %w", err)
	}
	return nil
}

func (s *Store) GetChannel(ctx context.Context, tenantID, id string) (domain.CustomChannel, error) {
	return queryOne(ctx, s.db, domain.KindCustomChannel, id, scanChannel,
		`SELECT id, tenant_id, name, created_at FROM custom_channels WHERE tenant_id = ? AND id = ?`,
		tenantID, id)
}

func (s *Store) ListChannels(ctx context.Context, tenantID string) ([]domain.CustomChannel, error) {
	channels, err := queryAll(ctx, s.db, scanChannel,
		`SELECT id, tenant_id, name, created_at FROM custom_channels WHERE tenant_id = ? ORDER BY name`,
		tenantID)
	if err != nil {
		return nil, fmt.Errorf("listing channels: %w", err)
	}
	return channels, nil
}

func (s *Store) DeleteChannel(ctx context.Context, tenantID, id string) error {
	return execOne(ctx, s.db, domain.KindCustomChannel, id,
		`DELETE FROM custom_channels WHERE tenant_id = ? AND id = ?`, tenantID, id)
}

func scanChannel(row scanner) (domain.CustomChannel, error) {
	var c domain.CustomChannel
	var createdAt string
	if err := row.Scan(&c.ID, &c.TenantID, &c.Name, &createdAt); err != nil {
		return domain.CustomChannel{}, err
	}
	var d decoder
	c.CreatedAt = d.time(createdAt)
	return c, d.err
}
