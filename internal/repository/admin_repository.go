package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/animelar/animelar-api/internal/models"
)

type AdminRepository struct {
	db *sql.DB
}

func NewAdminRepository(db *sql.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) FindByID(ctx context.Context, id string) (*models.Admin, error) {
	const query = `
SELECT id, dubbing_name, added_by, role, added_at
FROM admins WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)
	var a models.Admin
	if err := row.Scan(&a.ID, &a.DubbingName, &a.AddedBy, &a.Role, &a.AddedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan admin: %w", err)
	}
	return &a, nil
}

func (r *AdminRepository) Create(ctx context.Context, admin *models.Admin) error {
	const query = `
INSERT INTO admins (id, dubbing_name, added_by, role)
VALUES (?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, admin.ID, admin.DubbingName, admin.AddedBy, admin.Role); err != nil {
		return fmt.Errorf("insert admin: %w", err)
	}
	return nil
}

// EnsureBootstrap inserts the bootstrap super-admin roster row if absent.
func (r *AdminRepository) EnsureBootstrap(ctx context.Context, id string) error {
	const query = `
INSERT IGNORE INTO admins (id, dubbing_name, added_by, role)
VALUES (?, 'Super Admin', 'system', ?)`
	if _, err := r.db.ExecContext(ctx, query, id, models.RoleSuperAdmin); err != nil {
		return fmt.Errorf("ensure bootstrap admin: %w", err)
	}
	return nil
}

func (r *AdminRepository) List(ctx context.Context) ([]models.Admin, error) {
	const query = `
SELECT id, dubbing_name, added_by, role, added_at
FROM admins ORDER BY added_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	defer rows.Close()

	var admins []models.Admin
	for rows.Next() {
		var a models.Admin
		if err := rows.Scan(&a.ID, &a.DubbingName, &a.AddedBy, &a.Role, &a.AddedAt); err != nil {
			return nil, fmt.Errorf("scan admin list: %w", err)
		}
		admins = append(admins, a)
	}
	return admins, rows.Err()
}
