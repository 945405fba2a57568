package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/MP-make/pechos-inmobiliaria/internal/utils"
)

// AdminUser mirrors the 'admin_users' table.
type AdminUser struct {
	ID           uint64
	Email        string
	PasswordHash string
	Name         string
	IsActive     bool
	CreatedAt    time.Time
}

type AdminUserRepo struct{ DB *sql.DB }

func NewAdminUserRepo(db *sql.DB) *AdminUserRepo { return &AdminUserRepo{DB: db} }

// Create inserts an admin user and returns its ID. The password is hashed
// here so callers never handle the digest directly.
func (r *AdminUserRepo) Create(ctx context.Context, email, password, name string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO admin_users (email, password_hash, name) VALUES (?,?,?)",
		email, hash, name)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches an admin user by normalized email.
func (r *AdminUserRepo) GetByEmail(ctx context.Context, email string) (AdminUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u AdminUser
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,password_hash,name,is_active,created_at FROM admin_users WHERE email=? LIMIT 1",
		email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.IsActive, &u.CreatedAt)
	return u, err
}

// GetByID fetches an admin user by id.
func (r *AdminUserRepo) GetByID(ctx context.Context, id uint64) (AdminUser, error) {
	var u AdminUser
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,password_hash,name,is_active,created_at FROM admin_users WHERE id=? LIMIT 1",
		id).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.IsActive, &u.CreatedAt)
	return u, err
}

// List returns all admin users newest first. Password hashes are included
// in the struct but must never leave the handler layer.
func (r *AdminUserRepo) List(ctx context.Context) ([]AdminUser, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,email,password_hash,name,is_active,created_at FROM admin_users ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AdminUser
	for rows.Next() {
		var u AdminUser
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.IsActive, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
