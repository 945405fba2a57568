package repository

import (
	"context"
	"database/sql"
	"time"
)

// HeroImage mirrors the 'hero_images' table backing the landing carousel.
// DisplayOrder defines the carousel sequence; inactive images are kept but
// skipped by the public endpoint.
type HeroImage struct {
	ID           uint64
	URL          string
	Alt          string
	DisplayOrder uint32
	IsActive     bool
	CreatedAt    time.Time
}

type HeroImageRepo struct {
	db *sql.DB
}

func NewHeroImageRepo(db *sql.DB) *HeroImageRepo {
	return &HeroImageRepo{db: db}
}

// Create inserts a carousel image and populates ID and CreatedAt.
func (r *HeroImageRepo) Create(ctx context.Context, img *HeroImage) error {
	const q = "INSERT INTO hero_images (url, alt, display_order, is_active) VALUES (?,?,?,?)"
	res, err := r.db.ExecContext(ctx, q, img.URL, img.Alt, img.DisplayOrder, img.IsActive)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	img.ID = uint64(id)
	return r.db.QueryRowContext(ctx, "SELECT created_at FROM hero_images WHERE id = ?", img.ID).Scan(&img.CreatedAt)
}

// ListAll returns every carousel image in display order, for the admin panel.
func (r *HeroImageRepo) ListAll(ctx context.Context) ([]*HeroImage, error) {
	return r.list(ctx, "SELECT id, url, alt, display_order, is_active, created_at FROM hero_images ORDER BY display_order, id")
}

// ListActive returns only active images in display order, for the public
// landing page.
func (r *HeroImageRepo) ListActive(ctx context.Context) ([]*HeroImage, error) {
	return r.list(ctx, "SELECT id, url, alt, display_order, is_active, created_at FROM hero_images WHERE is_active = 1 ORDER BY display_order, id")
}

func (r *HeroImageRepo) list(ctx context.Context, q string) ([]*HeroImage, error) {
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*HeroImage
	for rows.Next() {
		img := new(HeroImage)
		if err := rows.Scan(&img.ID, &img.URL, &img.Alt, &img.DisplayOrder, &img.IsActive, &img.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, img)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a carousel image. Returns ErrHeroImageNotFound when
// nothing matched.
func (r *HeroImageRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM hero_images WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrHeroImageNotFound
	}
	return nil
}
