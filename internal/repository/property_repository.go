// Package repository contains data access logic separated from HTTP handlers.
// This file defines the Property model and repository methods for CRUD and
// lookup operations. A Property represents a rental listing with an ordered
// image collection (one marked as cover) and a set of amenity labels.
package repository

import (
	"context"      // context allows passing deadlines and cancellation signals to DB operations
	"database/sql" // sql provides generic database operations and drivers
	"errors"       // errors is used for sentinel comparisons
	"time"         // time maps DATETIME columns
)

// Property status values.
const (
	PropertyAvailable   = "AVAILABLE"
	PropertyRented      = "RENTED"
	PropertyMaintenance = "MAINTENANCE"
)

// Rental type values.
const (
	RentalDaily   = "DAILY"
	RentalMonthly = "MONTHLY"
	RentalBoth    = "BOTH"
)

// Property mirrors the 'properties' table. ImageURL denormalizes the cover
// image's URL so catalog listings do not need a join.
type Property struct {
	ID             uint64
	Title          string
	Slug           string
	Price          float64
	PricePerMonth  *float64
	Description    string
	Status         string
	RentalType     string
	MaxGuests      uint32
	Bedrooms       uint32
	Bathrooms      uint32
	Address        string
	MapURL         string
	WhatsappNumber string
	ImageURL       string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// PropertyImage mirrors the 'property_images' table. Position defines the
// display order; exactly one image per property should carry IsCover.
type PropertyImage struct {
	ID         uint64
	PropertyID uint64
	URL        string
	IsCover    bool
	Position   uint32
	CreatedAt  time.Time
}

// PropertyRepo encapsulates all database queries related to properties,
// their images and their amenity labels.
type PropertyRepo struct {
	db *sql.DB
}

// NewPropertyRepo constructs a PropertyRepo with the provided DB handle.
func NewPropertyRepo(db *sql.DB) *PropertyRepo {
	return &PropertyRepo{db: db}
}

const propertyCols = `id, title, slug, price, price_per_month, description, status, rental_type,
	max_guests, bedrooms, bathrooms, address, map_url, whatsapp_number, image_url, created_at, updated_at`

func scanProperty(row interface{ Scan(...any) error }) (*Property, error) {
	var p Property
	err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Price, &p.PricePerMonth, &p.Description,
		&p.Status, &p.RentalType, &p.MaxGuests, &p.Bedrooms, &p.Bathrooms,
		&p.Address, &p.MapURL, &p.WhatsappNumber, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SlugExists reports whether any property other than excludeID already owns
// the given slug. excludeID zero means no exclusion (creation flow). This
// is the resolver's read check; the unique index on the slug column backs
// it up against concurrent writers.
func (r *PropertyRepo) SlugExists(ctx context.Context, slug string, excludeID uint64) (bool, error) {
	const q = "SELECT 1 FROM properties WHERE slug = ? AND id <> ? LIMIT 1"
	var one int
	err := r.db.QueryRowContext(ctx, q, slug, excludeID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Create inserts a new property. On success the ID, CreatedAt and UpdatedAt
// fields are populated. A duplicate slug (race with a concurrent creation)
// is reported as ErrSlugTaken so the caller can re-resolve and retry.
func (r *PropertyRepo) Create(ctx context.Context, p *Property) error {
	const qInsert = `INSERT INTO properties
		(title, slug, price, price_per_month, description, status, rental_type,
		 max_guests, bedrooms, bathrooms, address, map_url, whatsapp_number, image_url)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`
	res, err := r.db.ExecContext(ctx, qInsert,
		p.Title, p.Slug, p.Price, p.PricePerMonth, p.Description, p.Status, p.RentalType,
		p.MaxGuests, p.Bedrooms, p.Bathrooms, p.Address, p.MapURL, p.WhatsappNumber, p.ImageURL)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrSlugTaken
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)

	// Follow-up SELECT to populate default timestamp fields.
	const qSelect = "SELECT created_at, updated_at FROM properties WHERE id = ?"
	return r.db.QueryRowContext(ctx, qSelect, p.ID).Scan(&p.CreatedAt, &p.UpdatedAt)
}

// Update rewrites every mutable column of a property. ErrPropertyNotFound
// is returned when no row matches, ErrSlugTaken when the new slug collides.
func (r *PropertyRepo) Update(ctx context.Context, p *Property) error {
	const q = `UPDATE properties
		SET title = ?, slug = ?, price = ?, price_per_month = ?, description = ?,
		    status = ?, rental_type = ?, max_guests = ?, bedrooms = ?, bathrooms = ?,
		    address = ?, map_url = ?, whatsapp_number = ?, image_url = ?,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q,
		p.Title, p.Slug, p.Price, p.PricePerMonth, p.Description, p.Status, p.RentalType,
		p.MaxGuests, p.Bedrooms, p.Bathrooms, p.Address, p.MapURL, p.WhatsappNumber, p.ImageURL,
		p.ID)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrSlugTaken
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// RowsAffected is also zero for a no-op update, so confirm existence
		// before reporting not found.
		var one int
		if scanErr := r.db.QueryRowContext(ctx, "SELECT 1 FROM properties WHERE id = ?", p.ID).Scan(&one); scanErr != nil {
			if errors.Is(scanErr, sql.ErrNoRows) {
				return ErrPropertyNotFound
			}
			return scanErr
		}
	}
	return nil
}

// SetCoverURL updates only the denormalized cover image URL.
func (r *PropertyRepo) SetCoverURL(ctx context.Context, id uint64, url string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE properties SET image_url = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?", url, id)
	return err
}

// GetByID fetches a property by its ID. Returns ErrPropertyNotFound when
// no row is found.
func (r *PropertyRepo) GetByID(ctx context.Context, id uint64) (*Property, error) {
	p, err := scanProperty(r.db.QueryRowContext(ctx,
		"SELECT "+propertyCols+" FROM properties WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPropertyNotFound
	}
	return p, err
}

// GetBySlug fetches a property by slug for the public detail page.
func (r *PropertyRepo) GetBySlug(ctx context.Context, slug string) (*Property, error) {
	p, err := scanProperty(r.db.QueryRowContext(ctx,
		"SELECT "+propertyCols+" FROM properties WHERE slug = ?", slug))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPropertyNotFound
	}
	return p, err
}

// ListAll returns every property ordered newest first. Used by the admin
// panel, which sees all statuses.
func (r *PropertyRepo) ListAll(ctx context.Context) ([]*Property, error) {
	return r.list(ctx, "SELECT "+propertyCols+" FROM properties ORDER BY created_at DESC, id DESC")
}

// ListPublic returns every property for the public catalog, available ones
// first and newest first within each status group.
func (r *PropertyRepo) ListPublic(ctx context.Context) ([]*Property, error) {
	return r.list(ctx, "SELECT "+propertyCols+` FROM properties
		ORDER BY status = 'AVAILABLE' DESC, created_at DESC, id DESC`)
}

func (r *PropertyRepo) list(ctx context.Context, q string) ([]*Property, error) {
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a property together with its images and amenity labels.
// The deletion occurs within a transaction to maintain integrity. Returns
// ErrPropertyNotFound when the property does not exist.
func (r *PropertyRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			_ = tx.Commit()
		}
	}()

	var one int
	if err = tx.QueryRowContext(ctx, "SELECT 1 FROM properties WHERE id = ?", id).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrPropertyNotFound
		}
		return err
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM property_images WHERE property_id = ?", id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM amenities WHERE property_id = ?", id); err != nil {
		return err
	}
	// Leads keep their rows; the back-reference is detached so the contact
	// history survives the listing.
	if _, err = tx.ExecContext(ctx, "UPDATE leads SET property_id = NULL WHERE property_id = ?", id); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, "DELETE FROM properties WHERE id = ?", id)
	return err
}

// ReplaceImages deletes a property's image rows and inserts the given set
// in order, all within one transaction. Position follows slice order and
// the IsCover flags are stored as provided.
func (r *PropertyRepo) ReplaceImages(ctx context.Context, propertyID uint64, imgs []PropertyImage) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			_ = tx.Commit()
		}
	}()

	if _, err = tx.ExecContext(ctx, "DELETE FROM property_images WHERE property_id = ?", propertyID); err != nil {
		return err
	}
	const q = "INSERT INTO property_images (property_id, url, is_cover, position) VALUES (?,?,?,?)"
	for i := range imgs {
		if _, err = tx.ExecContext(ctx, q, propertyID, imgs[i].URL, imgs[i].IsCover, uint32(i)); err != nil {
			return err
		}
	}
	return nil
}

// ImagesByProperty returns a property's images ordered by position.
func (r *PropertyRepo) ImagesByProperty(ctx context.Context, propertyID uint64) ([]*PropertyImage, error) {
	const q = `SELECT id, property_id, url, is_cover, position, created_at
		FROM property_images WHERE property_id = ? ORDER BY position, id`
	rows, err := r.db.QueryContext(ctx, q, propertyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*PropertyImage
	for rows.Next() {
		img := new(PropertyImage)
		if err := rows.Scan(&img.ID, &img.PropertyID, &img.URL, &img.IsCover, &img.Position, &img.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, img)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ReplaceAmenities rewrites a property's amenity labels within one
// transaction, preserving the given order.
func (r *PropertyRepo) ReplaceAmenities(ctx context.Context, propertyID uint64, labels []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			_ = tx.Commit()
		}
	}()

	if _, err = tx.ExecContext(ctx, "DELETE FROM amenities WHERE property_id = ?", propertyID); err != nil {
		return err
	}
	const q = "INSERT INTO amenities (property_id, label, position) VALUES (?,?,?)"
	for i, label := range labels {
		if _, err = tx.ExecContext(ctx, q, propertyID, label, uint32(i)); err != nil {
			return err
		}
	}
	return nil
}

// AmenitiesByProperty returns a property's amenity labels in stored order.
func (r *PropertyRepo) AmenitiesByProperty(ctx context.Context, propertyID uint64) ([]string, error) {
	const q = "SELECT label FROM amenities WHERE property_id = ? ORDER BY position, id"
	rows, err := r.db.QueryContext(ctx, q, propertyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, err
		}
		out = append(out, label)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
