// This file defines the Lead model and repository. Leads arrive through two
// channels: the security-wall form on a property page (deduplicated by the
// national identity document number) and the generic contact form (one row
// per submission). Dedup relies on the unique index on leads.document_id so
// the lookup-then-write window never produces a second row for the same ID.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Lead status values. PENDING is the entry state of the security-wall flow
// and the state a blocked lead returns to when unblocked. NEW is used by
// the generic contact path, which has no dedup invariant.
const (
	LeadPending = "PENDING"
	LeadBlocked = "BLOCKED"
	LeadNew     = "NEW"
)

// Lead mirrors the 'leads' table. DocumentID is nil for generic
// contact-form leads; when present it is unique across the table.
type Lead struct {
	ID         uint64
	Name       string
	DocumentID *string
	Phone      string
	Email      string
	Message    string
	Status     string
	PropertyID *uint64
	CreatedAt  time.Time
}

// LeadWithProperty joins a lead with its property's title and slug for the
// admin listing. The property fields are nil when the lead has no property
// back-reference (generic contacts, or the property was deleted).
type LeadWithProperty struct {
	Lead
	PropertyTitle *string
	PropertySlug  *string
}

// LeadStats feeds the admin dashboard counters.
type LeadStats struct {
	Total   int64
	Pending int64
	Blocked int64
}

type LeadRepo struct {
	db *sql.DB
}

func NewLeadRepo(db *sql.DB) *LeadRepo {
	return &LeadRepo{db: db}
}

// Create inserts a lead row as-is. Used by the generic contact path where
// every submission produces its own row.
func (r *LeadRepo) Create(ctx context.Context, l *Lead) error {
	const q = `INSERT INTO leads (name, document_id, phone, email, message, status, property_id)
		VALUES (?,?,?,?,?,?,?)`
	res, err := r.db.ExecContext(ctx, q,
		l.Name, l.DocumentID, l.Phone, l.Email, l.Message, l.Status, l.PropertyID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	l.ID = uint64(id)
	return r.db.QueryRowContext(ctx, "SELECT created_at FROM leads WHERE id = ?", l.ID).Scan(&l.CreatedAt)
}

// UpsertByDocument persists a security-wall submission as a single
// conditional upsert keyed on the document_id unique index. A new document
// inserts the row as given; a known document updates the existing row's
// name, phone, message and property reference and resets its status to
// PENDING. The stored email is kept when hasEmail is false, so a synthesized
// placeholder never overwrites a real address captured earlier.
//
// The LAST_INSERT_ID(id) clause makes LastInsertId return the surviving
// row's id on the update path too. The returned created flag is true when
// a new row was inserted (MySQL reports one affected row for an insert and
// two for a duplicate-key update).
func (r *LeadRepo) UpsertByDocument(ctx context.Context, l *Lead, hasEmail bool) (bool, error) {
	q := `INSERT INTO leads (name, document_id, phone, email, message, status, property_id)
		VALUES (?,?,?,?,?,?,?)
		ON DUPLICATE KEY UPDATE
			id = LAST_INSERT_ID(id),
			name = VALUES(name),
			phone = VALUES(phone),
			message = VALUES(message),
			property_id = VALUES(property_id),
			status = VALUES(status)`
	if hasEmail {
		q += ", email = VALUES(email)"
	}
	res, err := r.db.ExecContext(ctx, q,
		l.Name, l.DocumentID, l.Phone, l.Email, l.Message, l.Status, l.PropertyID)
	if err != nil {
		return false, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return false, err
	}
	l.ID = uint64(id)
	n, _ := res.RowsAffected()
	created := n == 1

	// Re-read so the caller sees the stored row (email kept from a previous
	// submission, original created_at).
	const qSelect = "SELECT email, status, created_at FROM leads WHERE id = ?"
	if err := r.db.QueryRowContext(ctx, qSelect, l.ID).Scan(&l.Email, &l.Status, &l.CreatedAt); err != nil {
		return created, err
	}
	return created, nil
}

// GetByID fetches a lead by id. Returns ErrLeadNotFound when absent.
func (r *LeadRepo) GetByID(ctx context.Context, id uint64) (*Lead, error) {
	const q = `SELECT id, name, document_id, phone, email, message, status, property_id, created_at
		FROM leads WHERE id = ?`
	var l Lead
	err := r.db.QueryRowContext(ctx, q, id).Scan(&l.ID, &l.Name, &l.DocumentID, &l.Phone,
		&l.Email, &l.Message, &l.Status, &l.PropertyID, &l.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrLeadNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// SetStatus rewrites a lead's status. The write is performed even when the
// lead already carries the target status, which keeps the block toggle
// idempotent in effect. Returns ErrLeadNotFound when the lead is absent.
func (r *LeadRepo) SetStatus(ctx context.Context, id uint64, status string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE leads SET status = ? WHERE id = ?", status, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var one int
		if scanErr := r.db.QueryRowContext(ctx, "SELECT 1 FROM leads WHERE id = ?", id).Scan(&one); scanErr != nil {
			if errors.Is(scanErr, sql.ErrNoRows) {
				return ErrLeadNotFound
			}
			return scanErr
		}
	}
	return nil
}

// Delete removes a lead row. Returns ErrLeadNotFound when nothing matched.
func (r *LeadRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM leads WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrLeadNotFound
	}
	return nil
}

// ListWithProperty returns all leads newest first, each joined with its
// property's title and slug when the back-reference is set.
func (r *LeadRepo) ListWithProperty(ctx context.Context) ([]*LeadWithProperty, error) {
	const q = `SELECT l.id, l.name, l.document_id, l.phone, l.email, l.message, l.status,
			l.property_id, l.created_at, p.title, p.slug
		FROM leads l
		LEFT JOIN properties p ON p.id = l.property_id
		ORDER BY l.created_at DESC, l.id DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*LeadWithProperty
	for rows.Next() {
		lw := new(LeadWithProperty)
		if err := rows.Scan(&lw.ID, &lw.Name, &lw.DocumentID, &lw.Phone, &lw.Email,
			&lw.Message, &lw.Status, &lw.PropertyID, &lw.CreatedAt,
			&lw.PropertyTitle, &lw.PropertySlug); err != nil {
			return nil, err
		}
		out = append(out, lw)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Stats counts all leads and the pending/blocked subsets in one query.
func (r *LeadRepo) Stats(ctx context.Context) (LeadStats, error) {
	const q = `SELECT COUNT(*),
			COALESCE(SUM(status = 'PENDING'), 0),
			COALESCE(SUM(status = 'BLOCKED'), 0)
		FROM leads`
	var s LeadStats
	err := r.db.QueryRowContext(ctx, q).Scan(&s.Total, &s.Pending, &s.Blocked)
	return s, err
}
