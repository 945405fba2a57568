// Package service holds the business rules that sit between the HTTP
// handlers and the repositories. The lead intake service implements the
// security-wall funnel: field validation, deduplication by national
// identity document, the PENDING/BLOCKED status gate and the best-effort
// notification hand-off.
package service

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/MP-make/pechos-inmobiliaria/internal/queue"
	"github.com/MP-make/pechos-inmobiliaria/internal/repository"
)

// Field rules for the security-wall form. The document number is the
// Peruvian DNI (8 digits) or a carné de extranjería (up to 12).
var (
	documentPattern = regexp.MustCompile(`^[0-9]{8,12}$`)
	phonePattern    = regexp.MustCompile(`^[0-9]{9,}$`)
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// ValidationError carries the user-facing message for the first failing
// field rule. Handlers translate it into HTTP 400 with the message intact;
// every other error becomes a generic failure.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(msg string) error { return &ValidationError{Message: msg} }

// LeadStore is the persistence surface the intake service needs. It is
// implemented by repository.LeadRepo and mocked in tests.
type LeadStore interface {
	Create(ctx context.Context, l *repository.Lead) error
	UpsertByDocument(ctx context.Context, l *repository.Lead, hasEmail bool) (bool, error)
	GetByID(ctx context.Context, id uint64) (*repository.Lead, error)
	SetStatus(ctx context.Context, id uint64, status string) error
}

// PropertyFinder resolves the property a lead is interested in.
type PropertyFinder interface {
	GetByID(ctx context.Context, id uint64) (*repository.Property, error)
}

// Notifier delivers the lead event to the notification pipeline. The
// production implementation publishes to the message broker; the consumer
// turns events into admin emails.
type Notifier interface {
	PublishLeadReceived(ctx context.Context, ev queue.LeadReceivedEvent) error
}

// LeadIntake bundles the collaborators of both lead channels.
type LeadIntake struct {
	Leads      LeadStore
	Properties PropertyFinder
	Notify     Notifier
}

func NewLeadIntake(leads LeadStore, properties PropertyFinder, notify Notifier) *LeadIntake {
	return &LeadIntake{Leads: leads, Properties: properties, Notify: notify}
}

// SecuritySubmission is the input of the security-wall form on a property
// page. Email and Message are optional.
type SecuritySubmission struct {
	PropertyID uint64
	Name       string
	DocumentID string
	Phone      string
	Email      string
	Message    string
}

// ContactSubmission is the input of the generic contact form. It has no
// document number and no dedup invariant.
type ContactSubmission struct {
	PropertyID *uint64
	Name       string
	Email      string
	Phone      string
	Message    string
}

// SubmitResult reports what the security-wall intake did with a submission.
type SubmitResult struct {
	Lead    *repository.Lead
	Created bool // false when an existing lead for the same document was updated
}

// PlaceholderEmail derives a deterministic non-colliding address from the
// document number, used when a submission omits the email so the column's
// non-null constraint holds. Same document, same placeholder.
func PlaceholderEmail(documentID string) string {
	return fmt.Sprintf("dni-%s@sin-correo.local", documentID)
}

// SubmitSecurityLead validates a security-wall submission and persists it
// as exactly one lead per document number. A known document updates the
// existing row (re-opening it as PENDING, even when it was BLOCKED); an
// unknown one inserts a fresh PENDING lead. The admin notification is
// published after the write and its failure is logged, never surfaced: the
// lead row is the source of truth.
func (s *LeadIntake) SubmitSecurityLead(ctx context.Context, sub SecuritySubmission) (SubmitResult, error) {
	sub.Name = strings.TrimSpace(sub.Name)
	sub.DocumentID = strings.TrimSpace(sub.DocumentID)
	sub.Phone = strings.TrimSpace(sub.Phone)
	sub.Email = strings.TrimSpace(sub.Email)
	sub.Message = strings.TrimSpace(sub.Message)

	if err := validateSecurity(sub); err != nil {
		return SubmitResult{}, err
	}

	prop, err := s.Properties.GetByID(ctx, sub.PropertyID)
	if err != nil {
		return SubmitResult{}, err
	}

	hasEmail := sub.Email != ""
	email := sub.Email
	if !hasEmail {
		email = PlaceholderEmail(sub.DocumentID)
	}
	doc := sub.DocumentID
	propID := prop.ID
	lead := &repository.Lead{
		Name:       sub.Name,
		DocumentID: &doc,
		Phone:      sub.Phone,
		Email:      email,
		Message:    sub.Message,
		Status:     repository.LeadPending,
		PropertyID: &propID,
	}
	created, err := s.Leads.UpsertByDocument(ctx, lead, hasEmail)
	if err != nil {
		return SubmitResult{}, err
	}

	if s.Notify != nil {
		// The placeholder is an internal artifact; the admin email shows a
		// blank address instead.
		evEmail := lead.Email
		if evEmail == PlaceholderEmail(doc) {
			evEmail = ""
		}
		ev := queue.LeadReceivedEvent{
			LeadID:        lead.ID,
			LeadName:      lead.Name,
			LeadDocument:  doc,
			LeadPhone:     lead.Phone,
			LeadEmail:     evEmail,
			PropertyID:    prop.ID,
			PropertyTitle: prop.Title,
			PropertySlug:  prop.Slug,
			Message:       lead.Message,
			Resubmission:  !created,
			ReceivedAt:    time.Now().UTC().Format(time.RFC3339),
		}
		if err := s.Notify.PublishLeadReceived(ctx, ev); err != nil {
			log.Printf("lead-intake: notification publish failed for lead %d: %v", lead.ID, err)
		}
	}
	return SubmitResult{Lead: lead, Created: created}, nil
}

// SubmitContact persists a generic contact-form lead with status NEW. One
// row per submission; no dedup, no notification pipeline.
func (s *LeadIntake) SubmitContact(ctx context.Context, sub ContactSubmission) (*repository.Lead, error) {
	sub.Name = strings.TrimSpace(sub.Name)
	sub.Email = strings.TrimSpace(sub.Email)
	sub.Phone = strings.TrimSpace(sub.Phone)
	sub.Message = strings.TrimSpace(sub.Message)

	if sub.Name == "" {
		return nil, invalid("name is required")
	}
	if sub.Email == "" {
		return nil, invalid("email is required")
	}
	if !emailPattern.MatchString(sub.Email) {
		return nil, invalid("email is not a valid address")
	}
	if sub.PropertyID != nil {
		if _, err := s.Properties.GetByID(ctx, *sub.PropertyID); err != nil {
			return nil, err
		}
	}

	lead := &repository.Lead{
		Name:       sub.Name,
		Phone:      sub.Phone,
		Email:      sub.Email,
		Message:    sub.Message,
		Status:     repository.LeadNew,
		PropertyID: sub.PropertyID,
	}
	if err := s.Leads.Create(ctx, lead); err != nil {
		return nil, err
	}
	return lead, nil
}

// ToggleBlock flips a lead between BLOCKED and PENDING. Blocking an
// already-blocked lead returns it to PENDING; the write itself is always
// performed so repeated toggles stay predictable.
func (s *LeadIntake) ToggleBlock(ctx context.Context, id uint64) (*repository.Lead, error) {
	lead, err := s.Leads.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	next := repository.LeadBlocked
	if lead.Status == repository.LeadBlocked {
		next = repository.LeadPending
	}
	if err := s.Leads.SetStatus(ctx, id, next); err != nil {
		return nil, err
	}
	lead.Status = next
	return lead, nil
}

// validateSecurity applies the field rules in form order and reports the
// first failure.
func validateSecurity(sub SecuritySubmission) error {
	if len([]rune(sub.Name)) < 3 {
		return invalid("name must be at least 3 characters")
	}
	if !documentPattern.MatchString(sub.DocumentID) {
		return invalid("document number must be 8 to 12 digits")
	}
	if !phonePattern.MatchString(sub.Phone) {
		return invalid("phone must be at least 9 digits")
	}
	if sub.Email != "" && !emailPattern.MatchString(sub.Email) {
		return invalid("email is not a valid address")
	}
	return nil
}
