package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MP-make/pechos-inmobiliaria/internal/queue"
	"github.com/MP-make/pechos-inmobiliaria/internal/repository"
)

// memLeadStore emulates the lead table including the document_id unique
// index semantics of UpsertByDocument.
type memLeadStore struct {
	leads  map[uint64]*repository.Lead
	nextID uint64
	err    error
}

func newMemLeadStore() *memLeadStore {
	return &memLeadStore{leads: map[uint64]*repository.Lead{}, nextID: 1}
}

func (m *memLeadStore) Create(ctx context.Context, l *repository.Lead) error {
	if m.err != nil {
		return m.err
	}
	l.ID = m.nextID
	m.nextID++
	cp := *l
	m.leads[cp.ID] = &cp
	return nil
}

func (m *memLeadStore) UpsertByDocument(ctx context.Context, l *repository.Lead, hasEmail bool) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	for _, existing := range m.leads {
		if existing.DocumentID != nil && l.DocumentID != nil && *existing.DocumentID == *l.DocumentID {
			existing.Name = l.Name
			existing.Phone = l.Phone
			existing.Message = l.Message
			existing.PropertyID = l.PropertyID
			existing.Status = l.Status
			if hasEmail {
				existing.Email = l.Email
			}
			*l = *existing
			return false, nil
		}
	}
	l.ID = m.nextID
	m.nextID++
	cp := *l
	m.leads[cp.ID] = &cp
	return true, nil
}

func (m *memLeadStore) GetByID(ctx context.Context, id uint64) (*repository.Lead, error) {
	l, ok := m.leads[id]
	if !ok {
		return nil, repository.ErrLeadNotFound
	}
	cp := *l
	return &cp, nil
}

func (m *memLeadStore) SetStatus(ctx context.Context, id uint64, status string) error {
	l, ok := m.leads[id]
	if !ok {
		return repository.ErrLeadNotFound
	}
	l.Status = status
	return nil
}

type memPropertyFinder struct {
	props map[uint64]*repository.Property
}

func (m *memPropertyFinder) GetByID(ctx context.Context, id uint64) (*repository.Property, error) {
	p, ok := m.props[id]
	if !ok {
		return nil, repository.ErrPropertyNotFound
	}
	return p, nil
}

type recordingNotifier struct {
	events []queue.LeadReceivedEvent
	err    error
}

func (r *recordingNotifier) PublishLeadReceived(ctx context.Context, ev queue.LeadReceivedEvent) error {
	r.events = append(r.events, ev)
	return r.err
}

func newIntake() (*LeadIntake, *memLeadStore, *recordingNotifier) {
	store := newMemLeadStore()
	finder := &memPropertyFinder{props: map[uint64]*repository.Property{
		5: {ID: 5, Title: "Casa Azul", Slug: "casa-azul"},
	}}
	notifier := &recordingNotifier{}
	return NewLeadIntake(store, finder, notifier), store, notifier
}

func validSubmission() SecuritySubmission {
	return SecuritySubmission{
		PropertyID: 5,
		Name:       "Juan Perez",
		DocumentID: "12345678",
		Phone:      "987654321",
	}
}

func TestSubmitSecurityLeadCreates(t *testing.T) {
	intake, store, notifier := newIntake()

	res, err := intake.SubmitSecurityLead(context.Background(), validSubmission())
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, repository.LeadPending, res.Lead.Status)
	require.NotNil(t, res.Lead.DocumentID)
	assert.Equal(t, "12345678", *res.Lead.DocumentID)
	assert.Len(t, store.leads, 1)
	require.Len(t, notifier.events, 1)
	assert.Equal(t, "Casa Azul", notifier.events[0].PropertyTitle)
	assert.False(t, notifier.events[0].Resubmission)
}

func TestSubmitSecurityLeadDedupByDocument(t *testing.T) {
	intake, store, notifier := newIntake()

	first := validSubmission()
	_, err := intake.SubmitSecurityLead(context.Background(), first)
	require.NoError(t, err)

	second := validSubmission()
	second.Phone = "999888777"
	res, err := intake.SubmitSecurityLead(context.Background(), second)
	require.NoError(t, err)

	assert.False(t, res.Created)
	assert.Len(t, store.leads, 1, "same document must not create a second row")
	assert.Equal(t, "999888777", res.Lead.Phone, "phone reflects the second submission")
	require.Len(t, notifier.events, 2)
	assert.True(t, notifier.events[1].Resubmission)
}

func TestSubmitSecurityLeadPlaceholderEmail(t *testing.T) {
	intake, _, notifier := newIntake()

	res, err := intake.SubmitSecurityLead(context.Background(), validSubmission())
	require.NoError(t, err)
	assert.Equal(t, PlaceholderEmail("12345678"), res.Lead.Email)
	assert.NotEmpty(t, res.Lead.Email)
	// Deterministic: a second submission without email yields the same value.
	res2, err := intake.SubmitSecurityLead(context.Background(), validSubmission())
	require.NoError(t, err)
	assert.Equal(t, res.Lead.Email, res2.Lead.Email)
	// The placeholder never appears in the notification.
	assert.Empty(t, notifier.events[0].LeadEmail)
}

func TestSubmitSecurityLeadKeepsStoredEmail(t *testing.T) {
	intake, _, _ := newIntake()

	withEmail := validSubmission()
	withEmail.Email = "juan@example.com"
	_, err := intake.SubmitSecurityLead(context.Background(), withEmail)
	require.NoError(t, err)

	// Resubmission without email keeps the real address.
	res, err := intake.SubmitSecurityLead(context.Background(), validSubmission())
	require.NoError(t, err)
	assert.Equal(t, "juan@example.com", res.Lead.Email)
}

func TestSubmitSecurityLeadReopensBlocked(t *testing.T) {
	intake, store, _ := newIntake()

	res, err := intake.SubmitSecurityLead(context.Background(), validSubmission())
	require.NoError(t, err)
	require.NoError(t, store.SetStatus(context.Background(), res.Lead.ID, repository.LeadBlocked))

	res2, err := intake.SubmitSecurityLead(context.Background(), validSubmission())
	require.NoError(t, err)
	assert.Equal(t, repository.LeadPending, res2.Lead.Status)
}

func TestSubmitSecurityLeadValidation(t *testing.T) {
	intake, store, _ := newIntake()

	cases := []struct {
		name   string
		mutate func(*SecuritySubmission)
	}{
		{"short name", func(s *SecuritySubmission) { s.Name = "Jo" }},
		{"document 7 digits", func(s *SecuritySubmission) { s.DocumentID = "1234567" }},
		{"document 13 digits", func(s *SecuritySubmission) { s.DocumentID = "1234567890123" }},
		{"document with letters", func(s *SecuritySubmission) { s.DocumentID = "1234567a" }},
		{"phone 8 digits", func(s *SecuritySubmission) { s.Phone = "12345678" }},
		{"phone with letters", func(s *SecuritySubmission) { s.Phone = "98765432x" }},
		{"malformed email", func(s *SecuritySubmission) { s.Email = "not-an-email" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sub := validSubmission()
			tc.mutate(&sub)
			_, err := intake.SubmitSecurityLead(context.Background(), sub)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr, "expected a validation error")
			assert.NotEmpty(t, verr.Message)
		})
	}
	assert.Empty(t, store.leads, "invalid submissions must not persist")
}

func TestSubmitSecurityLeadBoundaryDocuments(t *testing.T) {
	intake, _, _ := newIntake()

	for _, doc := range []string{"12345678", "123456789012"} {
		sub := validSubmission()
		sub.DocumentID = doc
		_, err := intake.SubmitSecurityLead(context.Background(), sub)
		assert.NoError(t, err, "document %q should be accepted", doc)
	}
}

func TestSubmitSecurityLeadUnknownProperty(t *testing.T) {
	intake, _, _ := newIntake()

	sub := validSubmission()
	sub.PropertyID = 404
	_, err := intake.SubmitSecurityLead(context.Background(), sub)
	assert.ErrorIs(t, err, repository.ErrPropertyNotFound)
}

func TestSubmitSecurityLeadNotifyFailureIsNotFatal(t *testing.T) {
	intake, store, notifier := newIntake()
	notifier.err = errors.New("broker down")

	res, err := intake.SubmitSecurityLead(context.Background(), validSubmission())
	require.NoError(t, err, "notification failure must not fail the submission")
	assert.True(t, res.Created)
	assert.Len(t, store.leads, 1)
}

func TestToggleBlock(t *testing.T) {
	intake, _, _ := newIntake()

	res, err := intake.SubmitSecurityLead(context.Background(), validSubmission())
	require.NoError(t, err)

	blocked, err := intake.ToggleBlock(context.Background(), res.Lead.ID)
	require.NoError(t, err)
	assert.Equal(t, repository.LeadBlocked, blocked.Status)

	pending, err := intake.ToggleBlock(context.Background(), res.Lead.ID)
	require.NoError(t, err)
	assert.Equal(t, repository.LeadPending, pending.Status)
}

func TestToggleBlockUnknownLead(t *testing.T) {
	intake, _, _ := newIntake()
	_, err := intake.ToggleBlock(context.Background(), 99)
	assert.ErrorIs(t, err, repository.ErrLeadNotFound)
}

func TestSubmitContact(t *testing.T) {
	intake, store, notifier := newIntake()

	lead, err := intake.SubmitContact(context.Background(), ContactSubmission{
		Name:    "Maria",
		Email:   "maria@example.com",
		Message: "Consulta general",
	})
	require.NoError(t, err)
	assert.Equal(t, repository.LeadNew, lead.Status)
	assert.Nil(t, lead.DocumentID)
	assert.Len(t, store.leads, 1)
	assert.Empty(t, notifier.events, "generic contacts do not enter the notification pipeline")

	// A second identical submission creates its own row: no dedup here.
	_, err = intake.SubmitContact(context.Background(), ContactSubmission{
		Name:  "Maria",
		Email: "maria@example.com",
	})
	require.NoError(t, err)
	assert.Len(t, store.leads, 2)
}

func TestSubmitContactValidation(t *testing.T) {
	intake, _, _ := newIntake()

	_, err := intake.SubmitContact(context.Background(), ContactSubmission{Email: "a@b.c"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = intake.SubmitContact(context.Background(), ContactSubmission{Name: "Maria", Email: "bad"})
	require.ErrorAs(t, err, &verr)
}

func TestSubmitSecurityLeadStoreErrorPropagates(t *testing.T) {
	intake, store, _ := newIntake()
	store.err = errors.New("db unreachable")

	_, err := intake.SubmitSecurityLead(context.Background(), validSubmission())
	require.Error(t, err)
	var verr *ValidationError
	assert.False(t, errors.As(err, &verr), "a store failure is not a validation error")
}
