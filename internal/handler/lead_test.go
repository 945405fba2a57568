package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MP-make/pechos-inmobiliaria/internal/queue"
	"github.com/MP-make/pechos-inmobiliaria/internal/repository"
	"github.com/MP-make/pechos-inmobiliaria/internal/service"
)

type stubLeadStore struct {
	byDocument map[string]*repository.Lead
	nextID     uint64
}

func newStubLeadStore() *stubLeadStore {
	return &stubLeadStore{byDocument: map[string]*repository.Lead{}}
}

func (s *stubLeadStore) Create(ctx context.Context, l *repository.Lead) error {
	s.nextID++
	l.ID = s.nextID
	return nil
}

func (s *stubLeadStore) UpsertByDocument(ctx context.Context, l *repository.Lead, hasEmail bool) (bool, error) {
	if existing, ok := s.byDocument[*l.DocumentID]; ok {
		existing.Name = l.Name
		existing.Phone = l.Phone
		if hasEmail {
			existing.Email = l.Email
		}
		existing.Status = repository.LeadPending
		*l = *existing
		return false, nil
	}
	s.nextID++
	l.ID = s.nextID
	cp := *l
	s.byDocument[*l.DocumentID] = &cp
	return true, nil
}

func (s *stubLeadStore) GetByID(ctx context.Context, id uint64) (*repository.Lead, error) {
	for _, l := range s.byDocument {
		if l.ID == id {
			cp := *l
			return &cp, nil
		}
	}
	return nil, repository.ErrLeadNotFound
}

func (s *stubLeadStore) SetStatus(ctx context.Context, id uint64, status string) error {
	for _, l := range s.byDocument {
		if l.ID == id {
			l.Status = status
			return nil
		}
	}
	return repository.ErrLeadNotFound
}

type stubPropertyFinder struct{ known map[uint64]*repository.Property }

func (s *stubPropertyFinder) GetByID(ctx context.Context, id uint64) (*repository.Property, error) {
	if p, ok := s.known[id]; ok {
		return p, nil
	}
	return nil, repository.ErrPropertyNotFound
}

type noopNotifier struct{}

func (noopNotifier) PublishLeadReceived(ctx context.Context, ev queue.LeadReceivedEvent) error {
	return nil
}

func newLeadTestHandler() *LeadHandler {
	finder := &stubPropertyFinder{known: map[uint64]*repository.Property{
		7: {ID: 7, Title: "Casa Azul", Slug: "casa-azul"},
	}}
	intake := service.NewLeadIntake(newStubLeadStore(), finder, noopNotifier{})
	return NewLeadHandler(intake)
}

func postJSON(h echo.HandlerFunc, body string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestSubmitSecurityCreatesLead(t *testing.T) {
	h := newLeadTestHandler()

	rec := postJSON(h.SubmitSecurity, `{
		"propertyId": 7,
		"name": "María Quispe",
		"documentId": "12345678",
		"phone": "987654321"
	}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp leadResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotZero(t, resp.ID)
	assert.Equal(t, repository.LeadPending, resp.Status)
	assert.False(t, resp.Resubmission)
}

func TestSubmitSecurityResubmissionReturnsOK(t *testing.T) {
	h := newLeadTestHandler()

	first := postJSON(h.SubmitSecurity, `{"propertyId":7,"name":"María Quispe","documentId":"12345678","phone":"987654321"}`)
	require.Equal(t, http.StatusCreated, first.Code)

	second := postJSON(h.SubmitSecurity, `{"propertyId":7,"name":"María Quispe","documentId":"12345678","phone":"911111111"}`)
	require.Equal(t, http.StatusOK, second.Code)

	var resp leadResp
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &resp))
	assert.True(t, resp.Resubmission)

	var firstResp leadResp
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &firstResp))
	assert.Equal(t, firstResp.ID, resp.ID, "resubmission must not create a second lead")
}

func TestSubmitSecurityValidation(t *testing.T) {
	h := newLeadTestHandler()

	cases := map[string]string{
		"short document": `{"propertyId":7,"name":"María Quispe","documentId":"1234567","phone":"987654321"}`,
		"bad phone":      `{"propertyId":7,"name":"María Quispe","documentId":"12345678","phone":"12345"}`,
		"short name":     `{"propertyId":7,"name":"Ma","documentId":"12345678","phone":"987654321"}`,
		"bad email":      `{"propertyId":7,"name":"María Quispe","documentId":"12345678","phone":"987654321","email":"no-arroba"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := postJSON(h.SubmitSecurity, body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestSubmitSecurityUnknownProperty(t *testing.T) {
	h := newLeadTestHandler()

	rec := postJSON(h.SubmitSecurity, `{"propertyId":99,"name":"María Quispe","documentId":"12345678","phone":"987654321"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmitContactCreatesNewLead(t *testing.T) {
	h := newLeadTestHandler()

	rec := postJSON(h.SubmitContact, `{"name":"Jorge","email":"jorge@example.com","message":"Consulta general"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp leadResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, repository.LeadNew, resp.Status)
}

func TestSubmitContactRequiresEmail(t *testing.T) {
	h := newLeadTestHandler()

	rec := postJSON(h.SubmitContact, `{"name":"Jorge","message":"Consulta general"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
