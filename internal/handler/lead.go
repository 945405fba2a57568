package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/MP-make/pechos-inmobiliaria/internal/repository"
	"github.com/MP-make/pechos-inmobiliaria/internal/service"
)

// LeadHandler serves the two public lead forms: the security wall shown
// before a property's contact data, and the generic contact form.
type LeadHandler struct {
	Intake *service.LeadIntake
}

func NewLeadHandler(intake *service.LeadIntake) *LeadHandler {
	return &LeadHandler{Intake: intake}
}

type securityLeadReq struct {
	PropertyID uint64 `json:"propertyId"`
	Name       string `json:"name"`
	DocumentID string `json:"documentId"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	Message    string `json:"message"`
}

type contactReq struct {
	PropertyID *uint64 `json:"propertyId"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Phone      string  `json:"phone"`
	Message    string  `json:"message"`
}

type leadResp struct {
	ID           uint64 `json:"id"`
	Status       string `json:"status"`
	Resubmission bool   `json:"resubmission"`
}

// SubmitSecurity handles the security-wall form. A repeat submission for
// the same document updates the existing lead instead of creating another,
// and the response says so via "resubmission".
func (h *LeadHandler) SubmitSecurity(c echo.Context) error {
	var req securityLeadReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Intake.SubmitSecurityLead(ctx, service.SecuritySubmission{
		PropertyID: req.PropertyID,
		Name:       req.Name,
		DocumentID: req.DocumentID,
		Phone:      req.Phone,
		Email:      req.Email,
		Message:    req.Message,
	})
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": verr.Message})
		}
		if errors.Is(err, repository.ErrPropertyNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "propiedad no encontrada"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "no se pudo registrar el lead"})
	}

	status := http.StatusCreated
	if !res.Created {
		status = http.StatusOK
	}
	return c.JSON(status, leadResp{
		ID:           res.Lead.ID,
		Status:       res.Lead.Status,
		Resubmission: !res.Created,
	})
}

// SubmitContact handles the generic contact form. These leads are born NEW
// and never deduplicated.
func (h *LeadHandler) SubmitContact(c echo.Context) error {
	var req contactReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	lead, err := h.Intake.SubmitContact(ctx, service.ContactSubmission{
		PropertyID: req.PropertyID,
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Message:    req.Message,
	})
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": verr.Message})
		}
		if errors.Is(err, repository.ErrPropertyNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "propiedad no encontrada"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "no se pudo enviar el mensaje"})
	}
	return c.JSON(http.StatusCreated, leadResp{ID: lead.ID, Status: lead.Status})
}
