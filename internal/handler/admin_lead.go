package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/MP-make/pechos-inmobiliaria/internal/repository"
	"github.com/MP-make/pechos-inmobiliaria/internal/service"
)

// AdminLeadHandler serves the back-office lead views: the inbox, the
// dashboard counters and the per-lead block switch.
type AdminLeadHandler struct {
	Leads  *repository.LeadRepo
	Intake *service.LeadIntake
}

func NewAdminLeadHandler(leads *repository.LeadRepo, intake *service.LeadIntake) *AdminLeadHandler {
	return &AdminLeadHandler{Leads: leads, Intake: intake}
}

type adminLead struct {
	ID            uint64    `json:"id"`
	Name          string    `json:"name"`
	DocumentID    *string   `json:"documentId,omitempty"`
	Phone         string    `json:"phone"`
	Email         string    `json:"email"`
	Message       string    `json:"message,omitempty"`
	Status        string    `json:"status"`
	PropertyID    *uint64   `json:"propertyId,omitempty"`
	PropertyTitle *string   `json:"propertyTitle,omitempty"`
	PropertySlug  *string   `json:"propertySlug,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// List returns every lead newest first, with the property it points at.
func (h *AdminLeadHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	leads, err := h.Leads.ListWithProperty(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]adminLead, 0, len(leads))
	for _, l := range leads {
		out = append(out, adminLead{
			ID:            l.ID,
			Name:          l.Name,
			DocumentID:    l.DocumentID,
			Phone:         l.Phone,
			Email:         l.Email,
			Message:       l.Message,
			Status:        l.Status,
			PropertyID:    l.PropertyID,
			PropertyTitle: l.PropertyTitle,
			PropertySlug:  l.PropertySlug,
			CreatedAt:     l.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// Stats returns the dashboard counters: total, pending and blocked leads.
func (h *AdminLeadHandler) Stats(c echo.Context) error {
	ctx := c.Request().Context()
	stats, err := h.Leads.Stats(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"total":   stats.Total,
		"pending": stats.Pending,
		"blocked": stats.Blocked,
	})
}

// ToggleBlock flips a lead between BLOCKED and PENDING.
func (h *AdminLeadHandler) ToggleBlock(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	lead, err := h.Intake.ToggleBlock(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrLeadNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "lead no encontrado"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update lead failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"id": lead.ID, "status": lead.Status})
}

// Delete removes a lead permanently.
func (h *AdminLeadHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Leads.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrLeadNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "lead no encontrado"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete lead failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "lead eliminado"})
}
