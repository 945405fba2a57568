package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/MP-make/pechos-inmobiliaria/internal/repository"
	"github.com/MP-make/pechos-inmobiliaria/internal/storage"
)

// AdminCarouselHandler manages the homepage hero carousel. New images come
// in as data URLs or hosted URLs, same as the property gallery.
type AdminCarouselHandler struct {
	Heroes *repository.HeroImageRepo
	Images *storage.ImageStore
}

func NewAdminCarouselHandler(h *repository.HeroImageRepo, img *storage.ImageStore) *AdminCarouselHandler {
	return &AdminCarouselHandler{Heroes: h, Images: img}
}

type heroReq struct {
	Image        string `json:"image"`
	Alt          string `json:"alt"`
	DisplayOrder uint32 `json:"displayOrder"`
	IsActive     *bool  `json:"isActive"`
}

type adminHero struct {
	ID           uint64    `json:"id"`
	URL          string    `json:"url"`
	Alt          string    `json:"alt,omitempty"`
	DisplayOrder uint32    `json:"displayOrder"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
}

// List returns every hero image, inactive ones included.
func (h *AdminCarouselHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	heroes, err := h.Heroes.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]adminHero, 0, len(heroes))
	for _, img := range heroes {
		out = append(out, adminHero{
			ID:           img.ID,
			URL:          img.URL,
			Alt:          img.Alt,
			DisplayOrder: img.DisplayOrder,
			IsActive:     img.IsActive,
			CreatedAt:    img.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// Create stores a carousel image. Active by default.
func (h *AdminCarouselHandler) Create(c echo.Context) error {
	var req heroReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	url := strings.TrimSpace(req.Image)
	if url == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "la imagen es requerida"})
	}
	if storage.IsDataURL(url) {
		saved, err := h.Images.SaveDataURL(url, 0)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "imagen inválida"})
		}
		url = saved
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	img := &repository.HeroImage{
		URL:          url,
		Alt:          strings.TrimSpace(req.Alt),
		DisplayOrder: req.DisplayOrder,
		IsActive:     active,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Heroes.Create(ctx, img); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create hero image failed"})
	}
	return c.JSON(http.StatusCreated, adminHero{
		ID:           img.ID,
		URL:          img.URL,
		Alt:          img.Alt,
		DisplayOrder: img.DisplayOrder,
		IsActive:     img.IsActive,
		CreatedAt:    img.CreatedAt,
	})
}

// Delete removes a carousel image.
func (h *AdminCarouselHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Heroes.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrHeroImageNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "imagen no encontrada"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete hero image failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "imagen eliminada"})
}
