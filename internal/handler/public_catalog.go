// Package handler exposes the HTTP surface: the public catalog and lead
// forms, the admin session flow and the authenticated back-office.
// This file holds the unauthenticated catalog routes. They return only the
// fields the site renders; internal timestamps and admin-only data stay out.
package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/MP-make/pechos-inmobiliaria/internal/repository"
)

// CatalogHandler serves the public property listings and the hero carousel.
type CatalogHandler struct {
	Properties *repository.PropertyRepo
	Heroes     *repository.HeroImageRepo
}

func NewCatalogHandler(p *repository.PropertyRepo, h *repository.HeroImageRepo) *CatalogHandler {
	return &CatalogHandler{Properties: p, Heroes: h}
}

// publicProperty is the card-level view used by the listing page.
type publicProperty struct {
	ID             uint64   `json:"id"`
	Title          string   `json:"title"`
	Slug           string   `json:"slug"`
	Price          float64  `json:"price"`
	PricePerMonth  *float64 `json:"pricePerMonth,omitempty"`
	Status         string   `json:"status"`
	RentalType     string   `json:"rentalType"`
	MaxGuests      uint32   `json:"maxGuests"`
	Bedrooms       uint32   `json:"bedrooms"`
	Bathrooms      uint32   `json:"bathrooms"`
	Address        string   `json:"address"`
	WhatsappNumber string   `json:"whatsappNumber,omitempty"`
	ImageURL       string   `json:"imageUrl,omitempty"`
}

// publicPropertyDetail extends the card with everything the detail page shows.
type publicPropertyDetail struct {
	publicProperty
	Description string        `json:"description"`
	MapURL      string        `json:"mapUrl,omitempty"`
	Amenities   []string      `json:"amenities"`
	Images      []publicImage `json:"images"`
	CreatedAt   time.Time     `json:"createdAt"`
}

type publicImage struct {
	URL     string `json:"url"`
	IsCover bool   `json:"isCover"`
}

type publicHero struct {
	ID  uint64 `json:"id"`
	URL string `json:"url"`
	Alt string `json:"alt,omitempty"`
}

func toPublicProperty(p *repository.Property) publicProperty {
	return publicProperty{
		ID:             p.ID,
		Title:          p.Title,
		Slug:           p.Slug,
		Price:          p.Price,
		PricePerMonth:  p.PricePerMonth,
		Status:         p.Status,
		RentalType:     p.RentalType,
		MaxGuests:      p.MaxGuests,
		Bedrooms:       p.Bedrooms,
		Bathrooms:      p.Bathrooms,
		Address:        p.Address,
		WhatsappNumber: p.WhatsappNumber,
		ImageURL:       p.ImageURL,
	}
}

// ListProperties returns the catalog, available properties first.
func (h *CatalogHandler) ListProperties(c echo.Context) error {
	ctx := c.Request().Context()
	props, err := h.Properties.ListPublic(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]publicProperty, 0, len(props))
	for _, p := range props {
		out = append(out, toPublicProperty(p))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// GetPropertyBySlug returns the detail page payload for one property,
// including its gallery and amenity labels.
func (h *CatalogHandler) GetPropertyBySlug(c echo.Context) error {
	ctx := c.Request().Context()
	slug := c.Param("slug")

	p, err := h.Properties.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrPropertyNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "propiedad no encontrada"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	imgs, err := h.Properties.ImagesByProperty(ctx, p.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	amenities, err := h.Properties.AmenitiesByProperty(ctx, p.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	detail := publicPropertyDetail{
		publicProperty: toPublicProperty(p),
		Description:    p.Description,
		MapURL:         p.MapURL,
		Amenities:      amenities,
		Images:         make([]publicImage, 0, len(imgs)),
		CreatedAt:      p.CreatedAt,
	}
	for _, img := range imgs {
		detail.Images = append(detail.Images, publicImage{URL: img.URL, IsCover: img.IsCover})
	}
	return c.JSON(http.StatusOK, detail)
}

// Carousel lists the active hero images in display order.
func (h *CatalogHandler) Carousel(c echo.Context) error {
	ctx := c.Request().Context()
	heroes, err := h.Heroes.ListActive(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]publicHero, 0, len(heroes))
	for _, img := range heroes {
		out = append(out, publicHero{ID: img.ID, URL: img.URL, Alt: img.Alt})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}
