package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/MP-make/pechos-inmobiliaria/internal/repository"
	"github.com/MP-make/pechos-inmobiliaria/internal/slug"
	"github.com/MP-make/pechos-inmobiliaria/internal/storage"
)

// slugRetries bounds how often a create/update is retried when a concurrent
// write grabs the resolved slug between resolution and insert.
const slugRetries = 3

// AdminPropertyHandler serves the back-office property CRUD. Image payloads
// arrive as base64 data URLs from the admin UI and are persisted to disk;
// already-hosted URLs pass through untouched.
type AdminPropertyHandler struct {
	Properties *repository.PropertyRepo
	Slugs      *slug.Resolver
	Images     *storage.ImageStore
}

func NewAdminPropertyHandler(p *repository.PropertyRepo, s *slug.Resolver, img *storage.ImageStore) *AdminPropertyHandler {
	return &AdminPropertyHandler{Properties: p, Slugs: s, Images: img}
}

type propertyReq struct {
	Title          string   `json:"title"`
	Price          float64  `json:"price"`
	PricePerMonth  *float64 `json:"pricePerMonth"`
	Description    string   `json:"description"`
	Status         string   `json:"status"`
	RentalType     string   `json:"rentalType"`
	MaxGuests      uint32   `json:"maxGuests"`
	Bedrooms       uint32   `json:"bedrooms"`
	Bathrooms      uint32   `json:"bathrooms"`
	Address        string   `json:"address"`
	MapURL         string   `json:"mapUrl"`
	WhatsappNumber string   `json:"whatsappNumber"`
	Images         []string `json:"images"`
	Amenities      []string `json:"amenities"`
}

type adminPropertyResp struct {
	publicPropertyDetail
	UpdatedAt time.Time `json:"updatedAt"`
}

func (req *propertyReq) validate() error {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return errors.New("el título es requerido")
	}
	if req.Price < 0 {
		return errors.New("el precio no puede ser negativo")
	}
	switch strings.ToUpper(strings.TrimSpace(req.Status)) {
	case "":
		req.Status = repository.PropertyAvailable
	case repository.PropertyAvailable, repository.PropertyRented, repository.PropertyMaintenance:
		req.Status = strings.ToUpper(strings.TrimSpace(req.Status))
	default:
		return errors.New("estado de propiedad inválido")
	}
	switch strings.ToUpper(strings.TrimSpace(req.RentalType)) {
	case "":
		req.RentalType = repository.RentalDaily
	case repository.RentalDaily, repository.RentalMonthly, repository.RentalBoth:
		req.RentalType = strings.ToUpper(strings.TrimSpace(req.RentalType))
	default:
		return errors.New("tipo de alquiler inválido")
	}
	return nil
}

func (req *propertyReq) apply(p *repository.Property) {
	p.Title = req.Title
	p.Price = req.Price
	p.PricePerMonth = req.PricePerMonth
	p.Description = req.Description
	p.Status = req.Status
	p.RentalType = req.RentalType
	p.MaxGuests = req.MaxGuests
	p.Bedrooms = req.Bedrooms
	p.Bathrooms = req.Bathrooms
	p.Address = strings.TrimSpace(req.Address)
	p.MapURL = strings.TrimSpace(req.MapURL)
	p.WhatsappNumber = strings.TrimSpace(req.WhatsappNumber)
}

// persistImages resolves incoming image strings to hosted URLs, writing any
// base64 data URL to the upload directory. Order is preserved; the first
// image becomes the cover.
func (h *AdminPropertyHandler) persistImages(raw []string) ([]repository.PropertyImage, error) {
	out := make([]repository.PropertyImage, 0, len(raw))
	for i, item := range raw {
		url := strings.TrimSpace(item)
		if url == "" {
			continue
		}
		if storage.IsDataURL(url) {
			saved, err := h.Images.SaveDataURL(url, i)
			if err != nil {
				return nil, err
			}
			url = saved
		}
		out = append(out, repository.PropertyImage{URL: url, IsCover: len(out) == 0})
	}
	return out, nil
}

// saveGallery stores images and amenities for a property and keeps the
// denormalized cover URL in sync.
func (h *AdminPropertyHandler) saveGallery(ctx context.Context, p *repository.Property, imgs []repository.PropertyImage, amenities []string) error {
	if err := h.Properties.ReplaceImages(ctx, p.ID, imgs); err != nil {
		return err
	}
	cover := ""
	if len(imgs) > 0 {
		cover = imgs[0].URL
	}
	if cover != p.ImageURL {
		if err := h.Properties.SetCoverURL(ctx, p.ID, cover); err != nil {
			return err
		}
		p.ImageURL = cover
	}
	return h.Properties.ReplaceAmenities(ctx, p.ID, amenities)
}

func (h *AdminPropertyHandler) respond(ctx context.Context, c echo.Context, status int, p *repository.Property) error {
	imgs, err := h.Properties.ImagesByProperty(ctx, p.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	amenities, err := h.Properties.AmenitiesByProperty(ctx, p.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	resp := adminPropertyResp{
		publicPropertyDetail: publicPropertyDetail{
			publicProperty: toPublicProperty(p),
			Description:    p.Description,
			MapURL:         p.MapURL,
			Amenities:      amenities,
			Images:         make([]publicImage, 0, len(imgs)),
			CreatedAt:      p.CreatedAt,
		},
		UpdatedAt: p.UpdatedAt,
	}
	for _, img := range imgs {
		resp.Images = append(resp.Images, publicImage{URL: img.URL, IsCover: img.IsCover})
	}
	return c.JSON(status, resp)
}

// Create inserts a property with a unique slug derived from its title. If a
// concurrent create wins the slug between resolution and insert, the unique
// index rejects the row and the slug is resolved again.
func (h *AdminPropertyHandler) Create(c echo.Context) error {
	var req propertyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := req.validate(); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	p := &repository.Property{}
	req.apply(p)

	for attempt := 0; ; attempt++ {
		s, err := h.Slugs.Resolve(ctx, p.Title, 0)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
		p.Slug = s
		err = h.Properties.Create(ctx, p)
		if err == nil {
			break
		}
		if errors.Is(err, repository.ErrSlugTaken) && attempt < slugRetries {
			continue
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create property failed"})
	}

	imgs, err := h.persistImages(req.Images)
	if err != nil {
		log.Printf("persist images for property %d: %v", p.ID, err)
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "imagen inválida"})
	}
	if err := h.saveGallery(ctx, p, imgs, req.Amenities); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save images failed"})
	}
	return h.respond(ctx, c, http.StatusCreated, p)
}

// Update replaces a property's fields, re-resolving the slug when the title
// changed. Images and amenities are replaced wholesale with the request's
// lists, matching how the admin UI edits them.
func (h *AdminPropertyHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req propertyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := req.validate(); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	p, err := h.Properties.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPropertyNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "propiedad no encontrada"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	titleChanged := p.Title != req.Title
	req.apply(p)

	for attempt := 0; ; attempt++ {
		if titleChanged {
			s, err := h.Slugs.Resolve(ctx, p.Title, p.ID)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
			}
			p.Slug = s
		}
		err = h.Properties.Update(ctx, p)
		if err == nil {
			break
		}
		if errors.Is(err, repository.ErrSlugTaken) && titleChanged && attempt < slugRetries {
			continue
		}
		if errors.Is(err, repository.ErrPropertyNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "propiedad no encontrada"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update property failed"})
	}

	imgs, err := h.persistImages(req.Images)
	if err != nil {
		log.Printf("persist images for property %d: %v", p.ID, err)
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "imagen inválida"})
	}
	if err := h.saveGallery(ctx, p, imgs, req.Amenities); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save images failed"})
	}
	return h.respond(ctx, c, http.StatusOK, p)
}

// List returns all properties for the back-office, hidden statuses included.
func (h *AdminPropertyHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	props, err := h.Properties.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]publicProperty, 0, len(props))
	for _, p := range props {
		out = append(out, toPublicProperty(p))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// Get returns one property for editing.
func (h *AdminPropertyHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx := c.Request().Context()
	p, err := h.Properties.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPropertyNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "propiedad no encontrada"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return h.respond(ctx, c, http.StatusOK, p)
}

// Delete removes a property with its images and amenities. Leads that
// pointed at it are kept and detached.
func (h *AdminPropertyHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if err := h.Properties.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrPropertyNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "propiedad no encontrada"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete property failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "propiedad eliminada"})
}
