package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/MP-make/pechos-inmobiliaria/internal/config"
	"github.com/MP-make/pechos-inmobiliaria/internal/repository"
)

// AdminUserHandler manages back-office accounts. Any logged-in admin can
// add another; there is no role hierarchy in this back-office.
type AdminUserHandler struct {
	Cfg   config.Config
	Users *repository.AdminUserRepo
}

func NewAdminUserHandler(cfg config.Config, u *repository.AdminUserRepo) *AdminUserHandler {
	return &AdminUserHandler{Cfg: cfg, Users: u}
}

type createUserReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// List returns every admin account without password material.
func (h *AdminUserHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	users, err := h.Users.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]userPart, 0, len(users))
	for _, u := range users {
		out = append(out, userPart{ID: u.ID, Email: u.Email, Name: u.Name})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// Create registers a new admin account.
func (h *AdminUserHandler) Create(c echo.Context) error {
	var req createUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email y contraseña son requeridos"})
	}
	if len(req.Password) < 4 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "la contraseña es demasiado corta"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Email, req.Password, req.Name, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "el email ya está registrado"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"user": userPart{ID: uid, Email: req.Email, Name: req.Name},
	})
}
