package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/MP-make/pechos-inmobiliaria/internal/config"
	"github.com/MP-make/pechos-inmobiliaria/internal/database"
	"github.com/MP-make/pechos-inmobiliaria/internal/email"
	"github.com/MP-make/pechos-inmobiliaria/internal/handler"
	"github.com/MP-make/pechos-inmobiliaria/internal/queue"
	"github.com/MP-make/pechos-inmobiliaria/internal/repository"
	"github.com/MP-make/pechos-inmobiliaria/internal/router"
	"github.com/MP-make/pechos-inmobiliaria/internal/service"
	"github.com/MP-make/pechos-inmobiliaria/internal/slug"
	"github.com/MP-make/pechos-inmobiliaria/internal/storage"
)

func main() {
	// .env is optional; real deployments set variables directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()

	properties := repository.NewPropertyRepo(db)
	leads := repository.NewLeadRepo(db)
	users := repository.NewAdminUserRepo(db)
	heroes := repository.NewHeroImageRepo(db)

	images := storage.NewImageStore(cfg.UploadDir, cfg.PublicBaseURL+"/uploads")
	slugs := slug.NewResolver(properties)
	intake := service.NewLeadIntake(leads, properties, &queue.Publisher{})

	// The notification consumer runs in-process: it drains the lead queue
	// and emails the admin. It reconnects on its own if the broker drops.
	mailer := email.NewMailer(cfg.EmailAPIKey, cfg.EmailFrom, cfg.AdminEmail)
	go queue.StartLeadConsumer(mailer)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())
	e.Static("/uploads", cfg.UploadDir)

	router.Register(e, router.Handlers{
		Auth:     handler.NewAuthHandler(cfg, users),
		Catalog:  handler.NewCatalogHandler(properties, heroes),
		Leads:    handler.NewLeadHandler(intake),
		Property: handler.NewAdminPropertyHandler(properties, slugs, images),
		Lead:     handler.NewAdminLeadHandler(leads, intake),
		User:     handler.NewAdminUserHandler(cfg, users),
		Carousel: handler.NewAdminCarouselHandler(heroes, images),
	}, cfg, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
