package main

import (
	"net/http"

	"github.com/nikhil/sprintboard/internal/config"
	"github.com/nikhil/sprintboard/internal/database"
	"github.com/nikhil/sprintboard/internal/logger"
	"github.com/nikhil/sprintboard/internal/models"
	"github.com/nikhil/sprintboard/internal/notifier"
	"github.com/nikhil/sprintboard/internal/routes"
)

func main() {
	log := logger.NewLogger("sprintboard")
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load configuration", "error", err)
	}

	db, err := database.Connect(cfg.DB)
	if err != nil {
		log.Fatal("failed to connect to database", "error", err)
	}
	defer db.Close()

	if err := database.InitSchema(db); err != nil {
		log.Fatal("failed to initialize schema", "error", err)
	}

	hub := models.NewHub()
	go hub.Run()

	gateway := notifier.New(notifier.NewMailer(cfg.SMTP), hub, log)

	router := routes.RegisterAllRoutes(&routes.Deps{
		DB:      db,
		Hub:     hub,
		Gateway: gateway,
	})

	log.Info("server listening", "port", cfg.HTTPPort, "env", cfg.AppEnv)
	if err := http.ListenAndServe(":"+cfg.HTTPPort, router); err != nil {
		log.Fatal("server stopped", "error", err)
	}
}
