package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ecofinds_backend/config"
	"ecofinds_backend/internal/activity"
	"ecofinds_backend/internal/media"
	"ecofinds_backend/internal/ws"
	"ecofinds_backend/middleware"
	"ecofinds_backend/routes"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "ecofinds",
		Short: "EcoFinds marketplace API",
	}
	root.AddCommand(serveCmd(), migrateCmd(), seedCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(config.LoadConfig())
		},
	}
}

func migrateCmd() *cobra.Command {
	var reset bool
	c := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := config.ConnectDatabase(config.LoadConfig())
			if err != nil {
				return err
			}
			if reset {
				return config.ResetAndMigrate(db)
			}
			return config.Migrate(db)
		},
	}
	c.Flags().BoolVar(&reset, "reset", false, "drop all tables, migrate and seed demo data")
	return c
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert categories and demo users/listings",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := config.ConnectDatabase(config.LoadConfig())
			if err != nil {
				return err
			}
			return config.SeedAll(db)
		},
	}
}

func serve(cfg *config.Config) error {
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is not set")
	}

	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		return err
	}
	if err := config.Migrate(db); err != nil {
		return err
	}

	var relay *media.Relay
	host, err := media.NewCloudinaryHost(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		log.Printf("⚠️  Media uploads disabled: %v", err)
	} else {
		relay = media.NewRelay(host, media.Options{
			RootFolder: cfg.CloudinaryRootFolder,
			MaxSize:    cfg.MaxUploadSize,
			MaxFiles:   cfg.MaxImagesPerUpload,
		})
	}

	var act activity.Logger = activity.Stdout{}
	if cfg.MongoURI != "" {
		mongoLog, disconnect, err := activity.Connect(context.Background(), cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			log.Printf("⚠️  Activity log falling back to stdout: %v", err)
		} else {
			act = mongoLog
			defer disconnect(context.Background())
		}
	}

	hub := ws.NewHub()
	go hub.Run()
	defer hub.Stop()

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: "EcoFinds API Server/1.0",
		BodyLimit:    cfg.BodyLimit(),
		ErrorHandler: middleware.ErrorHandler,
	})

	middleware.SetupMiddleware(app, cfg)

	// Health Check Endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":  "success",
			"message": "API is healthy",
		})
	})

	routes.SetupRoutes(app, routes.Deps{
		DB:       db,
		Cfg:      cfg,
		Hub:      hub,
		Relay:    relay,
		Activity: act,
	})
	middleware.SetupErrorHandler(app)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	log.Printf("🚀 Server starting on %s:%s in %s mode", cfg.HOST, cfg.AppPort, cfg.AppEnv)

	return app.Listen(cfg.HOST + ":" + cfg.AppPort)
}
