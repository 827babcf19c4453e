package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stash/internal/auth"
	"stash/internal/config"
	"stash/internal/db"
	"stash/internal/handlers"
	"stash/internal/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	enroll := flag.Bool("enroll", false, "print the TOTP provisioning URI and QR code for the configured secret, then exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if *enroll {
		printEnrollment(cfg)
		return
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer database.Close()
	database.SetMaxOpenConns(cfg.DBMaxOpenConns)
	database.SetMaxIdleConns(cfg.DBMaxIdleConns)

	login := auth.NewLogin(
		&auth.SQLStateStore{DB: database},
		func(code string) bool { return auth.VerifyCode(code, cfg.TOTPSecret) },
		func() (string, error) { return auth.IssueToken(cfg.SessionSecret, cfg.SessionTTLHours) },
		auth.Policy{
			MaxAttempts:  cfg.LockoutMaxAttempts,
			LockDuration: time.Duration(cfg.LockoutDurationMin) * time.Minute,
		},
	)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(helmet.New())
	if cfg.MetricsEnabled {
		app.Use(metrics.Middleware())
		app.Get("/metrics", metrics.Handler())
	}

	// Rate limit on login
	loginLimiter := limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
	})

	// Public routes
	app.Get("/api/auth/status", handlers.AuthStatus(login, cfg))
	app.Post("/api/auth/login", loginLimiter, handlers.LoginPost(login, cfg))
	app.Post("/api/auth/logout", handlers.Logout(cfg))

	// Protected routes
	protected := app.Group("/api", auth.RequireSession(cfg.SessionSecret))
	protected.Get("/items", handlers.ListItems(database))
	protected.Post("/items", handlers.CreateItem(database))
	protected.Delete("/items/:id", handlers.DeleteItem(database))

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		log.Println("Shutting down...")
		_ = app.Shutdown()
	}()

	log.Printf("stash starting on port %s", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}

// printEnrollment emits what the operator needs to add the configured secret
// to an authenticator app.
func printEnrollment(cfg *config.Config) {
	uri := auth.ProvisioningURI(cfg.TOTPSecret, cfg.TOTPIssuer, cfg.TOTPAccount)
	fmt.Println(uri)

	qr, err := auth.EnrollmentQR(uri)
	if err != nil {
		log.Fatalf("Failed to render QR code: %v", err)
	}
	fmt.Println(qr)
}
