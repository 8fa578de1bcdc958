// Command seed_demo creates a demo account with a handful of applications in
// the configured store. Running it twice reuses the account and adds nothing.
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/wuwenbin0122/applytrackr/internal/applications"
	"github.com/wuwenbin0122/applytrackr/internal/auth"
	"github.com/wuwenbin0122/applytrackr/internal/db"
	"github.com/wuwenbin0122/applytrackr/internal/utils"
)

type seedApplication struct {
	company  string
	position string
	jobLink  string
	status   string
	applied  time.Duration
	deadline time.Duration
	notes    string
}

func main() {
	_ = godotenv.Load()

	cfg, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger, err := utils.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	stores, err := db.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("open store", zap.Error(err))
	}
	defer stores.Close()

	hasher, err := auth.NewPasswordHasher(cfg.Auth.BcryptCost)
	if err != nil {
		logger.Fatal("create hasher", zap.Error(err))
	}
	tokens, err := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		logger.Fatal("create token service", zap.Error(err))
	}
	authService := auth.NewService(stores.Users, hasher, tokens, logger)

	appService, err := applications.NewService(stores.Applications, logger)
	if err != nil {
		logger.Fatal("create application service", zap.Error(err))
	}

	email := envOr("SEED_EMAIL", "demo@applytrackr.dev")
	password := envOr("SEED_PASSWORD", "demo-password")

	result, err := authService.Register(ctx, auth.RegisterInput{Name: "Demo User", Email: email, Password: password})
	if errors.Is(err, auth.ErrEmailExists) {
		logger.Info("demo account exists; skipping seed", zap.String("email", email))
		return
	}
	if err != nil {
		logger.Fatal("register demo account", zap.Error(err))
	}

	now := time.Now().UTC()
	seeds := []seedApplication{
		{company: "Acme", position: "Backend Engineer", jobLink: "https://acme.example/jobs/42", applied: -21 * 24 * time.Hour, notes: "Referral from a former colleague."},
		{company: "Globex", position: "Site Reliability Engineer", status: "interview", applied: -14 * 24 * time.Hour, deadline: 3 * 24 * time.Hour, notes: "Second round with the platform team."},
		{company: "Initech", position: "Data Analyst", status: "rejected", applied: -30 * 24 * time.Hour},
		{company: "Umbrella", position: "Platform Engineer", status: "offer", applied: -40 * 24 * time.Hour, deadline: 7 * 24 * time.Hour, notes: "Offer expires next week."},
		{company: "Hooli", position: "Go Developer", status: "interview", applied: -5 * 24 * time.Hour},
	}

	for _, seed := range seeds {
		applied := now.Add(seed.applied)
		input := applications.CreateInput{
			Company:     seed.company,
			Position:    seed.position,
			JobLink:     seed.jobLink,
			Status:      seed.status,
			AppliedDate: &applied,
			Notes:       seed.notes,
		}
		if seed.deadline != 0 {
			deadline := now.Add(seed.deadline)
			input.Deadline = &deadline
		}

		if _, err := appService.Create(ctx, result.User.ID, input); err != nil {
			logger.Fatal("create application", zap.String("company", seed.company), zap.Error(err))
		}
	}

	logger.Info("seeded demo account",
		zap.String("email", email),
		zap.Int("applications", len(seeds)),
	)
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
