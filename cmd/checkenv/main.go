// Command checkenv verifies that the backends configured in .env are
// reachable before the API is started.
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/xyz-asif/schoolsafe/internal/config"
	"github.com/xyz-asif/schoolsafe/internal/database"
	"github.com/xyz-asif/schoolsafe/internal/features/triage"
	"github.com/xyz-asif/schoolsafe/internal/pkg/cloudinary"
	"github.com/xyz-asif/schoolsafe/internal/pkg/logger"
	"github.com/xyz-asif/schoolsafe/internal/pkg/notify"
)

type check struct {
	name string
	// skip explains why the check does not apply; empty means run it.
	skip string
	run  func(ctx context.Context) error
}

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		panic("failed to build logger: " + err.Error())
	}
	defer log.Sync()
	logger.SetGlobal(log)

	slack := notify.NewSlackWebhook(cfg.SlackWebhookURL)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	checks := []check{
		{
			name: "MongoDB",
			skip: skipUnless(cfg.StoreBackend == config.StoreMongo, "STORE_BACKEND is not mongo"),
			run: func(ctx context.Context) error {
				db, err := database.Connect(cfg.MongoURI, cfg.MongoDB)
				if err != nil {
					return err
				}
				return db.Disconnect(ctx)
			},
		},
		{
			name: "Firebase",
			skip: skipUnless(cfg.StoreBackend == config.StoreFirestore || cfg.FirebaseProjectID != "" || cfg.FirebaseServiceAccountPath != "",
				"no Firebase project configured"),
			run: func(ctx context.Context) error {
				app, err := database.NewFirebaseApp(ctx, cfg.FirebaseServiceAccountPath, cfg.FirebaseProjectID)
				if err != nil {
					return err
				}
				if _, err := app.Auth(ctx); err != nil {
					return fmt.Errorf("auth client: %w", err)
				}
				if cfg.StoreBackend != config.StoreFirestore {
					return nil
				}
				fs, err := app.Firestore(ctx)
				if err != nil {
					return fmt.Errorf("firestore client: %w", err)
				}
				return fs.Close()
			},
		},
		{
			name: "Gemini",
			skip: skipUnless(cfg.GeminiAPIKey != "", "GEMINI_API_KEY not set, triage will use the fallback bundle"),
			run: func(ctx context.Context) error {
				completer, err := triage.NewGeminiCompleter(ctx, triage.GeminiConfig{
					APIKey:    cfg.GeminiAPIKey,
					ModelName: cfg.GeminiModel,
				}, logger.L().Named("gemini"))
				if err != nil {
					return err
				}
				return completer.Close()
			},
		},
		{
			name: "Cloudinary",
			skip: skipUnless(cfg.CloudinaryCloudName != "", "CLOUDINARY_CLOUD_NAME not set, evidence upload disabled"),
			run: func(context.Context) error {
				_, err := cloudinary.NewService(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, "")
				return err
			},
		},
		{
			name: "Slack",
			skip: skipUnless(slack.Enabled(), "SLACK_WEBHOOK_URL not set, urgent alerts disabled"),
			run:  func(context.Context) error { return slack.Validate() },
		},
	}

	logger.Debug("Loaded configuration for %s (env %s)", cfg.Profile.SchoolName, cfg.AppEnv)
	logger.Info("School: %s, store backend: %s", cfg.Profile.SchoolName, cfg.StoreBackend)

	failed := 0
	for _, c := range checks {
		if c.skip != "" {
			logger.Warn("⏭️  %s skipped: %s", c.name, c.skip)
			continue
		}
		if err := c.run(ctx); err != nil {
			failed++
			logger.Error("❌ %s failed: %v", c.name, err)
			continue
		}
		logger.Info("✅ %s configured", c.name)
	}

	if failed > 0 {
		log.Sync()
		logger.Fatal("%d check(s) failed", failed)
	}
	logger.Info("🎉 All configured systems ready!")
}

func skipUnless(cond bool, reason string) string {
	if cond {
		return ""
	}
	return reason
}
