// @title SchoolSafe API
// @version 1.0
// @description Anonymous incident reporting for students, with triage and a live dashboard for teachers
// @host localhost:8080
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer <token>"
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	docs "github.com/xyz-asif/schoolsafe/docs"
	"github.com/xyz-asif/schoolsafe/internal/config"
	"github.com/xyz-asif/schoolsafe/internal/database"
	"github.com/xyz-asif/schoolsafe/internal/features/identity"
	"github.com/xyz-asif/schoolsafe/internal/features/reports"
	"github.com/xyz-asif/schoolsafe/internal/features/triage"
	"github.com/xyz-asif/schoolsafe/internal/middleware"
	"github.com/xyz-asif/schoolsafe/internal/pkg/cloudinary"
	"github.com/xyz-asif/schoolsafe/internal/pkg/logger"
	"github.com/xyz-asif/schoolsafe/internal/pkg/notify"
	"github.com/xyz-asif/schoolsafe/internal/pkg/ratelimit"
	"github.com/xyz-asif/schoolsafe/internal/pkg/response"
	"github.com/xyz-asif/schoolsafe/internal/routes"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		panic("failed to build logger: " + err.Error())
	}
	defer log.Sync()
	logger.SetGlobal(log)

	docs.SwaggerInfo.Host = "localhost:" + cfg.Port
	docs.SwaggerInfo.BasePath = "/api/v1"
	docs.SwaggerInfo.Schemes = []string{"http"}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	deps := routes.Dependencies{Config: cfg, Logger: log}
	var closers []func(context.Context) error
	var ping func(context.Context) error

	// Firebase backs the Firestore store and, when configured, client ID tokens.
	var firebaseAuth *auth.Client
	if cfg.StoreBackend == config.StoreFirestore || cfg.FirebaseProjectID != "" || cfg.FirebaseServiceAccountPath != "" {
		app, err := database.NewFirebaseApp(ctx, cfg.FirebaseServiceAccountPath, cfg.FirebaseProjectID)
		if err != nil {
			log.Fatal("Failed to initialize Firebase", zap.Error(err))
		}

		if firebaseAuth, err = app.Auth(ctx); err != nil {
			log.Warn("Firebase Auth unavailable, only portal tokens are accepted", zap.Error(err))
			firebaseAuth = nil
		}

		if cfg.StoreBackend == config.StoreFirestore {
			fs, err := app.Firestore(ctx)
			if err != nil {
				log.Fatal("Failed to open Firestore", zap.Error(err))
			}
			closers = append(closers, func(context.Context) error { return fs.Close() })
			deps.Reports = reports.NewFirestoreRepository(fs, log.Named("firestore"))
		}
	}
	deps.Firebase = firebaseAuth

	var mongoDB *mongo.Database
	if cfg.StoreBackend == config.StoreMongo {
		db, err := database.Connect(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			log.Fatal("Failed to connect to MongoDB", zap.Error(err))
		}
		closers = append(closers, db.Disconnect)
		ping = db.Ping
		mongoDB = db.Database

		deps.Reports = reports.NewMongoRepository(mongoDB, log.Named("mongo"))
	}

	// Staff accounts live in MongoDB whenever it is connected.
	if mongoDB != nil {
		deps.Staff = identity.NewMongoStaffRepository(mongoDB)
	} else {
		deps.Staff = identity.NewMemoryStaffRepository()
	}

	if deps.Reports == nil {
		if cfg.StoreBackend != config.StoreMemory {
			log.Warn("Unknown STORE_BACKEND, using memory", zap.String("backend", cfg.StoreBackend))
		}
		log.Warn("Reports are kept in memory and lost on restart")
		deps.Reports = reports.NewMemoryRepository()
	}

	if cfg.GeminiAPIKey != "" {
		completer, err := triage.NewGeminiCompleter(ctx, triage.GeminiConfig{
			APIKey:     cfg.GeminiAPIKey,
			ModelName:  cfg.GeminiModel,
			MaxRetries: cfg.GeminiMaxRetries,
		}, log.Named("gemini"))
		if err != nil {
			log.Warn("Gemini unavailable, triage uses the fallback bundle", zap.Error(err))
		} else {
			closers = append(closers, func(context.Context) error { return completer.Close() })
			deps.Completer = completer
		}
	} else {
		log.Info("GEMINI_API_KEY not set, triage uses the fallback bundle")
	}

	if uploader, err := cloudinary.NewService(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, ""); err != nil {
		log.Info("Evidence upload disabled", zap.Error(err))
	} else {
		deps.Uploader = uploader
	}

	if slack := notify.NewSlackWebhook(cfg.SlackWebhookURL); slack.Enabled() {
		deps.Alerts = slack
	}

	limiter := ratelimit.New(cfg.PublicRateLimit, time.Minute)
	limiter.StartCleanup(ctx, 5*time.Minute)
	deps.PublicLimiter = limiter

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(log.Named("http")))
	router.Use(middleware.CORS(cfg.FrontendURL))

	router.GET("/health", func(c *gin.Context) {
		if ping != nil {
			pingCtx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := ping(pingCtx); err != nil {
				response.ServiceUnavailable(c, "Store unreachable", "STORE_UNAVAILABLE")
				return
			}
		}
		response.Success(c, map[string]interface{}{
			"status": "ok",
			"store":  cfg.StoreBackend,
			"school": cfg.Profile.SchoolName,
			"triage": deps.Completer != nil,
			"time":   time.Now().Unix(),
		})
	})

	router.GET(
		"/swagger/*any",
		ginSwagger.WrapHandler(
			swaggerFiles.Handler,
			ginSwagger.URL("/swagger/doc.json"),
			ginSwagger.DeepLinking(true),
			ginSwagger.DefaultModelsExpandDepth(-1),
			ginSwagger.DocExpansion("none"),
			ginSwagger.PersistAuthorization(true),
		),
	)

	services := routes.SetupRoutes(router, deps)

	if cfg.BootstrapStaffEmail != "" {
		if err := services.Auth.EnsureStaff(ctx, cfg.BootstrapStaffEmail, cfg.BootstrapStaffPassword, ""); err != nil {
			log.Fatal("Failed to bootstrap staff account", zap.Error(err))
		}
		log.Info("Staff account ready", zap.String("email", cfg.BootstrapStaffEmail))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Server starting", zap.String("port", cfg.Port), zap.String("store", cfg.StoreBackend))

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](shutdownCtx); err != nil {
			log.Warn("Failed to release resource", zap.Error(err))
		}
	}

	log.Info("Server exited")
}
