package routes

import (
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/xyz-asif/schoolsafe/internal/config"
	"github.com/xyz-asif/schoolsafe/internal/features/dashboard"
	"github.com/xyz-asif/schoolsafe/internal/features/evidence"
	"github.com/xyz-asif/schoolsafe/internal/features/identity"
	"github.com/xyz-asif/schoolsafe/internal/features/live"
	"github.com/xyz-asif/schoolsafe/internal/features/reports"
	"github.com/xyz-asif/schoolsafe/internal/features/tracking"
	"github.com/xyz-asif/schoolsafe/internal/features/triage"
	"github.com/xyz-asif/schoolsafe/internal/pkg/jwt"
	"github.com/xyz-asif/schoolsafe/internal/pkg/ratelimit"
)

// Dependencies are the backends chosen in main. Optional fields may be left
// nil: Firebase disables Firebase ID tokens, Completer makes triage use the
// fallback bundle, Uploader disables /evidence, Alerts disables Slack.
type Dependencies struct {
	Config  *config.Config
	Logger  *zap.Logger
	Reports reports.Repository
	Staff   identity.StaffRepository

	Firebase  *auth.Client
	Completer triage.Completer
	Uploader  evidence.Uploader
	Alerts    triage.AlertSender

	// Shared limiter for the unauthenticated endpoints. Built from
	// Config.PublicRateLimit when nil.
	PublicLimiter *ratelimit.RateLimiter
}

// Services exposes what main needs after wiring.
type Services struct {
	Auth    *identity.Authenticator
	Reports *reports.Service
	Limiter *ratelimit.RateLimiter
}

func SetupRoutes(router *gin.Engine, deps Dependencies) *Services {
	cfg, logger := deps.Config, deps.Logger
	api := router.Group("/api/v1")

	jwtCfg := jwt.DefaultConfig(cfg.JWTSecret)
	if cfg.JWTExpireHours > 0 {
		jwtCfg.AccessExpiry = time.Duration(cfg.JWTExpireHours) * time.Hour
	}
	authenticator := identity.NewAuthenticator(deps.Staff, jwtCfg, logger.Named("identity"))

	verifier := identity.ChainVerifier{authenticator}
	if deps.Firebase != nil {
		verifier = append(verifier, identity.NewFirebaseVerifier(deps.Firebase))
	}
	requireAuth := identity.NewAuthMiddleware(verifier)
	optionalAuth := identity.NewOptionalAuthMiddleware(verifier)
	teacherOnly := []gin.HandlerFunc{requireAuth, identity.RequireTeacher()}

	limiter := deps.PublicLimiter
	if limiter == nil {
		limiter = ratelimit.New(cfg.PublicRateLimit, time.Minute)
	}
	publicLimit := ratelimit.Middleware(limiter)

	profile := cfg.Profile
	if profile == nil {
		profile = config.DefaultProfile()
	}

	issuer := tracking.NewIssuer(deps.Reports, logger.Named("tracking"))
	reportsService := reports.NewService(deps.Reports, issuer, profile.SchoolName, logger.Named("reports"))

	analyzer := triage.NewAnalyzer(deps.Completer, profile.SchoolName, profile.SystemInstruction, logger.Named("triage"))
	enricher := triage.NewEnricher(analyzer, reportsService, deps.Alerts, logger.Named("triage"))

	identity.RegisterRoutes(api, identity.NewHandler(authenticator, logger), requireAuth, publicLimit)
	reports.RegisterRoutes(api, reports.NewHandler(reportsService, logger), optionalAuth, publicLimit, teacherOnly...)
	evidence.RegisterRoutes(api, evidence.NewHandler(deps.Uploader, logger), publicLimit)
	tracking.RegisterRoutes(api, tracking.NewHandler(tracking.NewService(deps.Reports, logger.Named("tracking")), authenticator, logger), optionalAuth, publicLimit)
	dashboard.RegisterRoutes(api, dashboard.NewHandler(reportsService, enricher, logger), teacherOnly...)
	live.RegisterRoutes(api, live.NewHandler(reportsService, verifier, cfg.FrontendURL, logger.Named("live")))

	return &Services{Auth: authenticator, Reports: reportsService, Limiter: limiter}
}
