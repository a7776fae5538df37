package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Store backends selectable through STORE_BACKEND.
const (
	StoreMemory    = "memory"
	StoreFirestore = "firestore"
	StoreMongo     = "mongo"
)

type Config struct {
	Port     string
	AppEnv   string
	LogLevel string

	StoreBackend string
	MongoURI     string
	MongoDB      string

	FirebaseServiceAccountPath string
	FirebaseProjectID          string

	JWTSecret      string
	JWTExpireHours int
	FrontendURL    string

	GeminiAPIKey     string
	GeminiModel      string
	GeminiMaxRetries int

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	SlackWebhookURL string

	SchoolProfilePath string
	Profile           *SchoolProfile

	BootstrapStaffEmail    string
	BootstrapStaffPassword string

	// Requests per minute per client IP on the unauthenticated endpoints.
	PublicRateLimit int
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found")
	}

	cfg := &Config{
		Port:     getEnv("PORT", "8080"),
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		StoreBackend: getEnv("STORE_BACKEND", StoreMemory),
		MongoURI:     getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:      getEnv("MONGO_DB", "schoolsafe"),

		FirebaseServiceAccountPath: getEnv("FIREBASE_SERVICE_ACCOUNT_PATH", ""),
		FirebaseProjectID:          getEnv("FIREBASE_PROJECT_ID", ""),

		JWTSecret:      getEnv("JWT_SECRET", "secret"),
		JWTExpireHours: getEnvInt("JWT_EXPIRE_HOURS", 24),
		FrontendURL:    getEnv("FRONTEND_URL", "http://localhost:3000"),

		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		GeminiModel:      getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiMaxRetries: getEnvInt("GEMINI_MAX_RETRIES", 2),

		CloudinaryCloudName: getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),

		SlackWebhookURL: getEnv("SLACK_WEBHOOK_URL", ""),

		SchoolProfilePath: getEnv("SCHOOL_PROFILE_PATH", ""),

		BootstrapStaffEmail:    getEnv("BOOTSTRAP_STAFF_EMAIL", ""),
		BootstrapStaffPassword: getEnv("BOOTSTRAP_STAFF_PASSWORD", ""),

		PublicRateLimit: getEnvInt("PUBLIC_RATE_LIMIT", 20),
	}

	profile, err := LoadProfile(cfg.SchoolProfilePath)
	if err != nil {
		log.Printf("School profile not loaded, using defaults: %v", err)
		profile = DefaultProfile()
	}
	cfg.Profile = profile

	return cfg
}

// IsProduction reports whether the service runs with APP_ENV=production.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Invalid integer for %s=%q, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}
