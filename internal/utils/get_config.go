package utils

import (
	"log"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"
)

type Config struct {
	// Database configuration
	DBDriver   string `yaml:"DB_DRIVER"` // postgres (default) or sqlite
	DBUser     string `yaml:"DB_USER"`
	DBName     string `yaml:"DB_NAME"`
	DBPassword string `yaml:"DB_PASSWORD"`
	DBPort     string `yaml:"DB_PORT"`
	DBHost     string `yaml:"DB_HOST"`
	DBPath     string `yaml:"DB_PATH"`
	DBTimeZone string `yaml:"DB_TIMEZONE"`

	// HTTP server
	AppPort string `yaml:"APP_PORT"`

	// JWT
	JWTSecret string `yaml:"JWT_SECRET"`

	// Mailing configuration
	AppURL           string `yaml:"APP_URL"`
	SMTPHost         string `yaml:"SMTP_HOST"`
	SMTPPort         string `yaml:"SMTP_PORT"`
	SMTPSenderName   string `yaml:"SMTP_SENDER_NAME"`
	SMTPAuthEmail    string `yaml:"SMTP_AUTH_EMAIL"`
	SMTPAuthPassword string `yaml:"SMTP_AUTH_PASSWORD"`

	// Gemini API configuration (candidate proposer and label reader)
	GeminiAPIKey  string `yaml:"GEMINI_API_KEY"`
	GeminiModel   string `yaml:"GEMINI_MODEL"`
	GeminiBaseURL string `yaml:"GEMINI_BASE_URL"`

	ProposerTimeoutSeconds string `yaml:"PROPOSER_TIMEOUT_SECONDS"`
	ProposerMaxAttempts    string `yaml:"PROPOSER_MAX_ATTEMPTS"`
	LabelMinConfidence     string `yaml:"LABEL_MIN_CONFIDENCE"`
	SweepIntervalMinutes   string `yaml:"SWEEP_INTERVAL_MINUTES"`
}

var config Config

func LoadConfig() {
	LoadConfigFrom("config.yaml")
}

func LoadConfigFrom(path string) {
	file, err := os.ReadFile(path)
	if err != nil {
		log.Printf("Error reading YAML file: %s\n", err)
		return
	}

	err = yaml.Unmarshal(file, &config)
	if err != nil {
		log.Printf("Error parsing YAML file: %s\n", err)
		return
	}

	// Set environment variables for keys that should be accessible via os.Getenv
	os.Setenv("JWT_SECRET", config.JWTSecret)
	os.Setenv("GEMINI_API_KEY", config.GeminiAPIKey)
}

// SetConfig overrides a single key. Unknown keys are ignored.
func SetConfig(key, value string) {
	switch key {
	case "DB_DRIVER":
		config.DBDriver = value
	case "DB_PATH":
		config.DBPath = value
	case "JWT_SECRET":
		config.JWTSecret = value
	case "GEMINI_API_KEY":
		config.GeminiAPIKey = value
	case "GEMINI_MODEL":
		config.GeminiModel = value
	case "GEMINI_BASE_URL":
		config.GeminiBaseURL = value
	case "SMTP_HOST":
		config.SMTPHost = value
	case "LABEL_MIN_CONFIDENCE":
		config.LabelMinConfidence = value
	}
}

func GetConfig(key string) string {
	if v, ok := os.LookupEnv("PANTRY_" + key); ok {
		return v
	}
	switch key {
	case "DB_DRIVER":
		return config.DBDriver
	case "DB_USER":
		return config.DBUser
	case "DB_NAME":
		return config.DBName
	case "DB_PASSWORD":
		return config.DBPassword
	case "DB_PORT":
		return config.DBPort
	case "DB_HOST":
		return config.DBHost
	case "DB_PATH":
		return config.DBPath
	case "DB_TIMEZONE":
		return config.DBTimeZone
	case "APP_PORT":
		return config.AppPort
	case "JWT_SECRET":
		return config.JWTSecret
	case "APP_URL":
		return config.AppURL
	case "SMTP_HOST":
		return config.SMTPHost
	case "SMTP_PORT":
		return config.SMTPPort
	case "SMTP_SENDER_NAME":
		return config.SMTPSenderName
	case "SMTP_AUTH_EMAIL":
		return config.SMTPAuthEmail
	case "SMTP_AUTH_PASSWORD":
		return config.SMTPAuthPassword
	case "GEMINI_API_KEY":
		return config.GeminiAPIKey
	case "GEMINI_MODEL":
		return config.GeminiModel
	case "GEMINI_BASE_URL":
		return config.GeminiBaseURL
	case "PROPOSER_TIMEOUT_SECONDS":
		return config.ProposerTimeoutSeconds
	case "PROPOSER_MAX_ATTEMPTS":
		return config.ProposerMaxAttempts
	case "LABEL_MIN_CONFIDENCE":
		return config.LabelMinConfidence
	case "SWEEP_INTERVAL_MINUTES":
		return config.SweepIntervalMinutes
	default:
		return ""
	}
}

func GetConfigInt(key string, fallback int) int {
	v, err := strconv.Atoi(GetConfig(key))
	if err != nil {
		return fallback
	}
	return v
}

func GetConfigFloat(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(GetConfig(key), 64)
	if err != nil {
		return fallback
	}
	return v
}
