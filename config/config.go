package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// Enabled reports whether result persistence is configured.
func (c DatabaseConfig) Enabled() bool {
	return c.DBName != ""
}

type BrowserConfig struct {
	Headless  bool
	UserAgent string
	CDPURL    string
}

// LLMConfig selects the content-generation backend. Provider is one of
// "groq", "openai", "gemini" or "none".
type LLMConfig struct {
	Provider     string
	APIKey       string
	BaseURL      string
	Model        string
	GeminiAPIKey string
	GeminiModel  string
	Timeout      time.Duration
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Enabled reports whether report emails can actually be delivered.
func (c SMTPConfig) Enabled() bool {
	return c.Host != "" && c.From != ""
}

type EvidenceConfig struct {
	Bucket string
	Region string
	Prefix string
}

func (c EvidenceConfig) Enabled() bool {
	return c.Bucket != ""
}

type BatchConfig struct {
	MaxJobs int
	// JobInterval is the minimum gap between two job starts.
	JobInterval time.Duration
	// NotifyByEmail sends the batch report to the profile's address.
	NotifyByEmail bool
}

type AppConfig struct {
	Port        string
	Database    DatabaseConfig
	JWTSecret   string
	Environment string
	Browser     BrowserConfig
	LLM         LLMConfig
	SMTP        SMTPConfig
	Evidence    EvidenceConfig
	Batch       BatchConfig
}

func GetDatabaseConfig() DatabaseConfig {
	port, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))
	password := getEnv("DB_PASSWORD", "")
	dbName := getEnv("DB_NAME", "")

	if dbName != "" && password == "" {
		fmt.Println("⚠️  Warning: DB_PASSWORD environment variable is not set.")
	}

	return DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     port,
		User:     getEnv("DB_USER", "postgres"),
		Password: password,
		DBName:   dbName,
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}
}

func GetBrowserConfig() BrowserConfig {
	return BrowserConfig{
		Headless:  getEnvBool("BROWSER_HEADLESS", true),
		UserAgent: getEnv("BROWSER_USER_AGENT", ""),
		CDPURL:    getEnv("BROWSER_CDP_URL", ""),
	}
}

func GetLLMConfig() LLMConfig {
	provider := strings.ToLower(getEnv("LLM_PROVIDER", ""))
	apiKey := getEnv("LLM_API_KEY", getEnv("GROQ_API_KEY", ""))
	if provider == "" {
		switch {
		case apiKey != "":
			provider = "groq"
		case os.Getenv("GEMINI_API_KEY") != "":
			provider = "gemini"
		default:
			provider = "none"
		}
	}

	baseURL := getEnv("LLM_BASE_URL", "")
	if baseURL == "" && provider == "groq" {
		baseURL = "https://api.groq.com/openai/v1"
	}

	return LLMConfig{
		Provider:     provider,
		APIKey:       apiKey,
		BaseURL:      baseURL,
		Model:        getEnv("LLM_MODEL", "llama-3.3-70b-versatile"),
		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-1.5-pro"),
		Timeout:      getEnvDuration("LLM_TIMEOUT", 30*time.Second),
	}
}

func GetSMTPConfig() SMTPConfig {
	port, _ := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	return SMTPConfig{
		Host:     getEnv("SMTP_HOST", ""),
		Port:     port,
		Username: getEnv("SMTP_USERNAME", ""),
		Password: getEnv("SMTP_PASSWORD", ""),
		From:     getEnv("SMTP_FROM", ""),
	}
}

func GetEvidenceConfig() EvidenceConfig {
	return EvidenceConfig{
		Bucket: getEnv("EVIDENCE_BUCKET", ""),
		Region: getEnv("AWS_REGION", "us-west-2"),
		Prefix: getEnv("EVIDENCE_PREFIX", "applications"),
	}
}

func GetBatchConfig() BatchConfig {
	maxJobs, err := strconv.Atoi(getEnv("BATCH_MAX_JOBS", "10"))
	if err != nil || maxJobs <= 0 {
		maxJobs = 10
	}
	return BatchConfig{
		MaxJobs:       maxJobs,
		JobInterval:   getEnvDuration("BATCH_JOB_INTERVAL", 5*time.Second),
		NotifyByEmail: getEnvBool("BATCH_NOTIFY_EMAIL", true),
	}
}

func GetAppConfig() AppConfig {
	return AppConfig{
		Port:        getEnv("PORT", "8081"),
		Database:    GetDatabaseConfig(),
		JWTSecret:   getEnv("JWT_SECRET", "your-secret-key"),
		Environment: getEnv("ENVIRONMENT", "development"),
		Browser:     GetBrowserConfig(),
		LLM:         GetLLMConfig(),
		SMTP:        GetSMTPConfig(),
		Evidence:    GetEvidenceConfig(),
		Batch:       GetBatchConfig(),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}
