package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderGigaChat = "gigachat"
	ProviderOpenAI   = "openai"
	ProviderNone     = "none"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Catalog  CatalogConfig
	Matcher  MatcherConfig
	Arbiter  ArbiterConfig
	LLM      LLMConfig
	GigaChat GigaChatConfig
	OpenAI   OpenAIConfig
	Audit    AuditConfig
	Cache    CacheConfig
	Output   OutputConfig
	Logger   LoggerConfig
}

type LoggerConfig struct {
	Level string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	AllowOrigins string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN returns the key/value connection string used by pgxpool.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// URL returns the postgres:// form required by the migration driver.
func (c DatabaseConfig) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     c.Host + ":" + c.Port,
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(c.SSLMode),
	}
	return u.String()
}

type CatalogConfig struct {
	Path string
}

type MatcherConfig struct {
	FuzzyThreshold int
	FuzzyBonus     int
	FuzzyMinLength int
}

type ArbiterConfig struct {
	// AcceptanceThreshold is the minimum keyword score for a catalog answer
	// that the generative proposal agrees with.
	AcceptanceThreshold int
	// SoloThreshold applies when the generative fallback failed outright.
	SoloThreshold int
}

type LLMConfig struct {
	Provider string
	Timeout  time.Duration
	Retries  int
	CacheTTL time.Duration
}

type GigaChatConfig struct {
	APIKey             string
	Scope              string
	Model              string
	InsecureSkipVerify bool
}

type OpenAIConfig struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float32
}

type AuditConfig struct {
	Enabled       bool
	Table         string
	WaitTimeout   time.Duration
	WriteTimeout  time.Duration
	RunMigrations bool
}

type CacheConfig struct {
	Driver        string // none, memory or redis
	MaxEntries    int
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

type OutputConfig struct {
	// OptionalFieldPolicy is "omit" or "placeholder".
	OptionalFieldPolicy string
	Placeholder         string
}

func Load() (*Config, error) {
	// Try to load .env file from current directory or project root
	envFiles := []string{".env", "../.env", "../../.env"}
	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	readTimeout, _ := strconv.Atoi(getEnv("SERVER_READ_TIMEOUT", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("SERVER_WRITE_TIMEOUT", "30"))
	acceptance, _ := strconv.Atoi(getEnv("ACCEPTANCE_THRESHOLD", "1"))
	solo, _ := strconv.Atoi(getEnv("SOLO_THRESHOLD", "2"))
	fuzzyThreshold, _ := strconv.Atoi(getEnv("FUZZY_THRESHOLD", "85"))
	fuzzyBonus, _ := strconv.Atoi(getEnv("FUZZY_BONUS", "1"))
	fuzzyMinLength, _ := strconv.Atoi(getEnv("FUZZY_MIN_LENGTH", "4"))
	fallbackTimeout, _ := strconv.Atoi(getEnv("FALLBACK_TIMEOUT_SECONDS", "8"))
	fallbackRetries, _ := strconv.Atoi(getEnv("FALLBACK_RETRIES", "1"))
	cacheTTL, _ := strconv.Atoi(getEnv("CACHE_TTL_MINUTES", "60"))
	cacheMax, _ := strconv.Atoi(getEnv("CACHE_MAX_ENTRIES", "1000"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	auditWait, _ := strconv.Atoi(getEnv("AUDIT_WAIT_MS", "250"))
	auditWrite, _ := strconv.Atoi(getEnv("AUDIT_WRITE_TIMEOUT_SECONDS", "5"))
	temperature, _ := strconv.ParseFloat(getEnv("OPENAI_TEMPERATURE", "0.7"), 32)

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  time.Duration(readTimeout) * time.Second,
			WriteTimeout: time.Duration(writeTimeout) * time.Second,
			AllowOrigins: getEnv("CORS_ALLOW_ORIGINS", "*"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "care_advisor"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Catalog: CatalogConfig{
			Path: getEnv("CATALOG_PATH", "configs/catalog.yaml"),
		},
		Matcher: MatcherConfig{
			FuzzyThreshold: fuzzyThreshold,
			FuzzyBonus:     fuzzyBonus,
			FuzzyMinLength: fuzzyMinLength,
		},
		Arbiter: ArbiterConfig{
			AcceptanceThreshold: acceptance,
			SoloThreshold:       solo,
		},
		LLM: LLMConfig{
			Provider: strings.ToLower(getEnv("LLM_PROVIDER", ProviderOpenAI)),
			Timeout:  time.Duration(fallbackTimeout) * time.Second,
			Retries:  fallbackRetries,
			CacheTTL: time.Duration(cacheTTL) * time.Minute,
		},
		GigaChat: GigaChatConfig{
			APIKey:             getEnv("GIGACHAT_API_KEY", ""),
			Scope:              getEnv("GIGACHAT_SCOPE", "GIGACHAT_API_PERS"),
			Model:              getEnv("GIGACHAT_MODEL", "GigaChat"),
			InsecureSkipVerify: getEnv("GIGACHAT_INSECURE_SKIP_VERIFY", "false") == "true",
		},
		OpenAI: OpenAIConfig{
			APIKey:      getEnv("OPENAI_API_KEY", ""),
			Model:       getEnv("OPENAI_MODEL", "gpt-4"),
			BaseURL:     getEnv("OPENAI_BASE_URL", ""),
			Temperature: float32(temperature),
		},
		Audit: AuditConfig{
			Enabled:       getEnv("AUDIT_ENABLED", "true") == "true",
			Table:         getEnv("AUDIT_TABLE", "advisory_log"),
			WaitTimeout:   time.Duration(auditWait) * time.Millisecond,
			WriteTimeout:  time.Duration(auditWrite) * time.Second,
			RunMigrations: getEnv("AUDIT_RUN_MIGRATIONS", "true") == "true",
		},
		Cache: CacheConfig{
			Driver:        strings.ToLower(getEnv("CACHE_DRIVER", "memory")),
			MaxEntries:    cacheMax,
			RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       redisDB,
			RedisPrefix:   getEnv("REDIS_PREFIX", "advisor:"),
		},
		Output: OutputConfig{
			OptionalFieldPolicy: strings.ToLower(getEnv("OPTIONAL_FIELD_POLICY", "omit")),
			Placeholder:         getEnv("OPTIONAL_FIELD_PLACEHOLDER", "Not available"),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the advisory core cannot run with.
func (c *Config) Validate() error {
	if c.Catalog.Path == "" {
		return fmt.Errorf("CATALOG_PATH must be set")
	}
	if c.Arbiter.AcceptanceThreshold < 1 {
		return fmt.Errorf("ACCEPTANCE_THRESHOLD must be >= 1, got %d", c.Arbiter.AcceptanceThreshold)
	}
	if c.Arbiter.SoloThreshold < c.Arbiter.AcceptanceThreshold {
		return fmt.Errorf("SOLO_THRESHOLD (%d) must be >= ACCEPTANCE_THRESHOLD (%d)",
			c.Arbiter.SoloThreshold, c.Arbiter.AcceptanceThreshold)
	}
	if c.Matcher.FuzzyThreshold < 0 || c.Matcher.FuzzyThreshold > 100 {
		return fmt.Errorf("FUZZY_THRESHOLD must be within 0..100, got %d", c.Matcher.FuzzyThreshold)
	}
	switch c.LLM.Provider {
	case ProviderGigaChat, ProviderOpenAI, ProviderNone:
	default:
		return fmt.Errorf("unsupported LLM_PROVIDER %q", c.LLM.Provider)
	}
	if c.LLM.Timeout <= 0 {
		return fmt.Errorf("FALLBACK_TIMEOUT_SECONDS must be positive")
	}
	switch c.Output.OptionalFieldPolicy {
	case "omit", "placeholder":
	default:
		return fmt.Errorf("OPTIONAL_FIELD_POLICY must be omit or placeholder, got %q", c.Output.OptionalFieldPolicy)
	}
	switch c.Cache.Driver {
	case "none", "memory", "redis":
	default:
		return fmt.Errorf("unsupported CACHE_DRIVER %q", c.Cache.Driver)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
