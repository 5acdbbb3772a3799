package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config armazena todas as configurações do goficha.
type Config struct {
	// Geral
	Port        string
	Environment string
	LogLevel    string

	// Persistência: "postgres" ou "memory"
	StoreDriver string
	DatabaseURL string
	DBTimeout   time.Duration

	// Cache (Redis). Endereço vazio desliga o cache.
	RedisAddr     string
	CacheTimeout  time.Duration
	CatalogoTTL   time.Duration
	PublicBaseURL string

	// Segurança (JWT)
	JWTSecretKey string
	TokenExpiry  time.Duration

	// Rate Limiting das rotas públicas
	RateLimitMaxRequests int
	RateLimitPeriod      time.Duration

	AllowedOrigins []string
}

// LoadConfig carrega as configurações a partir das variáveis de ambiente.
func LoadConfig() (*Config, error) {
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORE_DRIVER", "postgres")
	v.SetDefault("DB_TIMEOUT_SEC", 5)
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("CACHE_TIMEOUT_SEC", 10)
	v.SetDefault("CATALOGO_CACHE_TTL_SEC", 60)
	v.SetDefault("JWT_EXPIRY_MIN", 60)
	v.SetDefault("RATE_LIMIT_MAX_REQUESTS", 100)
	v.SetDefault("RATE_LIMIT_PERIOD_MIN", 1)
	v.SetDefault("PUBLIC_BASE_URL", "http://localhost:8080")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")

	cfg := &Config{
		Port:        v.GetString("PORT"),
		Environment: v.GetString("ENV"),
		LogLevel:    v.GetString("LOG_LEVEL"),

		StoreDriver: strings.ToLower(v.GetString("STORE_DRIVER")),
		DatabaseURL: v.GetString("DATABASE_URL"),
		DBTimeout:   time.Duration(v.GetInt("DB_TIMEOUT_SEC")) * time.Second,

		RedisAddr:     v.GetString("REDIS_ADDR"),
		CacheTimeout:  time.Duration(v.GetInt("CACHE_TIMEOUT_SEC")) * time.Second,
		CatalogoTTL:   time.Duration(v.GetInt("CATALOGO_CACHE_TTL_SEC")) * time.Second,
		PublicBaseURL: v.GetString("PUBLIC_BASE_URL"),

		JWTSecretKey: v.GetString("JWT_SECRET_KEY"),
		TokenExpiry:  time.Duration(v.GetInt("JWT_EXPIRY_MIN")) * time.Minute,

		RateLimitMaxRequests: v.GetInt("RATE_LIMIT_MAX_REQUESTS"),
		RateLimitPeriod:      time.Duration(v.GetInt("RATE_LIMIT_PERIOD_MIN")) * time.Minute,

		AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreDriver {
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("config: DATABASE_URL deve ser definida quando STORE_DRIVER=postgres")
		}
	case "memory":
	default:
		return fmt.Errorf("config: STORE_DRIVER inválido %q (use postgres ou memory)", c.StoreDriver)
	}
	if c.JWTSecretKey == "" {
		return fmt.Errorf("config: JWT_SECRET_KEY deve ser definida")
	}
	if c.RateLimitMaxRequests <= 0 {
		return fmt.Errorf("config: RATE_LIMIT_MAX_REQUESTS deve ser positivo")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
