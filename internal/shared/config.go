package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Sample data modes.
const (
	SampleMerge    = "merge"    // API places followed by sample places
	SampleFallback = "fallback" // sample places only when nothing else is available
	SampleOff      = "off"
)

// RequestTimeout bounds every request served by the web router. The API
// read budget is kept below it so fallbacks still render.
const RequestTimeout = 15 * time.Second

const maxReadBudget = RequestTimeout - 3*time.Second

type Config struct {
	AppEnv       string
	HTTPAddr     string
	MetricsAddr  string
	APIBase      string
	APIRPS       int
	APITimeout   time.Duration
	ReadBudget   time.Duration
	OutageHold   time.Duration
	MySQLDSN     string
	RedisAddr    string
	RedisDB      int
	RedisPass    string
	CacheTTL     time.Duration
	SampleData   string
	JWTSecret    string
	CookieSecure bool
	WarmWorkers  int
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:       env("APP_ENV", "prod"),
		HTTPAddr:     env("HTTP_ADDR", ":8000"),
		MetricsAddr:  env("METRICS_ADDR", ""),
		APIBase:      strings.TrimRight(env("HBNB_API_URL", "http://localhost:5000/api/v1"), "/"),
		APIRPS:       atoi("API_RPS", 20),
		APITimeout:   time.Duration(atoi("API_TIMEOUT_SECONDS", 10)) * time.Second,
		ReadBudget:   time.Duration(atoi("API_READ_BUDGET_SECONDS", 8)) * time.Second,
		OutageHold:   time.Duration(atoi("API_OUTAGE_HOLD_SECONDS", 5)) * time.Second,
		MySQLDSN:     env("MYSQL_DSN", "root:root@tcp(localhost:3306)/hbnb_web?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:    env("REDIS_ADDR", "localhost:6379"),
		RedisPass:    env("REDIS_PASSWORD", ""),
		RedisDB:      atoi("REDIS_DB", 0),
		CacheTTL:     time.Duration(atoi("CACHE_TTL_SECONDS", 60)) * time.Second,
		SampleData:   strings.ToLower(env("SAMPLE_DATA", SampleMerge)),
		JWTSecret:    env("JWT_SECRET", ""),
		CookieSecure: env("COOKIE_SECURE", "false") == "true",
		WarmWorkers:  atoi("WARM_WORKERS", 8),
	}
	switch c.SampleData {
	case SampleMerge, SampleFallback, SampleOff:
	default:
		log.Warn().Str("value", c.SampleData).Msg("unknown SAMPLE_DATA, using merge")
		c.SampleData = SampleMerge
	}
	if c.ReadBudget <= 0 || c.ReadBudget > maxReadBudget {
		log.Warn().Dur("value", c.ReadBudget).Dur("max", maxReadBudget).Msg("API_READ_BUDGET_SECONDS out of range, clamping")
		c.ReadBudget = maxReadBudget
	}
	if c.OutageHold < 0 {
		c.OutageHold = 0
	}
	if c.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET is empty; access tokens are read without signature checks")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
