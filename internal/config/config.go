package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Stock policies for add-to-cart.
const (
	StockCheck     = "check"     // check stock only (legacy behaviour)
	StockDecrement = "decrement" // check and decrement in the same transaction
)

type GatewayConfig struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
	Currency     string
}

type Config struct {
	Port     string
	DBDriver string
	DBDSN    string
	SeedDemo bool
	LogFile  string

	Gateway GatewayConfig

	StockPolicy        string
	FailOrphanedOrders bool
	WebhookSecret      string

	RateLimitMax int
	CORSOrigins  string
	RedisAddr    string
	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads an optional .env file (ENV_FILE, default ".env") and then the process environment.
func Load() (Config, error) {
	envFile := getenv("ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, err
	}

	cfg := Config{
		Port:     getenv("PORT", "5000"),
		DBDriver: getenv("DB_DRIVER", "sqlite"),
		DBDSN:    getenv("DB_DSN", "ecommerce.db"),
		SeedDemo: getbool("SEED_DEMO", true),
		LogFile:  os.Getenv("LOG_FILE"),
		Gateway: GatewayConfig{
			BaseURL:      strings.TrimRight(getenv("GATEWAY_BASE_URL", "https://sandbox.cashfree.com"), "/"),
			ClientID:     os.Getenv("GATEWAY_CLIENT_ID"),
			ClientSecret: os.Getenv("GATEWAY_CLIENT_SECRET"),
			Timeout:      getduration("GATEWAY_TIMEOUT", 10*time.Second),
			Currency:     getenv("PAYMENT_CURRENCY", "INR"),
		},
		StockPolicy:        strings.ToLower(getenv("STOCK_POLICY", StockDecrement)),
		FailOrphanedOrders: getbool("FAIL_ORPHANED_ORDERS", true),
		WebhookSecret:      os.Getenv("WEBHOOK_SECRET"),
		RateLimitMax:       getint("RATE_LIMIT_MAX", 120),
		CORSOrigins:        getenv("CORS_ORIGINS", "*"),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		KafkaBrokers:       splitCSV(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:         getenv("KAFKA_TOPIC", "order-events"),
	}

	if cfg.StockPolicy != StockCheck && cfg.StockPolicy != StockDecrement {
		return Config{}, errors.New("STOCK_POLICY must be check or decrement")
	}
	if cfg.DBDriver != "sqlite" && cfg.DBDriver != "pgx" {
		return Config{}, errors.New("DB_DRIVER must be sqlite or pgx")
	}
	return cfg, nil
}

// DecrementStock reports whether add-to-cart consumes stock.
func (c Config) DecrementStock() bool { return c.StockPolicy == StockDecrement }

func getenv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getbool(k string, def bool) bool {
	b, err := strconv.ParseBool(getenv(k, strconv.FormatBool(def)))
	if err != nil {
		return def
	}
	return b
}

func getint(k string, def int) int {
	n, err := strconv.Atoi(getenv(k, strconv.Itoa(def)))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func getduration(k string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(getenv(k, def.String()))
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
