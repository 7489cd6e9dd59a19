package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	ServiceName string
	ServerPort  int
	LogLevel    string

	DatabaseURL string

	// SyncDriver selects the cross-tab channel: hub, kafka or pg.
	SyncDriver       string
	KafkaBrokers     []string
	KafkaSyncTopic   string
	KafkaEventsTopic string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string

	// CSRFEnabled turns on double-submit cookie checks for browser clients.
	CSRFEnabled bool

	CancelMode            string
	ShippingCost          decimal.Decimal
	FreeShippingThreshold decimal.Decimal
	TaxRate               decimal.Decimal
}

// LoadDotenv reads path into the process environment when it exists.
func LoadDotenv(path string) {
	if err := godotenv.Load(path); err != nil {
		log.Printf("Notice: %s not loaded: %v. Using system environment variables", path, err)
	}
}

func Load() Config {
	return Config{
		ServiceName: EnvDefault("SERVICE_NAME", "storefront"),
		ServerPort:  EnvIntDefault("SERVER_PORT", 8080),
		LogLevel:    EnvDefault("LOG_LEVEL", "info"),

		DatabaseURL: EnvDefault("DATABASE_URL", "file:storefront.db"),

		SyncDriver:       strings.ToLower(EnvDefault("SYNC_DRIVER", "hub")),
		KafkaBrokers:     CSV(os.Getenv("KAFKA_BROKERS")),
		KafkaSyncTopic:   EnvDefault("KAFKA_SYNC_TOPIC", "storage_events"),
		KafkaEventsTopic: EnvDefault("KAFKA_EVENTS_TOPIC", "order_events"),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    EnvDefault("ES_INDEX", "product"),

		CSRFEnabled: EnvBoolDefault("CSRF_ENABLED", false),

		CancelMode:            strings.ToLower(EnvDefault("CANCEL_MODE", "delete")),
		ShippingCost:          EnvDecimalDefault("SHIPPING_COST", decimal.NewFromInt(10)),
		FreeShippingThreshold: EnvDecimalDefault("FREE_SHIPPING_THRESHOLD", decimal.NewFromInt(100)),
		TaxRate:               EnvDecimalDefault("TAX_RATE", decimal.RequireFromString("0.08")),
	}
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if os.Getenv(key) != "" {
		return os.Getenv(key)
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func EnvBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func EnvDecimalDefault(key string, def decimal.Decimal) decimal.Decimal {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return def
	}
	return d
}
