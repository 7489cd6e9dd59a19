package config

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCSV(t *testing.T) {
	t.Parallel()

	assert.Nil(t, CSV(""))
	assert.Equal(t, []string{"a:9092", "b:9092"}, CSV(" a:9092 , ,b:9092"))
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SYNC_DRIVER", "")
	t.Setenv("TAX_RATE", "")
	t.Setenv("SERVER_PORT", "not-a-number")
	t.Setenv("CSRF_ENABLED", "")

	cfg := Load()
	assert.Equal(t, "hub", cfg.SyncDriver)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.True(t, cfg.TaxRate.Equal(decimal.RequireFromString("0.08")))
	assert.True(t, cfg.FreeShippingThreshold.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, "storage_events", cfg.KafkaSyncTopic)
	assert.False(t, cfg.CSRFEnabled)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SYNC_DRIVER", "Kafka")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("SHIPPING_COST", "5.99")
	t.Setenv("CANCEL_MODE", "STATUS")
	t.Setenv("CSRF_ENABLED", "true")

	cfg := Load()
	assert.Equal(t, "kafka", cfg.SyncDriver)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.ShippingCost.Equal(decimal.RequireFromString("5.99")))
	assert.Equal(t, "status", cfg.CancelMode)
	assert.True(t, cfg.CSRFEnabled)
}
