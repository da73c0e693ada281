package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsToMemory(t *testing.T) {
	t.Setenv("STORAGE_MODE", "")
	t.Setenv("MONGO_URI", "")
	t.Setenv("CURRENCY_RATES", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StorageMemory, cfg.StorageMode)
	assert.Equal(t, 30*time.Minute, cfg.QuoteTTL)
	assert.Equal(t, []time.Duration{time.Second, 5 * time.Second, 30 * time.Second}, cfg.RetryBackoff)
	assert.True(t, cfg.CurrencyRates["EUR"].Equal(mustDecimal(t, "0.92")))
	assert.True(t, cfg.OutboxWorker)
	assert.Empty(t, cfg.KafkaBrokers)
}

func TestLoadMongoRequiresURI(t *testing.T) {
	t.Setenv("STORAGE_MODE", "mongo")
	t.Setenv("MONGO_URI", "")
	_, err := Load()
	assert.ErrorContains(t, err, "MONGO_URI")

	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"quote ttl", "QUOTE_TTL", "soon"},
		{"retry backoff", "RETRY_BACKOFF", "1s,later"},
		{"storage mode", "STORAGE_MODE", "cassandra"},
		{"worker flag", "OUTBOX_WORKER_ENABLED", "maybe"},
		{"rates", "CURRENCY_RATES", "EUR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestParseRates(t *testing.T) {
	rates, err := ParseRates(" eur=0.9 , JPY=150")
	require.NoError(t, err)
	assert.Len(t, rates, 2)
	assert.True(t, rates["EUR"].Equal(mustDecimal(t, "0.9")))

	_, err = ParseRates("EUR=-1")
	assert.Error(t, err)
	_, err = ParseRates("EUR=abc")
	assert.Error(t, err)
}

func TestDev(t *testing.T) {
	assert.True(t, Config{Env: "local"}.Dev())
	assert.False(t, Config{Env: "prod"}.Dev())
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}
