package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestApplyDefaults_EmptyConfig(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.Equal(t, DefaultServerHost, cfg.Server.Host)
	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
	assert.Equal(t, 11.0, cfg.Render.Defaults.FontSize)
	assert.Equal(t, []string{DefaultKafkaBroker}, cfg.Kafka.Producer.Brokers)
	assert.Equal(t, cfg.Kafka.Producer.Brokers, cfg.Kafka.Consumer.Brokers)
	assert.Equal(t, "lienpilot-notices", cfg.MinIO.Buckets.Notices)
	assert.Equal(t, "lien_invoices", cfg.Database.InvoiceTable)
	assert.Equal(t, 24*time.Hour, cfg.Redis.DocumentTTL)
	assert.Equal(t, DefaultBatchParallel, cfg.Worker.BatchParallel)
}

func TestApplyDefaults_PreserveExistingValues(t *testing.T) {
	cfg := &Config{}
	cfg.Server.Port = 9999
	cfg.Log.Format = "console"
	cfg.Database.InvoiceTable = "billing.open_invoices"
	ApplyDefaults(cfg)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "billing.open_invoices", cfg.Database.InvoiceTable)
}

func TestApplyDefaults_Nil(t *testing.T) {
	assert.NotPanics(t, func() { ApplyDefaults(nil) })
}

//Personal.AI order the ending
