package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RejectsInvalidLevel(t *testing.T) {
	_, err := New(context.Background(), &Config{Level: "loud"})
	assert.Error(t, err)
}

func TestNew_DefaultsToInfo(t *testing.T) {
	log, err := New(context.Background(), &Config{})
	require.NoError(t, err)
	assert.NotNil(t, log.Info())
}

func TestNew_DebugOverridesLevel(t *testing.T) {
	log, err := New(context.Background(), &Config{Level: "error", Debug: true})
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, log.logger.GetLevel())
}

func TestDefaultConfig_ReadsEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("OTEL_SERVICE_NAME", "probe")

	cfg := DefaultConfig()
	assert.Equal(t, "warn", cfg.Level)
	assert.Equal(t, "probe", cfg.OTel.ServiceName)
	assert.False(t, cfg.OTel.Enabled)
}

func TestDefaultOTelConfig_ParsesHeaders(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_LOGS_HEADERS", "x-api-key=secret, x-tenant=acme")

	cfg := DefaultOTelConfig()
	assert.Equal(t, "secret", cfg.Headers["x-api-key"])
	assert.Equal(t, "acme", cfg.Headers["x-tenant"])
}

func TestScoped_AttachesComponentField(t *testing.T) {
	var buf bytes.Buffer

	base := &Impl{logger: zerolog.New(&buf)}
	base.Scoped("agent").Info().Msg("hello")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "agent", line["component"])
	assert.Equal(t, "hello", line["message"])
}

func TestMultiWriter_FansOut(t *testing.T) {
	var first, second bytes.Buffer

	w := NewMultiWriter(&first, &second)

	n, err := w.Write([]byte("payload"))
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	assert.Equal(t, "payload", first.String())
	assert.Equal(t, "payload", second.String())
}

func TestNewTestLogger_Discards(t *testing.T) {
	log := NewTestLogger()
	log.Error().Msg("never seen")
	log.Debug().Str("k", "v").Msg("also never seen")
}
