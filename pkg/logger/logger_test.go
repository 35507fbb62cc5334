package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONConComponente(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Env: "production", Level: "info", Writer: &buf}).Named("movement_engine")

	log.Debug().Msg("no se escribe")
	log.Info().Str("operation_id", "op-1").Msg("operación aplicada")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "stockmaster-api", line["service"])
	assert.Equal(t, "movement_engine", line["component"])
	assert.Equal(t, "op-1", line["operation_id"])
	assert.Equal(t, "info", line["level"])
}

func TestParseLevel_Invalido(t *testing.T) {
	assert.Equal(t, "info", parseLevel("ruidoso").String())
	assert.Equal(t, "warn", parseLevel("warn").String())
}

func TestNamed_Nil(t *testing.T) {
	var l *Logger
	assert.NotPanics(t, func() { l.Named("x").Info().Msg("descartado") })
}
