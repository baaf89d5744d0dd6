package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_StructuredOutput(t *testing.T) {
	var buf bytes.Buffer
	log := newWithWriter(&buf, "storefront-api", "debug", false)

	log.Info().Int64("order_id", 42).Msg("order created")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "storefront-api", line["service"])
	assert.Equal(t, "order created", line["message"])
	assert.EqualValues(t, 42, line["order_id"])
}

func TestNew_BadLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := newWithWriter(&buf, "svc", "loud", false)

	assert.Equal(t, zerolog.InfoLevel, log.GetLevel())
	log.Debug().Msg("hidden")
	assert.Zero(t, buf.Len())
}
