package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		cfg       Config
		wantLevel zerolog.Level
	}{
		{
			name:      "explicit debug level",
			cfg:       Config{Level: "debug"},
			wantLevel: zerolog.DebugLevel,
		},
		{
			name:      "empty level defaults to info",
			cfg:       Config{},
			wantLevel: zerolog.InfoLevel,
		},
		{
			name:      "garbage level defaults to info",
			cfg:       Config{Level: "loud"},
			wantLevel: zerolog.InfoLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := New(tt.cfg)
			assert.Equal(t, tt.wantLevel, logger.GetLevel())
		})
	}
}

func TestNewWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "info", Out: &buf})

	logger.Info().Str("key", "value").Msg("hello")

	require.NotEmpty(t, buf.String())
	assert.Contains(t, buf.String(), `"key":"value"`)
	assert.Contains(t, buf.String(), `"message":"hello"`)
}

func TestComponentLogger(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Level: "info", Out: &buf})

	logger := ComponentLogger(base, "ingest")
	logger.Info().Msg("tagged")

	assert.Contains(t, buf.String(), `"component":"ingest"`)
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "info", Out: &buf})

	ctx := WithContext(context.Background(), logger)
	FromContext(ctx).Info().Msg("from context")

	assert.Contains(t, buf.String(), "from context")
}

func TestFromContextWithoutLogger(t *testing.T) {
	logger := FromContext(context.Background())

	require.NotNil(t, logger)
	// Must not panic and must not emit anywhere.
	logger.Info().Msg("dropped")
}
