package config

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_Defaults(t *testing.T) {
	conf, logs := Get()
	for _, l := range logs {
		assert.NotEqual(t, zerolog.FatalLevel, l.Level, l.Msg)
	}
	assert.Equal(t, "http://localhost:5050", conf.ServerURL)
	assert.Equal(t, zerolog.InfoLevel, conf.LogLevel.AsZeroLogLevel())
	assert.Equal(t, 5*time.Second, conf.PingPeriod)
	assert.Equal(t, "ws://localhost:5050/stream", conf.StreamURL())
}

func TestGet_Env(t *testing.T) {
	t.Setenv("SCREEGO_CLIENT_SERVER_URL", "https://share.example.org/screego/")
	t.Setenv("SCREEGO_CLIENT_LOG_LEVEL", "debug")
	t.Setenv("SCREEGO_CLIENT_FORCE_TURN", "true")

	conf, logs := Get()
	for _, l := range logs {
		assert.NotEqual(t, zerolog.FatalLevel, l.Level, l.Msg)
	}
	assert.True(t, conf.ForceTurn)
	assert.Equal(t, zerolog.DebugLevel, conf.LogLevel.AsZeroLogLevel())
	assert.Equal(t, "wss://share.example.org/screego/stream", conf.StreamURL())
}

func TestGet_InvalidPing(t *testing.T) {
	t.Setenv("SCREEGO_CLIENT_PING_PERIOD", "30s")
	t.Setenv("SCREEGO_CLIENT_PONG_WAIT", "10s")

	_, logs := Get()
	require.NotEmpty(t, logs)
	assert.Equal(t, zerolog.FatalLevel, logs[len(logs)-1].Level)
}

func TestLogLevel_Decode(t *testing.T) {
	var ll LogLevel
	require.NoError(t, ll.Decode("warn"))
	assert.Equal(t, zerolog.WarnLevel, ll.AsZeroLogLevel())

	assert.Error(t, ll.Decode("loud"))
	assert.Equal(t, zerolog.InfoLevel, ll.AsZeroLogLevel())
}
