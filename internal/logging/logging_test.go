package logging

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
		err  bool
	}{
		{"", zerolog.WarnLevel, false},
		{"debug", zerolog.DebugLevel, false},
		{" INFO ", zerolog.InfoLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"chatty", zerolog.WarnLevel, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.err, err != nil, tt.in)
	}
}

func TestSetup_JSON(t *testing.T) {
	prev := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })
	var buf bytes.Buffer
	l, err := Setup(Options{Level: "info", JSON: true, Out: &buf})
	require.NoError(t, err)

	l.Debug().Msg("hidden")
	l.Info().Str("seq", "1").Msg("scan started")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "scan started", line["message"])
	assert.Equal(t, "info", line["level"])
	assert.NotContains(t, buf.String(), "hidden")
}

func TestSetup_ConsoleNoColor(t *testing.T) {
	prev := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })
	var buf bytes.Buffer
	l, err := Setup(Options{Level: "bogus", NoColor: true, Out: &buf})
	require.Error(t, err)
	l.Warn().Msg("backend unreachable")
	assert.Contains(t, buf.String(), "backend unreachable")
	assert.NotContains(t, buf.String(), "\x1b[")
}

func TestOpenFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "cg.log")
	f, err := OpenFile(p)
	require.NoError(t, err)
	_, err = f.WriteString("x")
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.FileExists(t, p)
}
