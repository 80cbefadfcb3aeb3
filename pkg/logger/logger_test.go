package logger

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNew_Level(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{" WARN ", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"chatty", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.level, func(t *testing.T) {
			t.Parallel()
			l := New(Config{Level: tt.level, Out: &bytes.Buffer{}})
			assert.Equal(t, tt.want, l.GetLevel())
		})
	}
}

func TestNew_Output(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := New(Config{Level: "info", Out: &buf})
	l.Debug().Msg("hidden")
	l.Info().Str("record", "acct").Msg("replayed")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"record":"acct"`)

	buf.Reset()
	pretty := New(Config{Pretty: true, Out: &buf})
	pretty.Info().Msg("replayed")
	assert.Contains(t, buf.String(), "INF")
	assert.NotContains(t, buf.String(), `"level"`)
}
