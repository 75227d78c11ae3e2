package logger_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vytor/vocabflash/internal/logger"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		level logger.Level
		ok    bool
	}{
		{"DEBUG", logger.DEBUG, true},
		{"info", logger.INFO, true},
		{"Warning", logger.WARN, true},
		{" error ", logger.ERROR, true},
		{"verbose", logger.INFO, false},
		{"", logger.INFO, false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level, ok := logger.ParseLevel(tt.input)
			assert.Equal(t, tt.level, level)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestLogger_FieldsAreSorted(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf), logger.WithColors(false), logger.WithLevel(logger.DEBUG))

	log.WithFields(map[string]any{"verdict": "correct", "item_id": 4}).WithSession("abc").Info("graded %s", "answer")

	line := buf.String()
	assert.Contains(t, line, "INFO")
	assert.Contains(t, line, "graded answer item_id=4 session_id=abc verdict=correct\n")
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf), logger.WithColors(false), logger.WithLevel(logger.WARN))

	log.Info("hidden")
	log.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestWithFields_DoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	parent := logger.New(logger.WithOutput(&buf), logger.WithColors(false))
	_ = parent.WithField("child", true)

	parent.Info("plain")
	assert.NotContains(t, buf.String(), "child=")
}

func TestFromContext(t *testing.T) {
	l := logger.New(logger.WithPrefix("ctx"))
	ctx := logger.NewContext(context.Background(), l)
	assert.Same(t, l, logger.FromContext(ctx))
	assert.Same(t, logger.Default(), logger.FromContext(context.Background()))
}
