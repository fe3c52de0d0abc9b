package bend

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggerWarnings(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	defer SetLogger(nil)

	r, a, _ := linkedPair(t)
	err := r.Unlink(a.Segment(0).ID())
	assert.ErrorIs(t, err, ErrNotLinked)
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), ErrNotLinked.Error())

	buf.Reset()
	a.Recompute()
	assert.Contains(t, buf.String(), "recomputed spline tables")
}

func TestLoggerSilentByDefault(t *testing.T) {
	SetLogger(nil)
	assert.False(t, Logger().Enabled(t.Context(), slog.LevelError))
}
