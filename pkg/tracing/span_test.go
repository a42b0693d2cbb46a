package tracing

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpanTree(t *testing.T) {
	ctx, root := Start(context.Background(), "refresh", "v-1")
	root.SetAttr("trigger", "forced")

	_, list := StartChild(ctx, "list_jobs")
	list.End(nil)
	_, build := StartChild(ctx, "build_snapshot")
	build.End(errors.New("boom"))
	root.End(nil)

	assert.Same(t, root, FromContext(ctx))
	assert.Equal(t, "v-1", build.TraceID)
	phases := root.Phases()
	assert.Len(t, phases, 2)
	assert.Contains(t, phases, "list_jobs")

	var buf bytes.Buffer
	root.Log(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "trigger=forced")
	assert.Contains(t, lines[2], "level=WARN")
	assert.Contains(t, lines[2], "error=boom")
}

func TestStartChildWithoutParent(t *testing.T) {
	ctx, span := StartChild(context.Background(), "orphan")
	assert.Empty(t, span.TraceID)
	assert.Same(t, span, FromContext(ctx))
	assert.Nil(t, FromContext(context.Background()))
}
