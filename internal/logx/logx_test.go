package logx

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineWriterPipe(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	lw := NewLineWriter(base, map[string]string{"proc": "ffmpeg"}, zerolog.DebugLevel)
	lw.Pipe(strings.NewReader("frame=1\n\nframe=2\n"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var ev map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &ev))
	assert.Equal(t, "frame=2", ev["message"])
	assert.Equal(t, "ffmpeg", ev["proc"])
	assert.Equal(t, "debug", ev["level"])
}

func TestFromCtxAddsUserAndOp(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	ctx := WithUser(context.Background(), 42, "addsticker")
	l := FromCtx(ctx, base)
	l.Info().Msg("hello")

	var ev map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &ev))
	assert.EqualValues(t, 42, ev["uid"])
	assert.Equal(t, "addsticker", ev["op"])
}

func TestSetupFallsBackToInfo(t *testing.T) {
	l := Setup(Config{Level: "nonsense"}, "test")
	assert.Equal(t, zerolog.InfoLevel, l.GetLevel())
}
