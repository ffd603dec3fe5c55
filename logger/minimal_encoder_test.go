package logger

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func encode(t *testing.T, enc zapcore.Encoder, ent zapcore.Entry, fields ...zapcore.Field) string {
	t.Helper()
	buf, err := enc.EncodeEntry(ent, fields)
	require.NoError(t, err)
	defer buf.Free()
	return buf.String()
}

// The console encoder must never silently drop a field.
func TestMinimalEncoderKeepsEveryField(t *testing.T) {
	enc := newMinimalEncoder(false)
	ent := zapcore.Entry{
		Level:      zapcore.InfoLevel,
		Time:       time.Date(2024, 1, 2, 13, 4, 35, 0, time.UTC),
		LoggerName: "generate",
		Message:    "Wrote file",
	}

	out := encode(t, enc, ent,
		zap.String(FieldJob, "colours"),
		zap.String(FieldDest, "src/colours.rs"),
		zap.Int(FieldCount, 3),
		zap.Bool("changed", true),
		zap.Float64("ratio", 0.5),
		zap.Strings("kinds", []string{"struct", "enum"}),
		zap.Error(nil),
	)

	assert.True(t, strings.HasPrefix(out, "13:04:35  generate  Wrote file  "), out)
	for _, want := range []string{
		"job=colours",
		"dest=src/colours.rs",
		"count=3",
		"changed=true",
		"ratio=0.5",
		"kinds=[struct enum]",
	} {
		assert.Contains(t, out, want)
	}
	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestMinimalEncoderLevels(t *testing.T) {
	enc := newMinimalEncoder(false)
	ent := zapcore.Entry{Time: time.Now(), Message: "msg"}

	ent.Level = zapcore.InfoLevel
	assert.NotContains(t, encode(t, enc, ent), "INFO")

	ent.Level = zapcore.WarnLevel
	assert.Contains(t, encode(t, enc, ent), "  WARN  msg")

	ent.Level = zapcore.ErrorLevel
	assert.Contains(t, encode(t, enc, ent), "  ERROR  msg")
}

func TestMinimalEncoderWithFields(t *testing.T) {
	base := newMinimalEncoder(false)
	child := base.Clone()
	zap.String(FieldJob, "levels").AddTo(child)

	ent := zapcore.Entry{Level: zapcore.InfoLevel, Time: time.Now(), Message: "Parsed source"}
	out := encode(t, child, ent, zap.String(FieldFormat, "ron"))

	assert.Contains(t, out, "job=levels format=ron")
	assert.NotContains(t, encode(t, base, ent), "job=levels", "clone must not leak into parent")
}

func TestMinimalEncoderColors(t *testing.T) {
	ent := zapcore.Entry{Level: zapcore.WarnLevel, Time: time.Now(), Message: "msg"}

	assert.Contains(t, encode(t, newMinimalEncoder(true), ent), colorReset)
	assert.NotContains(t, encode(t, newMinimalEncoder(false), ent), "\x1b[")
}
