package logger

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

const (
	colorReset = "\x1b[0m"
	colorBold  = "\x1b[1m"
	colorDim   = "\x1b[2m"
	colorGreen = "\x1b[38;5;108m"
	colorAmber = "\x1b[38;5;179m"
	colorRed   = "\x1b[38;5;167m"
	colorRedBg = "\x1b[48;5;52m"
)

var pool = buffer.NewPool()

// minimalEncoder is a compact console encoder:
//
//	13:04:35  generate  Wrote file  job=colours dest=src/colours.rs
//
// Every field is printed as key=value. Fields attached with With() come
// first in key order, followed by the entry's own fields in call order.
type minimalEncoder struct {
	*zapcore.MapObjectEncoder
	colors bool
}

func newMinimalEncoder(colors bool) *minimalEncoder {
	return &minimalEncoder{
		MapObjectEncoder: zapcore.NewMapObjectEncoder(),
		colors:           colors,
	}
}

func (enc *minimalEncoder) Clone() zapcore.Encoder {
	clone := newMinimalEncoder(enc.colors)
	for k, v := range enc.Fields {
		clone.Fields[k] = v
	}
	return clone
}

func (enc *minimalEncoder) paint(color, s string) string {
	if !enc.colors || s == "" {
		return s
	}
	return color + s + colorReset
}

func (enc *minimalEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	final := pool.Get()

	final.AppendString(enc.paint(colorDim, ent.Time.Format("15:04:05")))

	if label := enc.levelLabel(ent.Level); label != "" {
		final.AppendString("  ")
		final.AppendString(label)
	}

	if ent.LoggerName != "" {
		final.AppendString("  ")
		final.AppendString(enc.paint(colorGreen, ent.LoggerName))
	}

	final.AppendString("  ")
	final.AppendString(ent.Message)

	if pairs := enc.pairs(fields); len(pairs) > 0 {
		final.AppendString("  ")
		final.AppendString(strings.Join(pairs, " "))
	}

	final.AppendString("\n")
	return final, nil
}

// levelLabel is empty for info and debug entries.
func (enc *minimalEncoder) levelLabel(level zapcore.Level) string {
	switch {
	case level == zapcore.WarnLevel:
		return enc.paint(colorBold+colorAmber, "WARN")
	case level >= zapcore.ErrorLevel:
		return enc.paint(colorBold+colorRedBg+colorRed, level.CapitalString())
	}
	return ""
}

func (enc *minimalEncoder) pairs(fields []zapcore.Field) []string {
	var out []string

	keys := make([]string, 0, len(enc.Fields))
	for k := range enc.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		out = append(out, enc.pair(k, enc.Fields[k]))
	}

	for _, f := range fields {
		m := zapcore.NewMapObjectEncoder()
		f.AddTo(m)
		if v, ok := m.Fields[f.Key]; ok {
			out = append(out, enc.pair(f.Key, v))
		}
	}
	return out
}

func (enc *minimalEncoder) pair(key string, v interface{}) string {
	return enc.paint(colorDim, key+"=") + fmt.Sprint(v)
}
