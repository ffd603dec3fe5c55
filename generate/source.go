package generate

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/teranos/markgen/config"
	"github.com/teranos/markgen/errors"
	"github.com/teranos/markgen/logger"
	"github.com/teranos/markgen/markup"
	"github.com/teranos/markgen/value"
)

// load reads and parses a single-file source. Parsed values are cached by
// content, format and numeric policy; callers always get their own copy.
func (r *Runner) load(res *config.Resolved) (value.Value, error) {
	format := res.Format
	if format == markup.FormatAuto {
		detected, err := markup.FormatFromPath(res.Source)
		if err != nil {
			return value.Value{}, err
		}
		format = detected
	}

	src, err := os.ReadFile(res.Source)
	if err != nil {
		return value.Value{}, errors.Wrapf(err, "failed to read %s", res.Job.Source)
	}

	key := cacheKey(format, res.Options.Parse, src)
	if v, ok := r.cache.Get(key); ok {
		r.logger.Debugw("Source cache hit", logger.FieldSource, res.Job.Source)
		return v.Clone(), nil
	}

	v, err := markup.Parse(src, format, res.Options.Parse)
	if err != nil {
		return value.Value{}, errors.Wrapf(err, "failed to parse %s", res.Job.Source)
	}
	r.cache.Add(key, v)

	r.logger.Debugw("Parsed source",
		logger.FieldSource, res.Job.Source,
		logger.FieldFormat, string(format),
		logger.FieldBytes, len(src))
	return v.Clone(), nil
}

func cacheKey(format markup.Format, opts markup.Options, src []byte) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%s\x00%d\x00", format, opts.IntSize, opts.FloatSize, opts.MaxArraySize)
	h.Write(src)
	return hex.EncodeToString(h.Sum(nil))
}
