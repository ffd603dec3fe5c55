package config

import (
	"path/filepath"

	"github.com/teranos/markgen/codegen"
	"github.com/teranos/markgen/errors"
	"github.com/teranos/markgen/markup"
)

// Resolved is a job with every default applied and paths made absolute
// to the config directory.
type Resolved struct {
	Job

	Language           string
	Package            string
	Source             string
	Dest               string
	Format             markup.Format
	CreateDirs         bool
	WriteOnlyIfChanged bool
	FormatCommand      string

	Options codegen.Options
}

// Resolve applies the defaults to j.
func (c *Config) Resolve(j Job) (*Resolved, error) {
	d := c.Defaults
	r := &Resolved{
		Job:                j,
		Language:           firstNonEmpty(j.Language, d.Language, DefaultLanguage),
		Package:            firstNonEmpty(j.Package, d.Package, DefaultPackage),
		Source:             c.ResolvePath(j.Source),
		Dest:               c.ResolvePath(j.Dest),
		CreateDirs:         boolOr(j.CreateDirs, d.CreateDirs),
		WriteOnlyIfChanged: boolOr(j.WriteOnlyIfChanged, d.WriteOnlyIfChanged),
		FormatCommand:      stringOr(j.FormatCommand, d.FormatCommand),
	}

	format, err := markup.ParseFormat(j.Format)
	if err != nil {
		return nil, err
	}
	r.Format = format

	opts, err := c.options(j)
	if err != nil {
		return nil, errors.Wrapf(err, "job %q", j.Name)
	}
	opts.Format = format
	opts.IncludeBase = filepath.Dir(r.Dest)
	opts.PathBase = c.Dir()
	r.Options = opts
	return r, nil
}

// options builds the generation options of a job: the base set (default or
// minimal), then the job's overrides on top.
func (c *Config) options(j Job) (codegen.Options, error) {
	d := c.Defaults

	opts := codegen.DefaultOptions()
	if boolOr(j.Minimal, d.Minimal) {
		opts = codegen.MinimalOptions()
	}

	serde, err := codegen.ParseSerde(firstNonEmpty(j.Serde, d.Serde))
	if err != nil {
		return opts, err
	}
	opts.Serde = serde

	parse := d.Parse
	if p := j.Parse; p != nil {
		parse.DefaultIntSize = firstNonEmpty(p.DefaultIntSize, parse.DefaultIntSize)
		parse.DefaultFloatSize = firstNonEmpty(p.DefaultFloatSize, parse.DefaultFloatSize)
		parse.MaxArraySize = p.MaxArraySize
	}
	if opts.Parse, err = parse.markupOptions(); err != nil {
		return opts, err
	}

	setString(&opts.SourcePathConst, j.SourcePathConst)
	setString(&opts.Structs.DataConst, j.DataConst)
	if j.Derives != nil {
		switch j.Kind {
		case KindEnum, KindEnumFromFilenames:
			opts.Enums.Derives = j.Derives
		default:
			opts.Structs.Derives = j.Derives
		}
	}

	e := &opts.Enums
	setBool(&e.ImplDefault, j.ImplDefault)
	setBool(&e.ImplDisplay, j.ImplDisplay)
	setBool(&e.ImplFromStr, j.ImplFromStr)
	setString(&e.AllVariantsConst, j.AllVariantsConst)
	setString(&e.AllValuesConst, j.AllValuesConst)
	setString(&e.GetValueFn, j.GetValueFn)
	if j.ValuesStructName != "" {
		e.ValuesStructName = j.ValuesStructName
	}
	if j.ValuesDerives != nil {
		e.ValuesStruct.Derives = j.ValuesDerives
	}

	f := &opts.Files
	setString(&f.PathsConst, j.FilePathsConst)
	setString(&f.GetPathFn, j.GetPathFn)
	setString(&f.StringsConst, j.FileStringsConst)
	setString(&f.GetStringFn, j.GetStringFn)
	setString(&f.BytesConst, j.FileBytesConst)
	setString(&f.GetBytesFn, j.GetBytesFn)
	if f.StringsConst != "" && f.GetStringFn == "" && j.GetStringFn == nil {
		f.GetStringFn = "string"
	}
	if f.BytesConst != "" && f.GetBytesFn == "" && j.GetBytesFn == nil {
		f.GetBytesFn = "bytes"
	}
	return opts, nil
}

func (p ParseConfig) markupOptions() (markup.Options, error) {
	intSize, err := markup.ParseIntSize(p.DefaultIntSize)
	if err != nil {
		return markup.Options{}, err
	}
	floatSize, err := markup.ParseFloatSize(p.DefaultFloatSize)
	if err != nil {
		return markup.Options{}, err
	}
	opts := markup.Options{
		IntSize:      intSize,
		FloatSize:    floatSize,
		MaxArraySize: p.MaxArraySize,
	}
	return opts, opts.Validate()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func boolOr(p *bool, fallback bool) bool {
	if p == nil {
		return fallback
	}
	return *p
}

func stringOr(p *string, fallback string) string {
	if p == nil {
		return fallback
	}
	return *p
}

func setBool(dst *bool, p *bool) {
	if p != nil {
		*dst = *p
	}
}

func setString(dst *string, p *string) {
	if p != nil {
		*dst = *p
	}
}
