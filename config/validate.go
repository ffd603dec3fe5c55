package config

import (
	"path/filepath"

	"github.com/teranos/markgen/codegen"
	"github.com/teranos/markgen/codegen/casing"
	"github.com/teranos/markgen/errors"
	"github.com/teranos/markgen/markup"
	"github.com/teranos/markgen/version"
)

// Validate checks that the configuration is valid and that this build of
// markgen satisfies min_version.
func (c *Config) Validate() error {
	ok, err := version.Get().Satisfies(c.MinVersion)
	if err != nil {
		return errors.Wrap(err, "min_version")
	}
	if !ok {
		err := errors.Newf("this project requires markgen >= %s, running %s", c.MinVersion, version.Get().Version)
		return errors.WithHint(err, "upgrade markgen")
	}

	if err := c.Defaults.validate(); err != nil {
		return errors.Wrap(err, "defaults")
	}

	names := make(map[string]bool, len(c.Jobs))
	dests := make(map[string]string, len(c.Jobs))
	for i, j := range c.Jobs {
		if j.Name == "" {
			return errors.Newf("jobs[%d]: name cannot be empty", i)
		}
		if names[j.Name] {
			return errors.Newf("job %q is defined twice", j.Name)
		}
		names[j.Name] = true

		if err := j.validate(); err != nil {
			return errors.Wrapf(err, "job %q", j.Name)
		}

		dest := filepath.Clean(c.ResolvePath(j.Dest))
		if prev, ok := dests[dest]; ok {
			return errors.Newf("jobs %q and %q both write %s", prev, j.Name, j.Dest)
		}
		dests[dest] = j.Name
	}
	return nil
}

func (d Defaults) validate() error {
	if err := validateLanguage(d.Language); err != nil {
		return err
	}
	if _, err := codegen.ParseSerde(d.Serde); err != nil {
		return err
	}
	if d.Package != "" && !casing.IsIdent(d.Package) {
		return errors.NewNameError(d.Package, "package name must be an identifier")
	}
	return d.Parse.validate()
}

func (p ParseConfig) validate() error {
	if _, err := markup.ParseIntSize(p.DefaultIntSize); err != nil {
		return err
	}
	if _, err := markup.ParseFloatSize(p.DefaultFloatSize); err != nil {
		return err
	}
	if p.MaxArraySize < 0 {
		return errors.Newf("parse.max_array_size must be >= 0, got %d", p.MaxArraySize)
	}
	return nil
}

func (j Job) validate() error {
	if !validKind(j.Kind) {
		err := errors.NewUnsupportedError("unknown kind %q", j.Kind)
		return errors.WithHint(err, "kind is one of struct, enum, structs_from_values, enum_from_filenames, structs_from_files")
	}
	if j.Source == "" {
		return errors.New("source cannot be empty")
	}
	if j.Dest == "" {
		return errors.New("dest cannot be empty")
	}
	if problem := casing.IdentProblem(j.TypeName); problem != "" {
		err := errors.NewNameError(j.TypeName, problem)
		return errors.WithHint(err, "type_name must be a valid identifier, e.g. \"Config\"")
	}
	if _, err := markup.ParseFormat(j.Format); err != nil {
		return err
	}
	if j.Language != "" {
		if err := validateLanguage(j.Language); err != nil {
			return err
		}
	}
	if j.Serde != "" {
		if _, err := codegen.ParseSerde(j.Serde); err != nil {
			return err
		}
	}
	if j.Package != "" && !casing.IsIdent(j.Package) {
		return errors.NewNameError(j.Package, "package name must be an identifier")
	}
	if j.Parse != nil {
		if err := j.Parse.validate(); err != nil {
			return err
		}
	}
	return nil
}

func validKind(k Kind) bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

func validateLanguage(lang string) error {
	for _, known := range Languages {
		if lang == known {
			return nil
		}
	}
	err := errors.NewUnsupportedError("unknown language %q", lang)
	return errors.WithHint(err, "language is rust or go")
}
