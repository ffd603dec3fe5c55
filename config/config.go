// Package config loads markgen project configuration.
//
// A project is described by a markgen.toml file holding shared [defaults]
// and a list of [[jobs]]. Each job turns one source (a file or a directory)
// into one generated file. The file is found by walking upward from the
// working directory, like git finds its repository.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/teranos/markgen/errors"
	"github.com/teranos/markgen/logger"
)

// FileName is the name of the project configuration file.
const FileName = "markgen.toml"

// EnvPrefix prefixes environment overrides, e.g. MARKGEN_DEFAULTS_LANGUAGE.
const EnvPrefix = "MARKGEN"

// Config is a parsed markgen.toml.
type Config struct {
	// MinVersion is the oldest markgen release able to run this project.
	MinVersion string   `mapstructure:"min_version" toml:"min_version,omitempty"`
	Defaults   Defaults `mapstructure:"defaults" toml:"defaults"`
	Jobs       []Job    `mapstructure:"jobs" toml:"jobs"`

	path string
}

// Defaults apply to every job that does not override them.
type Defaults struct {
	Language           string      `mapstructure:"language" toml:"language"`
	Package            string      `mapstructure:"package" toml:"package"`
	CreateDirs         bool        `mapstructure:"create_dirs" toml:"create_dirs"`
	WriteOnlyIfChanged bool        `mapstructure:"write_only_if_changed" toml:"write_only_if_changed"`
	FormatCommand      string      `mapstructure:"format_command" toml:"format_command"`
	Serde              string      `mapstructure:"serde" toml:"serde"`
	Minimal            bool        `mapstructure:"minimal" toml:"minimal,omitempty"`
	Parse              ParseConfig `mapstructure:"parse" toml:"parse"`
}

// ParseConfig is the numeric policy used when reading sources.
type ParseConfig struct {
	DefaultIntSize   string `mapstructure:"default_int_size" toml:"default_int_size"`
	DefaultFloatSize string `mapstructure:"default_float_size" toml:"default_float_size"`
	MaxArraySize     int    `mapstructure:"max_array_size" toml:"max_array_size"`
}

// Kind selects what a job generates.
type Kind string

const (
	KindStruct            Kind = "struct"
	KindEnum              Kind = "enum"
	KindStructsFromValues Kind = "structs_from_values"
	KindEnumFromFilenames Kind = "enum_from_filenames"
	KindStructsFromFiles  Kind = "structs_from_files"
)

// Kinds lists every job kind.
var Kinds = []Kind{KindStruct, KindEnum, KindStructsFromValues, KindEnumFromFilenames, KindStructsFromFiles}

// ReadsDirectory reports whether the job's source is a directory.
func (k Kind) ReadsDirectory() bool {
	return k == KindEnumFromFilenames || k == KindStructsFromFiles
}

// Job is one generation task. Pointer fields are unset unless the job
// overrides the corresponding default.
type Job struct {
	Name     string `mapstructure:"name" toml:"name"`
	Kind     Kind   `mapstructure:"kind" toml:"kind"`
	Source   string `mapstructure:"source" toml:"source"`
	Dest     string `mapstructure:"dest" toml:"dest"`
	TypeName string `mapstructure:"type_name" toml:"type_name"`
	Format   string `mapstructure:"format" toml:"format,omitempty"`
	Language string `mapstructure:"language" toml:"language,omitempty"`
	Package  string `mapstructure:"package" toml:"package,omitempty"`
	Serde    string `mapstructure:"serde" toml:"serde,omitempty"`

	CreateDirs         *bool        `mapstructure:"create_dirs" toml:"create_dirs,omitempty"`
	WriteOnlyIfChanged *bool        `mapstructure:"write_only_if_changed" toml:"write_only_if_changed,omitempty"`
	FormatCommand      *string      `mapstructure:"format_command" toml:"format_command,omitempty"`
	Minimal            *bool        `mapstructure:"minimal" toml:"minimal,omitempty"`
	Parse              *ParseConfig `mapstructure:"parse" toml:"parse,omitempty"`

	SourcePathConst *string  `mapstructure:"source_path_const" toml:"source_path_const,omitempty"`
	Derives         []string `mapstructure:"derives" toml:"derives,omitempty"`
	DataConst       *string  `mapstructure:"data_const" toml:"data_const,omitempty"`

	ImplDefault      *bool    `mapstructure:"impl_default" toml:"impl_default,omitempty"`
	ImplDisplay      *bool    `mapstructure:"impl_display" toml:"impl_display,omitempty"`
	ImplFromStr      *bool    `mapstructure:"impl_from_str" toml:"impl_from_str,omitempty"`
	AllVariantsConst *string  `mapstructure:"all_variants_const" toml:"all_variants_const,omitempty"`
	AllValuesConst   *string  `mapstructure:"all_values_const" toml:"all_values_const,omitempty"`
	GetValueFn       *string  `mapstructure:"get_value_fn" toml:"get_value_fn,omitempty"`
	ValuesStructName string   `mapstructure:"values_struct_name" toml:"values_struct_name,omitempty"`
	ValuesDerives    []string `mapstructure:"values_derives" toml:"values_derives,omitempty"`

	FilePathsConst   *string `mapstructure:"file_paths_const" toml:"file_paths_const,omitempty"`
	GetPathFn        *string `mapstructure:"get_path_fn" toml:"get_path_fn,omitempty"`
	FileStringsConst *string `mapstructure:"file_strings_const" toml:"file_strings_const,omitempty"`
	GetStringFn      *string `mapstructure:"get_string_fn" toml:"get_string_fn,omitempty"`
	FileBytesConst   *string `mapstructure:"file_bytes_const" toml:"file_bytes_const,omitempty"`
	GetBytesFn       *string `mapstructure:"get_bytes_fn" toml:"get_bytes_fn,omitempty"`
}

// Path returns the file the config was loaded from, or "" for a config
// built in memory.
func (c *Config) Path() string {
	return c.path
}

// Dir returns the directory relative job paths are resolved against.
func (c *Config) Dir() string {
	if c.path == "" {
		return "."
	}
	return filepath.Dir(c.path)
}

// ResolvePath makes p relative to the config directory unless it is absolute.
func (c *Config) ResolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Dir(), p)
}

// Job returns the job with the given name.
func (c *Config) Job(name string) (Job, bool) {
	for _, j := range c.Jobs {
		if j.Name == name {
			return j, true
		}
	}
	return Job{}, false
}

// Select returns the named jobs in config order, or every job when names
// is empty.
func (c *Config) Select(names []string) ([]Job, error) {
	if len(names) == 0 {
		return c.Jobs, nil
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		if _, ok := c.Job(n); !ok {
			err := errors.Newf("no job named %q in %s", n, c.displayPath())
			return nil, errors.WithHintf(err, "configured jobs: %s", strings.Join(c.jobNames(), ", "))
		}
		want[n] = true
	}
	var jobs []Job
	for _, j := range c.Jobs {
		if want[j.Name] {
			jobs = append(jobs, j)
		}
	}
	return jobs, nil
}

func (c *Config) jobNames() []string {
	names := make([]string, len(c.Jobs))
	for i, j := range c.Jobs {
		names[i] = j.Name
	}
	return names
}

func (c *Config) displayPath() string {
	if c.path == "" {
		return FileName
	}
	return c.path
}

// Load reads the project configuration. An explicit path wins; otherwise
// markgen.toml is searched for upward from the working directory. A .env
// file in the working directory is loaded first so it can feed
// MARKGEN_ overrides.
func Load(explicitPath string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	path := explicitPath
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "failed to determine working directory")
		}
		path = FindProjectConfig(wd)
		if path == "" {
			err := errors.Newf("no %s found in %s or any parent directory", FileName, wd)
			return nil, errors.WithHint(err, "run `markgen init` to create one, or pass --config")
		}
	}
	return LoadFromFile(path)
}

// LoadFromFile reads one configuration file with defaults and MARKGEN_
// environment overrides applied.
func LoadFromFile(configPath string) (*Config, error) {
	abs, err := filepath.Abs(configPath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to resolve config path %s", configPath)
	}

	v := newViper()
	v.SetConfigFile(abs)
	v.SetConfigType("toml")

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", configPath)
	}

	cfg, err := LoadWithViper(v)
	if err != nil {
		return nil, errors.Wrapf(err, "config file %s", configPath)
	}
	cfg.path = abs

	logger.ComponentLogger("config").Debugw("Loaded config",
		logger.FieldConfig, abs,
		logger.FieldCount, len(cfg.Jobs))
	return cfg, nil
}

// LoadWithViper decodes configuration from a prepared Viper instance.
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	return &cfg, nil
}

// newViper returns a Viper instance with defaults and environment binding.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// loadDotEnv loads KEY=value pairs from path into the environment. A
// missing file is not an error. Variables already set are kept.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return errors.Wrapf(err, "failed to load %s", path)
	}
	return nil
}

// FindProjectConfig walks up from dir looking for markgen.toml and returns
// its path, or "" when none is found.
func FindProjectConfig(dir string) string {
	for {
		candidate := filepath.Join(dir, FileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
