package config

import (
	"github.com/spf13/viper"
)

// Default values for [defaults].
const (
	DefaultLanguage  = "rust"
	DefaultPackage   = "generated"
	DefaultSerde     = "no"
	DefaultIntSize   = "i64"
	DefaultFloatSize = "f64"
)

// Languages lists the supported output languages.
var Languages = []string{"rust", "go"}

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("min_version", "")

	v.SetDefault("defaults.language", DefaultLanguage)
	v.SetDefault("defaults.package", DefaultPackage)
	v.SetDefault("defaults.create_dirs", true)
	v.SetDefault("defaults.write_only_if_changed", true)
	v.SetDefault("defaults.format_command", "") // e.g. "rustfmt --edition 2021"
	v.SetDefault("defaults.serde", DefaultSerde)
	v.SetDefault("defaults.minimal", false)

	v.SetDefault("defaults.parse.default_int_size", DefaultIntSize)
	v.SetDefault("defaults.parse.default_float_size", DefaultFloatSize)
	v.SetDefault("defaults.parse.max_array_size", 0) // 0 = always variable-length
}

// Starter returns the configuration written by `markgen init`: the
// defaults plus one example job.
func Starter() *Config {
	return &Config{
		Defaults: Defaults{
			Language:           DefaultLanguage,
			Package:            DefaultPackage,
			CreateDirs:         true,
			WriteOnlyIfChanged: true,
			Serde:              DefaultSerde,
			Parse: ParseConfig{
				DefaultIntSize:   DefaultIntSize,
				DefaultFloatSize: DefaultFloatSize,
			},
		},
		Jobs: []Job{
			{
				Name:     "config",
				Kind:     KindStruct,
				Source:   "data/config.toml",
				Dest:     "src/generated/config.rs",
				TypeName: "Config",
			},
		},
	}
}
