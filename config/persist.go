package config

import (
	"bytes"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/teranos/markgen/errors"
)

const header = "# markgen project configuration.\n# Run `markgen generate` to regenerate every job below.\n\n"

// Marshal renders cfg as TOML.
func Marshal(cfg *Config) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(header)

	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(cfg); err != nil {
		return nil, errors.Wrap(err, "failed to marshal config")
	}
	return buf.Bytes(), nil
}

// Write persists cfg to path. An existing file is only replaced when force
// is set, and is first copied to path + ".back".
func Write(path string, cfg *Config, force bool) error {
	data, err := Marshal(cfg)
	if err != nil {
		return err
	}

	if _, err := os.Stat(path); err == nil {
		if !force {
			err := errors.Newf("%s already exists", path)
			return errors.WithHint(err, "pass --force to overwrite it")
		}
		if err := createBackup(path); err != nil {
			return errors.Wrap(err, "failed to create backup")
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}

// createBackup copies the current config to path + ".back", replacing any
// older backup.
func createBackup(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "failed to read config for backup")
	}
	if err := os.WriteFile(path+".back", content, 0o644); err != nil {
		return errors.Wrap(err, "failed to create .back")
	}
	return nil
}
