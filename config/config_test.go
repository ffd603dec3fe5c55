package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/markgen/codegen"
	"github.com/teranos/markgen/errors"
	"github.com/teranos/markgen/markup"
	"github.com/teranos/markgen/value"
)

const sampleConfig = `
[defaults]
language = "rust"
serde = "serialize"

[defaults.parse]
default_int_size = "i32"

[[jobs]]
name = "config"
kind = "struct"
source = "data/config.toml"
dest = "src/gen/config.rs"
type_name = "Config"

[[jobs]]
name = "colors"
kind = "enum"
source = "data/colors.yaml"
dest = "gen/colors.go"
type_name = "Color"
language = "go"
package = "colors"
derives = ["Clone", "Copy"]
impl_from_str = false
all_values_const = ""
create_dirs = false

[jobs.parse]
max_array_size = 4
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, sampleConfig)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, path, cfg.Path())
	assert.Equal(t, "rust", cfg.Defaults.Language)
	assert.Equal(t, "generated", cfg.Defaults.Package, "unset keys take their default")
	assert.True(t, cfg.Defaults.CreateDirs)
	assert.Equal(t, "i32", cfg.Defaults.Parse.DefaultIntSize)
	assert.Equal(t, "f64", cfg.Defaults.Parse.DefaultFloatSize)

	require.Len(t, cfg.Jobs, 2)
	colors := cfg.Jobs[1]
	assert.Equal(t, KindEnum, colors.Kind)
	assert.Equal(t, []string{"Clone", "Copy"}, colors.Derives)
	require.NotNil(t, colors.ImplFromStr)
	assert.False(t, *colors.ImplFromStr)
	require.NotNil(t, colors.AllValuesConst)
	assert.Empty(t, *colors.AllValuesConst)
	assert.Nil(t, colors.ImplDisplay)
	require.NotNil(t, colors.Parse)
	assert.Equal(t, 4, colors.Parse.MaxArraySize)
}

func TestEnvironmentOverride(t *testing.T) {
	t.Setenv("MARKGEN_DEFAULTS_LANGUAGE", "go")
	cfg, err := LoadFromFile(writeConfig(t, sampleConfig))
	require.NoError(t, err)
	assert.Equal(t, "go", cfg.Defaults.Language)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, loadDotEnv(filepath.Join(dir, ".env")), "a missing file is fine")

	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("MARKGEN_TEST_DOTENV=loaded\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("MARKGEN_TEST_DOTENV") })

	require.NoError(t, loadDotEnv(path))
	assert.Equal(t, "loaded", os.Getenv("MARKGEN_TEST_DOTENV"))
}

func TestFindProjectConfig(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	assert.Empty(t, FindProjectConfig(nested))

	path := filepath.Join(root, FileName)
	require.NoError(t, os.WriteFile(path, []byte(""), 0o644))
	assert.Equal(t, path, FindProjectConfig(nested))
}

func TestSelect(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	all, err := cfg.Select(nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	jobs, err := cfg.Select([]string{"colors"})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "colors", jobs[0].Name)

	_, err = cfg.Select([]string{"nope"})
	require.Error(t, err)
	assert.Contains(t, errors.FlattenHints(err), "config, colors")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Starter()
		cfg.Jobs = append(cfg.Jobs, Job{
			Name: "files", Kind: KindEnumFromFilenames, Source: "data/files",
			Dest: "src/generated/files.rs", TypeName: "Files",
		})
		return cfg
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		kind   error
		msg    string
	}{
		{"empty job name", func(c *Config) { c.Jobs[0].Name = "" }, nil, "name cannot be empty"},
		{"duplicate job", func(c *Config) { c.Jobs[1].Name = "config" }, nil, "defined twice"},
		{"unknown kind", func(c *Config) { c.Jobs[0].Kind = "table" }, errors.ErrUnsupported, "unknown kind"},
		{"missing source", func(c *Config) { c.Jobs[0].Source = "" }, nil, "source cannot be empty"},
		{"bad type name", func(c *Config) { c.Jobs[0].TypeName = "my type" }, errors.ErrInvalidName, "my type"},
		{"bad format", func(c *Config) { c.Jobs[0].Format = "xml" }, errors.ErrUnsupported, "xml"},
		{"bad language", func(c *Config) { c.Defaults.Language = "cobol" }, errors.ErrUnsupported, "cobol"},
		{"bad serde", func(c *Config) { c.Jobs[0].Serde = "maybe" }, errors.ErrUnsupported, "maybe"},
		{"bad int size", func(c *Config) { c.Defaults.Parse.DefaultIntSize = "u8" }, errors.ErrUnsupported, "u8"},
		{"negative array size", func(c *Config) { c.Jobs[0].Parse = &ParseConfig{MaxArraySize: -1} }, nil, "max_array_size"},
		{"shared dest", func(c *Config) { c.Jobs[1].Dest = "src/generated/config.rs" }, nil, "both write"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
			if tt.kind != nil {
				assert.True(t, errors.Is(err, tt.kind), "want %v, got %v", tt.kind, err)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	path := writeConfig(t, sampleConfig)
	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	dir := filepath.Dir(path)

	r, err := cfg.Resolve(cfg.Jobs[0])
	require.NoError(t, err)
	assert.Equal(t, "rust", r.Language)
	assert.Equal(t, filepath.Join(dir, "data", "config.toml"), r.Source)
	assert.Equal(t, filepath.Join(dir, "src", "gen", "config.rs"), r.Dest)
	assert.Equal(t, filepath.Join(dir, "src", "gen"), r.Options.IncludeBase)
	assert.Equal(t, markup.FormatAuto, r.Format)
	assert.True(t, r.CreateDirs)
	assert.Equal(t, codegen.SerdeSerialize, r.Options.Serde)
	assert.Equal(t, value.KindI32, r.Options.Parse.IntSize)
	assert.Equal(t, "SOURCE_PATH", r.Options.SourcePathConst)

	r, err = cfg.Resolve(cfg.Jobs[1])
	require.NoError(t, err)
	assert.Equal(t, "go", r.Language)
	assert.Equal(t, "colors", r.Package)
	assert.False(t, r.CreateDirs)
	assert.Equal(t, []string{"Clone", "Copy"}, r.Options.Enums.Derives)
	assert.Equal(t, []string{"Debug"}, r.Options.Structs.Derives)
	assert.False(t, r.Options.Enums.ImplFromStr)
	assert.True(t, r.Options.Enums.ImplDisplay)
	assert.Empty(t, r.Options.Enums.AllValuesConst)
	assert.Equal(t, value.KindI32, r.Options.Parse.IntSize, "partial parse override keeps the default int size")
	assert.Equal(t, 4, r.Options.Parse.MaxArraySize)
}

func TestResolveMinimalAndFileAccessors(t *testing.T) {
	cfg := Starter()
	stringsConst := "FILE_STRINGS"
	minimal := true
	job := Job{
		Name: "files", Kind: KindEnumFromFilenames, Source: "data", Dest: "out.rs",
		TypeName: "Files", Minimal: &minimal, FileStringsConst: &stringsConst,
	}

	r, err := cfg.Resolve(job)
	require.NoError(t, err)
	assert.Empty(t, r.Options.SourcePathConst)
	assert.Empty(t, r.Options.Files.PathsConst)
	assert.Equal(t, "FILE_STRINGS", r.Options.Files.StringsConst)
	assert.Equal(t, "string", r.Options.Files.GetStringFn)
}

func TestWriteAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	starter := Starter()
	require.NoError(t, Write(path, starter, false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# markgen project configuration.")
	assert.Contains(t, string(data), "[[jobs]]")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, starter.Defaults, cfg.Defaults)
	assert.Equal(t, starter.Jobs, cfg.Jobs)

	err = Write(path, starter, false)
	require.Error(t, err)
	assert.NotEmpty(t, errors.GetAllHints(err))

	require.NoError(t, Write(path, starter, true))
	backup, err := os.ReadFile(path + ".back")
	require.NoError(t, err)
	assert.Equal(t, data, backup)
}

func TestSourceWatcherAffected(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "files"), 0o755))
	cfg := &Config{path: filepath.Join(dir, FileName)}
	jobs := []Job{
		{Name: "one", Kind: KindStruct, Source: "a.json", Dest: "out.rs"},
		{Name: "two", Kind: KindStruct, Source: "a.json", Dest: "out2.rs"},
		{Name: "dir", Kind: KindEnumFromFilenames, Source: "files", Dest: "files.rs"},
	}

	sw, err := NewSourceWatcher(cfg, jobs, func(context.Context, []string) {})
	require.NoError(t, err)
	defer sw.Close()

	assert.Equal(t, []string{"one", "two"}, sw.affected(filepath.Join(dir, "a.json")))
	assert.Equal(t, []string{"dir"}, sw.affected(filepath.Join(dir, "files", "x.yaml")))
	assert.Empty(t, sw.affected(filepath.Join(dir, "files", ".swp")))
	assert.Empty(t, sw.affected(filepath.Join(dir, "out.rs")))
	assert.Empty(t, sw.affected(filepath.Join(dir, "b.json")))
}

func TestSourceWatcherDebounces(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "a.json")
	require.NoError(t, os.WriteFile(source, []byte(`{}`), 0o644))
	cfg := &Config{path: filepath.Join(dir, FileName)}

	calls := make(chan []string, 10)
	sw, err := NewSourceWatcher(cfg, []Job{{Name: "a", Kind: KindStruct, Source: "a.json", Dest: "a.rs"}},
		func(_ context.Context, jobs []string) { calls <- jobs })
	require.NoError(t, err)
	defer sw.Close()
	sw.debouncePeriod = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sw.Run(ctx)

	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(source, []byte(`{"n": 1}`), 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.rs"), []byte("// out"), 0o644))

	select {
	case jobs := <-calls:
		assert.Equal(t, []string{"a"}, jobs)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	select {
	case jobs := <-calls:
		t.Fatalf("burst reported twice: %v", jobs)
	case <-time.After(200 * time.Millisecond):
	}
}
