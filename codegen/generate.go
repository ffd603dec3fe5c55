package codegen

import (
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/teranos/markgen/codegen/casing"
	"github.com/teranos/markgen/errors"
	"github.com/teranos/markgen/files"
	"github.com/teranos/markgen/markup"
	"github.com/teranos/markgen/shape"
	"github.com/teranos/markgen/value"
)

// GenerateStruct generates a struct named name from a record value.
func GenerateStruct(g Generator, v value.Value, name, sourcePath string, opts Options) (string, error) {
	decl, err := BuildStruct(g, v, name, sourcePath, opts)
	if err != nil {
		return "", err
	}
	return g.GenerateFile(&File{Source: sourcePath, Items: []Item{decl}})
}

// GenerateEnumFromKeys generates an enum with one variant per key of a
// record value.
func GenerateEnumFromKeys(g Generator, v value.Value, name, sourcePath string, opts Options) (string, error) {
	decl, err := BuildEnumFromKeys(g, v, name, sourcePath, opts)
	if err != nil {
		return "", err
	}
	return g.GenerateFile(&File{Source: sourcePath, Items: []Item{decl}})
}

// GenerateStructsFromValues generates one struct shared by every value of a
// record, plus a data constant listing those values.
func GenerateStructsFromValues(g Generator, v value.Value, name, sourcePath string, opts Options) (string, error) {
	decl, err := BuildStructsFromValues(g, v, name, sourcePath, opts)
	if err != nil {
		return "", err
	}
	return g.GenerateFile(&File{Source: sourcePath, Items: []Item{decl}})
}

// GenerateEnumFromFilenames generates an enum with one variant per file in
// dir.
func GenerateEnumFromFilenames(g Generator, dir, name string, opts Options) (string, error) {
	decl, err := BuildEnumFromFilenames(g, dir, name, opts)
	if err != nil {
		return "", err
	}
	return g.GenerateFile(&File{Source: decl.SourcePath, Items: []Item{decl}})
}

// GenerateStructsFromFiles generates one struct shared by every file in dir,
// plus a data constant listing the parsed files.
func GenerateStructsFromFiles(g Generator, dir, name string, opts Options) (string, error) {
	decl, err := BuildStructsFromFiles(g, dir, name, opts)
	if err != nil {
		return "", err
	}
	return g.GenerateFile(&File{Source: decl.SourcePath, Items: []Item{decl}})
}

// BuildStruct infers the declaration of a struct from a record value.
func BuildStruct(g Generator, v value.Value, name, sourcePath string, opts Options) (*Struct, error) {
	if v.Kind() != value.KindRecord {
		return nil, errors.NewShapeError("a struct", v.Kind().String())
	}
	if err := g.CheckTypeName(name); err != nil {
		return nil, err
	}

	v = v.Clone()
	if err := value.UnifyValue(&v); err != nil {
		return nil, err
	}
	tree, lit, err := shape.Build(name, v)
	if err != nil {
		return nil, errors.Wrapf(err, "struct %s", name)
	}

	return &Struct{
		Tree:            tree,
		Derives:         deriveList(opts.Structs.Derives, opts.Serde, false),
		Serde:           opts.Serde,
		SourcePathConst: opts.SourcePathConst,
		SourcePath:      sourcePath,
		DataConst:       opts.Structs.DataConst,
		Data:            &lit,
	}, nil
}

// BuildStructsFromValues infers one struct shared by every value of a
// record. The values are unified first so that, for example, a field that
// is null in one value becomes optional in all of them.
func BuildStructsFromValues(g Generator, v value.Value, name, sourcePath string, opts Options) (*Struct, error) {
	if v.Kind() != value.KindRecord {
		return nil, errors.NewShapeError("a struct", v.Kind().String())
	}
	if v.Len() == 0 {
		err := errors.NewEmptySourceError("cannot infer %s from an empty mapping", name)
		return nil, errors.WithHint(err, "add at least one entry to "+sourcePath)
	}
	return buildTable(g, v.Record().Values(), name, sourcePath, opts)
}

// BuildStructsFromFiles infers one struct shared by every file in dir, in
// file name order.
func BuildStructsFromFiles(g Generator, dir, name string, opts Options) (*Struct, error) {
	entries, err := listSources(dir, name)
	if err != nil {
		return nil, err
	}
	values, err := parseEntries(entries, opts)
	if err != nil {
		return nil, err
	}
	return buildTable(g, values, name, includePath(opts.PathBase, dir), opts)
}

func buildTable(g Generator, values []value.Value, name, sourcePath string, opts Options) (*Struct, error) {
	if err := g.CheckTypeName(name); err != nil {
		return nil, err
	}
	tree, rows, err := buildRows(values, name)
	if err != nil {
		return nil, err
	}
	return &Struct{
		Tree:       tree,
		Derives:    deriveList(opts.Structs.Derives, opts.Serde, false),
		Serde:      opts.Serde,
		SourcePath: sourcePath,
		DataConst:  opts.Structs.DataConst,
		Rows:       rows,
	}, nil
}

// buildRows unifies copies of values and binds them to one shared tree.
func buildRows(values []value.Value, name string) (*shape.Tree, []shape.Literal, error) {
	values = cloneAll(values)
	if err := value.Unify(values); err != nil {
		return nil, nil, err
	}
	tree, rows, err := shape.BuildAll(name, values)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "values of %s", name)
	}
	return tree, rows, nil
}

// BuildEnumFromKeys declares an enum with one variant per record key, in
// key order. With a values constant requested, the record's values become
// the per-variant data.
func BuildEnumFromKeys(g Generator, v value.Value, name, sourcePath string, opts Options) (*Enum, error) {
	if v.Kind() != value.KindRecord {
		return nil, errors.NewShapeError("a struct", v.Kind().String())
	}
	if v.Len() == 0 {
		err := errors.NewEmptySourceError("cannot derive variants of %s from an empty mapping", name)
		return nil, errors.WithHint(err, "add at least one key to "+sourcePath)
	}

	rec := v.Record()
	variants := make([]Variant, 0, rec.Len())
	for _, key := range rec.Keys() {
		if problem := casing.IdentProblem(key); problem != "" {
			err := errors.NewNameError(key, problem)
			return nil, errors.WithHint(err, "rename the key; keys are used as variant names")
		}
		variants = append(variants, Variant{Name: key})
	}

	enum, err := newEnum(g, name, sourcePath, variants, opts)
	if err != nil {
		return nil, err
	}
	if err := attachValues(enum, rec.Values(), opts); err != nil {
		return nil, err
	}
	return enum, nil
}

// BuildEnumFromFilenames declares an enum with one variant per regular file
// directly inside dir, in file name order. Variant names are the
// PascalCase file stems.
func BuildEnumFromFilenames(g Generator, dir, name string, opts Options) (*Enum, error) {
	entries, err := listSources(dir, name)
	if err != nil {
		return nil, err
	}

	variants := make([]Variant, 0, len(entries))
	seen := make(map[string]string, len(entries))
	for _, e := range entries {
		variant := casing.ToPascalCase(e.Stem)
		if problem := casing.IdentProblem(variant); problem != "" {
			err := errors.NewNameError(variant, problem)
			return nil, errors.WithHintf(err, "rename %s", e.Path)
		}
		if prev, ok := seen[variant]; ok {
			return nil, errors.NewNameError(variant, "produced by both "+prev+" and "+e.Name)
		}
		seen[variant] = e.Name
		variants = append(variants, Variant{Name: variant, Comment: "From " + includePath(opts.PathBase, e.Path)})
	}

	enum, err := newEnum(g, name, includePath(opts.PathBase, dir), variants, opts)
	if err != nil {
		return nil, err
	}

	if opts.Enums.AllValuesConst != "" {
		values, err := parseEntries(entries, opts)
		if err != nil {
			return nil, err
		}
		if err := attachValues(enum, values, opts); err != nil {
			return nil, err
		}
	}

	table, err := buildFileTable(entries, opts)
	if err != nil {
		return nil, err
	}
	enum.Files = table
	return enum, nil
}

func newEnum(g Generator, name, sourcePath string, variants []Variant, opts Options) (*Enum, error) {
	if err := g.CheckTypeName(name); err != nil {
		return nil, err
	}
	eo := opts.Enums
	return &Enum{
		Name:             name,
		Derives:          deriveList(eo.Derives, opts.Serde, eo.ImplDisplay),
		Serde:            opts.Serde,
		Variants:         variants,
		SourcePathConst:  opts.SourcePathConst,
		SourcePath:       sourcePath,
		ImplDefault:      eo.ImplDefault,
		ImplDisplay:      eo.ImplDisplay,
		ImplFromStr:      eo.ImplFromStr,
		AllVariantsConst: eo.AllVariantsConst,
	}, nil
}

// attachValues builds the values table of enum when a values constant is
// requested.
func attachValues(enum *Enum, values []value.Value, opts Options) error {
	eo := opts.Enums
	if eo.AllValuesConst == "" {
		return nil
	}

	name := eo.valuesStructName(enum.Name)
	tree, rows, err := buildRows(values, name)
	if err != nil {
		return err
	}
	enum.Values = &Struct{
		Tree:      tree,
		Derives:   deriveList(eo.ValuesStruct.Derives, opts.Serde, false),
		Serde:     opts.Serde,
		DataConst: eo.AllValuesConst,
		Rows:      rows,
	}
	enum.GetValueFn = eo.GetValueFn
	return nil
}

func buildFileTable(entries []files.Entry, opts Options) (*FileTable, error) {
	fo := opts.Files
	if fo.PathsConst == "" && fo.StringsConst == "" && fo.BytesConst == "" {
		return nil, nil
	}

	table := &FileTable{FileOptions: fo}
	for _, e := range entries {
		table.Paths = append(table.Paths, includePath(opts.PathBase, e.Path))
		table.IncludePaths = append(table.IncludePaths, includePath(opts.IncludeBase, e.Path))

		if fo.StringsConst == "" && fo.BytesConst == "" {
			continue
		}
		content, err := os.ReadFile(e.Path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read %s", e.Path)
		}
		if fo.StringsConst != "" && !utf8.Valid(content) {
			err := errors.NewUnsupportedError("%s is not UTF-8 text", e.Path)
			return nil, errors.WithHint(err, "disable the file strings constant or use the bytes constant")
		}
		table.Contents = append(table.Contents, content)
	}
	return table, nil
}

// includePath returns p relative to base with forward slashes. An empty
// base, or a path that cannot be made relative, yields p itself.
func includePath(base, p string) string {
	if base == "" {
		return filepath.ToSlash(p)
	}
	absBase, err := filepath.Abs(base)
	if err != nil {
		return filepath.ToSlash(p)
	}
	absPath, err := filepath.Abs(p)
	if err != nil {
		return filepath.ToSlash(p)
	}
	rel, err := filepath.Rel(absBase, absPath)
	if err != nil {
		return filepath.ToSlash(absPath)
	}
	return filepath.ToSlash(rel)
}

func listSources(dir, name string) ([]files.Entry, error) {
	entries, err := files.ListFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		err := errors.NewEmptySourceError("no files in %s to derive %s from", dir, name)
		return nil, errors.WithHint(err, "hidden files and subdirectories are ignored")
	}
	return entries, nil
}

func parseEntries(entries []files.Entry, opts Options) ([]value.Value, error) {
	values := make([]value.Value, 0, len(entries))
	for _, e := range entries {
		v, err := markup.ParseFile(e.Path, opts.Format, opts.Parse)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

func cloneAll(values []value.Value) []value.Value {
	out := make([]value.Value, len(values))
	for i, v := range values {
		out[i] = v.Clone()
	}
	return out
}
