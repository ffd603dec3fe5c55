// Package golang renders declarations as Go source.
//
// Records and tuples become named struct types, options become pointers
// and data constants become package variables, since Go has no composite
// constants. Output is formatted with golang.org/x/tools/imports.
package golang

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/tools/imports"

	"github.com/teranos/markgen/codegen"
	"github.com/teranos/markgen/codegen/casing"
	"github.com/teranos/markgen/errors"
	"github.com/teranos/markgen/shape"
	"github.com/teranos/markgen/value"
)

// DefaultPackage is the package clause used when none is configured.
const DefaultPackage = "generated"

// Generator implements codegen.Generator for Go
type Generator struct {
	Package string
}

// NewGenerator creates a Go generator writing files of package pkg.
func NewGenerator(pkg string) *Generator {
	if pkg == "" {
		pkg = DefaultPackage
	}
	return &Generator{Package: pkg}
}

// Language returns "go"
func (g *Generator) Language() string {
	return "go"
}

// FileExtension returns "go"
func (g *Generator) FileExtension() string {
	return "go"
}

// CheckTypeName rejects names that are not Go identifiers, and keywords.
func (g *Generator) CheckTypeName(name string) error {
	return checkName(name)
}

// Imports are tracked while rendering, so formatting never has to resolve
// packages.
var processOptions = &imports.Options{
	FormatOnly: true,
	Comments:   true,
	TabIndent:  true,
	TabWidth:   8,
}

// Compile-time check that Generator satisfies the interface.
var _ codegen.Generator = (*Generator)(nil)

// file collects the declarations of one output file.
type file struct {
	body     strings.Builder
	declared map[string]bool
	needFmt  bool
	needMath bool
}

// declare reserves a package-level name.
func (f *file) declare(name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	if f.declared[name] {
		return errors.NewNameError(name, "is declared twice in the generated file")
	}
	f.declared[name] = true
	return nil
}

// GenerateFile renders f as a formatted Go source file.
func (g *Generator) GenerateFile(cf *codegen.File) (string, error) {
	if err := checkName(g.Package); err != nil {
		return "", errors.Wrap(err, "package name")
	}

	f := &file{declared: make(map[string]bool)}
	for _, it := range cf.Items {
		var err error
		switch decl := it.(type) {
		case *codegen.Struct:
			err = f.structItem(decl)
		case *codegen.Enum:
			err = f.enumItem(decl)
		default:
			err = errors.NewUnsupportedError("unknown item %T", it)
		}
		if err != nil {
			return "", err
		}
	}

	var src strings.Builder
	src.WriteString("// Code generated by markgen. DO NOT EDIT.\n")
	if cf.Source != "" {
		fmt.Fprintf(&src, "// Source: %s\n", cf.Source)
	}
	fmt.Fprintf(&src, "\npackage %s\n", g.Package)
	if f.needFmt || f.needMath {
		src.WriteString("\nimport (\n")
		if f.needFmt {
			src.WriteString("\"fmt\"\n")
		}
		if f.needMath {
			src.WriteString("\"math\"\n")
		}
		src.WriteString(")\n")
	}
	src.WriteString(f.body.String())

	out, err := imports.Process("generated.go", []byte(src.String()), processOptions)
	if err != nil {
		return "", errors.Wrap(err, "failed to format generated Go source")
	}
	return string(out), nil
}

// typeDecls declares every record and tuple type of t in discovery order.
func (f *file) typeDecls(t *shape.Tree, serde codegen.SerdeSupport) error {
	for _, id := range t.OfKind(value.KindRecord, value.KindTuple) {
		name := t.Name(id)
		if err := f.declare(name); err != nil {
			return err
		}
		n := t.Node(id)

		fmt.Fprintf(&f.body, "\ntype %s struct {\n", name)
		if n.Kind == value.KindTuple {
			for i, c := range n.Children {
				typ, err := typeOf(t, c)
				if err != nil {
					return err
				}
				fmt.Fprintf(&f.body, "F%d %s\n", i, typ)
			}
			f.body.WriteString("}\n")
			continue
		}

		names, err := fieldNames(t, id)
		if err != nil {
			return errors.Wrapf(err, "struct %s", name)
		}
		for i, key := range n.Keys {
			typ, err := typeOf(t, n.Children[i])
			if err != nil {
				return err
			}
			fmt.Fprintf(&f.body, "%s %s", names[i], typ)
			if serde != codegen.SerdeNo {
				fmt.Fprintf(&f.body, " `json:%s`", strconv.Quote(key))
			}
			f.body.WriteString("\n")
		}
		f.body.WriteString("}\n")
	}
	return nil
}

// constName joins a type name and a SCREAMING_SNAKE constant name.
func constName(typeName, constant string) string {
	return typeName + casing.ToScreamingPascal(constant)
}

func methodName(fn string) string {
	return casing.ToPascalCase(fn)
}

func (f *file) sourcePath(typeName, constant, path string) error {
	name := constName(typeName, constant)
	if err := f.declare(name); err != nil {
		return err
	}
	fmt.Fprintf(&f.body, "\n// %s is the source %s was generated from.\nconst %s = %s\n",
		name, typeName, name, strconv.Quote(path))
	return nil
}

func (f *file) structItem(s *codegen.Struct) error {
	if err := f.typeDecls(s.Tree, s.Serde); err != nil {
		return err
	}
	root := s.Tree.RootName()

	if s.IsTable() {
		if s.DataConst == "" {
			return nil
		}
		return f.table(constName(root, s.DataConst), s)
	}

	if s.SourcePathConst != "" {
		if err := f.sourcePath(root, s.SourcePathConst, s.SourcePath); err != nil {
			return err
		}
	}
	if s.DataConst != "" && s.Data != nil {
		name := constName(root, s.DataConst)
		if err := f.declare(name); err != nil {
			return err
		}
		w := &literals{tree: s.Tree}
		lit, err := w.literal(*s.Data)
		if err != nil {
			return err
		}
		f.needMath = f.needMath || w.needMath
		fmt.Fprintf(&f.body, "\nvar %s = %s\n", name, lit)
	}
	return nil
}

// table declares a slice variable holding every row of s.
func (f *file) table(name string, s *codegen.Struct) error {
	if err := f.declare(name); err != nil {
		return err
	}
	elem, err := typeOf(s.Tree, s.Tree.Root())
	if err != nil {
		return err
	}

	w := &literals{tree: s.Tree}
	parts := make([]string, len(s.Rows))
	for i, row := range s.Rows {
		lit, err := w.literal(row)
		if err != nil {
			return err
		}
		parts[i] = lit
	}
	f.needMath = f.needMath || w.needMath
	fmt.Fprintf(&f.body, "\nvar %s = []%s{\n%s,\n}\n", name, elem, strings.Join(parts, ",\n"))
	return nil
}
