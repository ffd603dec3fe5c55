// Package rust renders declarations as Rust source.
//
// Strings and lists are emitted as std::borrow::Cow so the data constants
// can be built at compile time while the same types still deserialize
// into owned values.
package rust

import (
	"fmt"
	"strings"

	"github.com/teranos/markgen/codegen"
	"github.com/teranos/markgen/errors"
	"github.com/teranos/markgen/shape"
)

// Generator implements codegen.Generator for Rust
type Generator struct{}

// NewGenerator creates a new Rust generator
func NewGenerator() *Generator {
	return &Generator{}
}

// Language returns "rust"
func (g *Generator) Language() string {
	return "rust"
}

// FileExtension returns "rs"
func (g *Generator) FileExtension() string {
	return "rs"
}

// CheckTypeName rejects names that are not Rust identifiers, and keywords.
func (g *Generator) CheckTypeName(name string) error {
	return checkName(name, "a type name")
}

// GenerateFile renders every item of f, separated by blank lines.
func (g *Generator) GenerateFile(f *codegen.File) (string, error) {
	var sb strings.Builder
	sb.WriteString("// Code generated by markgen. DO NOT EDIT.\n")
	if f.Source != "" {
		fmt.Fprintf(&sb, "// Source: %s\n", f.Source)
	}

	for _, it := range f.Items {
		var blocks []string
		var err error
		switch decl := it.(type) {
		case *codegen.Struct:
			blocks, err = structItems(decl)
		case *codegen.Enum:
			blocks, err = enumItems(decl)
		default:
			err = errors.NewUnsupportedError("unknown item %T", it)
		}
		if err != nil {
			return "", err
		}
		for _, b := range blocks {
			sb.WriteString("\n")
			sb.WriteString(b)
		}
	}
	return sb.String(), nil
}

// structItems renders the record types of s, then its constants.
func structItems(s *codegen.Struct) ([]string, error) {
	blocks, err := recordDecls(s.Tree, s.Derives)
	if err != nil {
		return nil, err
	}

	if s.IsTable() {
		if s.DataConst == "" {
			return blocks, nil
		}
		c, err := tableConst(s, 0, "")
		if err != nil {
			return nil, err
		}
		return append(blocks, c+"\n"), nil
	}

	var members []string
	if s.SourcePathConst != "" {
		members = append(members, sourcePathConst(s.SourcePathConst, s.SourcePath))
	}
	if s.DataConst != "" && s.Data != nil {
		root := s.Tree.RootName()
		lit, err := literal(s.Tree, *s.Data, 1)
		if err != nil {
			return nil, err
		}
		members = append(members, fmt.Sprintf("%spub const %s: %s = %s;\n", pad(1), s.DataConst, root, lit))
	}
	if len(members) > 0 {
		blocks = append(blocks, implBlock("impl "+s.Tree.RootName(), members))
	}
	return blocks, nil
}

// recordDecls declares every record of t in discovery order.
func recordDecls(t *shape.Tree, derives []string) ([]string, error) {
	var blocks []string
	for _, id := range t.Records() {
		name := t.Name(id)
		if err := checkName(name, "a type name"); err != nil {
			return nil, err
		}

		var sb strings.Builder
		sb.WriteString("#[allow(non_camel_case_types)]\n")
		sb.WriteString(deriveAttr(derives))

		n := t.Node(id)
		if len(n.Keys) == 0 {
			fmt.Fprintf(&sb, "pub struct %s {}\n", name)
			blocks = append(blocks, sb.String())
			continue
		}

		fmt.Fprintf(&sb, "pub struct %s {\n", name)
		for i, key := range n.Keys {
			ident, err := fieldIdent(key)
			if err != nil {
				return nil, errors.Wrapf(err, "struct %s", name)
			}
			fmt.Fprintf(&sb, "%spub %s: %s,\n", pad(1), ident, typeOf(t, n.Children[i]))
		}
		sb.WriteString("}\n")
		blocks = append(blocks, sb.String())
	}
	return blocks, nil
}

func deriveAttr(derives []string) string {
	if len(derives) == 0 {
		return ""
	}
	return "#[derive(" + strings.Join(derives, ", ") + ")]\n"
}

func sourcePathConst(name, path string) string {
	return fmt.Sprintf("%spub const %s: &'static str = %s;\n", pad(1), name, quoteString(path))
}

// tableConst renders the data constant of a table: a slice of root-type
// values. Inside an impl block the constant is indented by depth and its
// type gets an explicit 'static lifetime.
func tableConst(s *codegen.Struct, depth int, lifetime string) (string, error) {
	t := s.Tree
	elem := typeOf(t, t.Root())
	multiline := hasRecord(t, t.Root())

	var sb strings.Builder
	fmt.Fprintf(&sb, "%spub const %s: &%s[%s] = &[", pad(depth), s.DataConst, lifetime, elem)
	if !multiline {
		parts := make([]string, len(s.Rows))
		for i, row := range s.Rows {
			lit, err := literal(t, row, depth)
			if err != nil {
				return "", err
			}
			parts[i] = lit
		}
		sb.WriteString(strings.Join(parts, ", "))
		sb.WriteString("];")
		return sb.String(), nil
	}

	sb.WriteString("\n")
	for _, row := range s.Rows {
		lit, err := literal(t, row, depth+1)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&sb, "%s%s,\n", pad(depth+1), lit)
	}
	sb.WriteString(pad(depth))
	sb.WriteString("];")
	return sb.String(), nil
}

func implBlock(header string, members []string) string {
	var sb strings.Builder
	sb.WriteString(header)
	sb.WriteString(" {\n")
	for _, m := range members {
		sb.WriteString(m)
	}
	sb.WriteString("}\n")
	return sb.String()
}

// stringList renders a slice constant of pre-rendered expressions, one per
// line.
func stringList(name, elemType string, exprs []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%spub const %s: &'static [%s] = &[\n", pad(1), name, elemType)
	for _, e := range exprs {
		fmt.Fprintf(&sb, "%s%s,\n", pad(2), e)
	}
	fmt.Fprintf(&sb, "%s];\n", pad(1))
	return sb.String()
}

// indexFn renders a const accessor that indexes a per-variant constant.
func indexFn(name, ret, table string, borrow bool) string {
	ref := ""
	if borrow {
		ref = "&"
	}
	return fmt.Sprintf("%spub const fn %s(self) -> %s {\n%s%sSelf::%s[self as usize]\n%s}\n",
		pad(1), name, ret, pad(2), ref, table, pad(1))
}

func enumItems(e *codegen.Enum) ([]string, error) {
	if len(e.Variants) == 0 {
		return nil, errors.NewEmptySourceError("enum %s has no variants", e.Name)
	}
	var blocks []string

	var sb strings.Builder
	sb.WriteString(deriveAttr(e.Derives))
	fmt.Fprintf(&sb, "pub enum %s {\n", e.Name)
	for _, v := range e.Variants {
		if err := checkName(v.Name, "a variant name"); err != nil {
			return nil, err
		}
		if v.Comment != "" {
			fmt.Fprintf(&sb, "%s/// %s\n", pad(1), v.Comment)
		}
		fmt.Fprintf(&sb, "%s%s,\n", pad(1), v.Name)
	}
	sb.WriteString("}\n")
	blocks = append(blocks, sb.String())

	members, err := enumMembers(e)
	if err != nil {
		return nil, err
	}
	if len(members) > 0 {
		blocks = append(blocks, implBlock("impl "+e.Name, members))
	}

	first := e.Variants[0].Name
	if e.ImplDefault {
		blocks = append(blocks, fmt.Sprintf(
			"impl Default for %s {\n%sfn default() -> Self {\n%sSelf::%s\n%s}\n}\n",
			e.Name, pad(1), pad(2), first, pad(1)))
	}
	if e.ImplDisplay {
		blocks = append(blocks, fmt.Sprintf(
			"impl std::fmt::Display for %s {\n"+
				"%sfn fmt(&self, f: &mut std::fmt::Formatter<'_>) -> std::fmt::Result {\n"+
				"%sstd::fmt::Debug::fmt(self, f)\n"+
				"%s}\n}\n",
			e.Name, pad(1), pad(2), pad(1)))
	}
	if e.ImplFromStr {
		blocks = append(blocks, fromStrImpl(e))
	}

	if e.Values != nil {
		decls, err := recordDecls(e.Values.Tree, e.Values.Derives)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, decls...)
	}
	return blocks, nil
}

// enumMembers renders the inherent impl of an enum: file constants first,
// then the source path, the variant list and the values table.
func enumMembers(e *codegen.Enum) ([]string, error) {
	var members []string

	if ft := e.Files; ft != nil {
		if ft.PathsConst != "" {
			exprs := make([]string, len(ft.Paths))
			for i, p := range ft.Paths {
				exprs[i] = quoteString(p)
			}
			members = append(members, stringList(ft.PathsConst, "&'static str", exprs))
			if ft.GetPathFn != "" {
				members = append(members, indexFn(ft.GetPathFn, "&'static str", ft.PathsConst, false))
			}
		}
		if ft.StringsConst != "" {
			exprs := make([]string, len(ft.IncludePaths))
			for i, p := range ft.IncludePaths {
				exprs[i] = "include_str!(" + quoteString(p) + ")"
			}
			members = append(members, stringList(ft.StringsConst, "&'static str", exprs))
			if ft.GetStringFn != "" {
				members = append(members, indexFn(ft.GetStringFn, "&'static str", ft.StringsConst, false))
			}
		}
		if ft.BytesConst != "" {
			exprs := make([]string, len(ft.IncludePaths))
			for i, p := range ft.IncludePaths {
				exprs[i] = "include_bytes!(" + quoteString(p) + ")"
			}
			members = append(members, stringList(ft.BytesConst, "&'static [u8]", exprs))
			if ft.GetBytesFn != "" {
				members = append(members, indexFn(ft.GetBytesFn, "&'static [u8]", ft.BytesConst, false))
			}
		}
	}

	if e.SourcePathConst != "" {
		members = append(members, sourcePathConst(e.SourcePathConst, e.SourcePath))
	}

	if e.AllVariantsConst != "" {
		exprs := make([]string, len(e.Variants))
		for i, v := range e.Variants {
			exprs[i] = "Self::" + v.Name
		}
		members = append(members, stringList(e.AllVariantsConst, "Self", exprs))
	}

	if vs := e.Values; vs != nil {
		c, err := tableConst(vs, 1, "'static ")
		if err != nil {
			return nil, err
		}
		members = append(members, c+"\n")
		if e.GetValueFn != "" {
			ret := "&'static " + typeOf(vs.Tree, vs.Tree.Root())
			members = append(members, indexFn(e.GetValueFn, ret, vs.DataConst, true))
		}
	}
	return members, nil
}

func fromStrImpl(e *codegen.Enum) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "impl std::str::FromStr for %s {\n", e.Name)
	fmt.Fprintf(&sb, "%stype Err = ();\n", pad(1))
	fmt.Fprintf(&sb, "%sfn from_str(s: &str) -> Result<Self, Self::Err> {\n", pad(1))
	fmt.Fprintf(&sb, "%sOk(match s {\n", pad(2))
	for _, v := range e.Variants {
		fmt.Fprintf(&sb, "%s%s => Self::%s,\n", pad(3), quoteString(v.Name), v.Name)
	}
	fmt.Fprintf(&sb, "%s_ => return Err(()),\n", pad(3))
	fmt.Fprintf(&sb, "%s})\n", pad(2))
	fmt.Fprintf(&sb, "%s}\n", pad(1))
	sb.WriteString("}\n")
	return sb.String()
}

// Compile-time check that Generator satisfies the interface.
var _ codegen.Generator = (*Generator)(nil)
