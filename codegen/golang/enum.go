package golang

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/teranos/markgen/codegen"
	"github.com/teranos/markgen/codegen/casing"
	"github.com/teranos/markgen/errors"
)

func (f *file) enumItem(e *codegen.Enum) error {
	if len(e.Variants) == 0 {
		return errors.NewEmptySourceError("enum %s has no variants", e.Name)
	}
	if err := f.declare(e.Name); err != nil {
		return err
	}

	if err := checkMethods(e); err != nil {
		return err
	}

	consts := make([]string, len(e.Variants))
	for i, v := range e.Variants {
		consts[i] = e.Name + casing.ToPascalCase(v.Name)
		if err := f.declare(consts[i]); err != nil {
			return errors.WithHintf(err, "variant %s of %s", v.Name, e.Name)
		}
	}

	fmt.Fprintf(&f.body, "\ntype %s int\n\nconst (\n", e.Name)
	for i, v := range e.Variants {
		if v.Comment != "" {
			fmt.Fprintf(&f.body, "// %s\n", v.Comment)
		}
		if i == 0 {
			fmt.Fprintf(&f.body, "%s %s = iota\n", consts[i], e.Name)
		} else {
			fmt.Fprintf(&f.body, "%s\n", consts[i])
		}
	}
	f.body.WriteString(")\n")

	if ft := e.Files; ft != nil {
		if err := f.fileTable(e, ft); err != nil {
			return err
		}
	}

	if e.SourcePathConst != "" {
		if err := f.sourcePath(e.Name, e.SourcePathConst, e.SourcePath); err != nil {
			return err
		}
	}

	if e.AllVariantsConst != "" {
		name := constName(e.Name, e.AllVariantsConst)
		if err := f.declare(name); err != nil {
			return err
		}
		fmt.Fprintf(&f.body, "\n// %s lists every %s in declaration order.\nvar %s = []%s{%s}\n",
			name, e.Name, name, e.Name, strings.Join(consts, ", "))
	}

	if e.ImplDefault {
		name := "Default" + e.Name
		if err := f.declare(name); err != nil {
			return err
		}
		fmt.Fprintf(&f.body, "\n// %s returns the first variant.\nfunc %s() %s {\nreturn %s\n}\n",
			name, name, e.Name, consts[0])
	}

	if e.ImplDisplay {
		f.needFmt = true
		fmt.Fprintf(&f.body, "\nfunc (e %s) String() string {\nswitch e {\n", e.Name)
		for i, v := range e.Variants {
			fmt.Fprintf(&f.body, "case %s:\nreturn %s\n", consts[i], strconv.Quote(v.Name))
		}
		fmt.Fprintf(&f.body, "}\nreturn fmt.Sprintf(\"%s(%%d)\", int(e))\n}\n", e.Name)
	}

	if e.ImplFromStr {
		name := "Parse" + e.Name
		if err := f.declare(name); err != nil {
			return err
		}
		fmt.Fprintf(&f.body, "\n// %s returns the variant with exactly the given name.\n", name)
		fmt.Fprintf(&f.body, "func %s(s string) (%s, bool) {\nswitch s {\n", name, e.Name)
		for i, v := range e.Variants {
			fmt.Fprintf(&f.body, "case %s:\nreturn %s, true\n", strconv.Quote(v.Name), consts[i])
		}
		f.body.WriteString("}\nreturn 0, false\n}\n")
	}

	if vs := e.Values; vs != nil {
		if err := f.typeDecls(vs.Tree, vs.Serde); err != nil {
			return err
		}
		name := constName(e.Name, vs.DataConst)
		if err := f.table(name, vs); err != nil {
			return err
		}
		if e.GetValueFn != "" {
			elem, err := typeOf(vs.Tree, vs.Tree.Root())
			if err != nil {
				return err
			}
			fmt.Fprintf(&f.body, "\nfunc (e %s) %s() %s {\nreturn %s[e]\n}\n",
				e.Name, methodName(e.GetValueFn), elem, name)
		}
	}
	return nil
}

// checkMethods rejects accessor names that map to the same Go method.
func checkMethods(e *codegen.Enum) error {
	seen := make(map[string]bool)
	if e.ImplDisplay {
		seen["String"] = true
	}
	var fns []string
	if ft := e.Files; ft != nil {
		if ft.PathsConst != "" {
			fns = append(fns, ft.GetPathFn)
		}
		if ft.StringsConst != "" {
			fns = append(fns, stringsMethod(ft.GetStringFn))
		}
		if ft.BytesConst != "" {
			fns = append(fns, ft.GetBytesFn)
		}
	}
	if e.Values != nil {
		fns = append(fns, e.GetValueFn)
	}
	for _, fn := range fns {
		if fn == "" {
			continue
		}
		m := methodName(fn)
		if err := checkName(m); err != nil {
			return err
		}
		if seen[m] {
			return errors.NewNameError(fn, "method "+m+" of "+e.Name+" is generated twice")
		}
		seen[m] = true
	}
	return nil
}

// fileTable declares the per-variant file constants. File contents are
// inlined as literals since go:embed cannot reach outside the package.
func (f *file) fileTable(e *codegen.Enum, ft *codegen.FileTable) error {
	if ft.PathsConst != "" {
		exprs := make([]string, len(ft.Paths))
		for i, p := range ft.Paths {
			exprs[i] = strconv.Quote(p)
		}
		if err := f.perVariant(e, ft.PathsConst, ft.GetPathFn, "string", exprs); err != nil {
			return err
		}
	}
	if ft.StringsConst != "" {
		exprs := make([]string, len(ft.Contents))
		for i, c := range ft.Contents {
			exprs[i] = strconv.Quote(string(c))
		}
		if err := f.perVariant(e, ft.StringsConst, stringsMethod(ft.GetStringFn), "string", exprs); err != nil {
			return err
		}
	}
	if ft.BytesConst != "" {
		exprs := make([]string, len(ft.Contents))
		for i, c := range ft.Contents {
			exprs[i] = "[]byte(" + strconv.Quote(string(c)) + ")"
		}
		if err := f.perVariant(e, ft.BytesConst, ft.GetBytesFn, "[]byte", exprs); err != nil {
			return err
		}
	}
	return nil
}

// stringsMethod names the file text accessor. String() belongs to
// fmt.Stringer, so that name becomes Text().
func stringsMethod(fn string) string {
	if methodName(fn) == "String" {
		return "text"
	}
	return fn
}

// perVariant declares a slice variable indexed by variant and, if fn is
// set, a method returning the variant's element.
func (f *file) perVariant(e *codegen.Enum, constant, fn, elem string, exprs []string) error {
	name := constName(e.Name, constant)
	if err := f.declare(name); err != nil {
		return err
	}
	fmt.Fprintf(&f.body, "\nvar %s = []%s{\n%s,\n}\n", name, elem, strings.Join(exprs, ",\n"))
	if fn != "" {
		fmt.Fprintf(&f.body, "\nfunc (e %s) %s() %s {\nreturn %s[e]\n}\n", e.Name, methodName(fn), elem, name)
	}
	return nil
}
