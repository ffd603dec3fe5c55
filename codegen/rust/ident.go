package rust

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/teranos/markgen/codegen/casing"
	"github.com/teranos/markgen/errors"
)

// Rust keywords (strict and reserved) that need raw identifier prefix (r#)
var rustKeywords = map[string]bool{
	"as": true, "async": true, "await": true, "break": true, "const": true,
	"continue": true, "crate": true, "dyn": true, "else": true, "enum": true,
	"extern": true, "false": true, "fn": true, "for": true, "if": true,
	"impl": true, "in": true, "let": true, "loop": true, "match": true,
	"mod": true, "move": true, "mut": true, "pub": true, "ref": true,
	"return": true, "self": true, "Self": true, "static": true, "struct": true,
	"super": true, "trait": true, "true": true, "type": true, "unsafe": true,
	"use": true, "where": true, "while": true, "yield": true,
	"abstract": true, "become": true, "box": true, "do": true, "final": true,
	"gen": true, "macro": true, "override": true, "priv": true, "try": true,
	"typeof": true, "unsized": true, "virtual": true,
}

// Keywords that cannot be raw identifiers either.
var noRawIdent = map[string]bool{
	"self": true, "Self": true, "super": true, "crate": true,
}

// fieldIdent converts a record key to a field identifier.
// Adds r# prefix for Rust keywords
func fieldIdent(key string) (string, error) {
	if problem := casing.IdentProblem(key); problem != "" {
		err := errors.NewNameError(key, problem)
		return "", errors.WithHint(err, "rename the key; keys are used as field names")
	}
	if noRawIdent[key] {
		return "", errors.NewNameError(key, "is a Rust keyword that cannot be a field name")
	}
	if rustKeywords[key] {
		return "r#" + key, nil
	}
	return key, nil
}

// checkName validates a type or variant name. Keywords are rejected rather
// than escaped.
func checkName(name, what string) error {
	if problem := casing.IdentProblem(name); problem != "" {
		return errors.NewNameError(name, problem)
	}
	if rustKeywords[name] {
		return errors.NewNameError(name, "is a Rust keyword and cannot be "+what)
	}
	return nil
}

// quoteString renders s as a Rust string literal.
func quoteString(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		default:
			writeEscaped(&sb, r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

// quoteChar renders r as a Rust char literal.
func quoteChar(r rune) string {
	var sb strings.Builder
	sb.WriteByte('\'')
	if r == '\'' {
		sb.WriteString(`\'`)
	} else {
		writeEscaped(&sb, r)
	}
	sb.WriteByte('\'')
	return sb.String()
}

func writeEscaped(sb *strings.Builder, r rune) {
	switch r {
	case '\\':
		sb.WriteString(`\\`)
	case '\n':
		sb.WriteString(`\n`)
	case '\r':
		sb.WriteString(`\r`)
	case '\t':
		sb.WriteString(`\t`)
	case 0:
		sb.WriteString(`\0`)
	default:
		if unicode.IsPrint(r) {
			sb.WriteRune(r)
		} else {
			fmt.Fprintf(sb, `\u{%x}`, r)
		}
	}
}
