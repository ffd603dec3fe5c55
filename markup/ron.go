package markup

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/teranos/markgen/errors"
	"github.com/teranos/markgen/value"
)

// ronSuffixes are the typed literal suffixes RON allows after a number.
var ronSuffixes = map[string]value.Kind{
	"i8": value.KindI8, "i16": value.KindI16, "i32": value.KindI32, "i64": value.KindI64,
	"i128": value.KindI128, "isize": value.KindISize,
	"u8": value.KindU8, "u16": value.KindU16, "u32": value.KindU32, "u64": value.KindU64,
	"u128": value.KindU128, "usize": value.KindUSize,
	"f32": value.KindF32, "f64": value.KindF64,
}

// ronParser reads Rusty Object Notation.
//
// Supported: unit, booleans, chars, strings (escaped and raw), numbers with
// optional type suffixes, Some/None, lists, maps with string keys, structs
// (named or anonymous) and tuples. Struct names are ignored. A bare
// identifier (a unit enum variant) decodes to its name as a string.
type ronParser struct {
	src  string
	pos  int
	opts Options
}

func parseRON(src []byte, opts Options) (value.Value, error) {
	p := &ronParser{src: string(src), opts: opts}
	if err := p.skipAttributes(); err != nil {
		return value.Value{}, err
	}
	v, err := p.value()
	if err != nil {
		return value.Value{}, err
	}
	p.skipSpace()
	if p.pos < len(p.src) {
		return value.Value{}, p.errorf("unexpected trailing characters")
	}
	return v, nil
}

func (p *ronParser) errorf(format string, args ...interface{}) error {
	line := 1 + strings.Count(p.src[:p.pos], "\n")
	col := p.pos - strings.LastIndex(p.src[:p.pos], "\n")
	return errors.NewParseError("ron %d:%d: %s", line, col, fmt.Sprintf(format, args...))
}

func (p *ronParser) peek() rune {
	if p.pos >= len(p.src) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(p.src[p.pos:])
	return r
}

func (p *ronParser) next() rune {
	if p.pos >= len(p.src) {
		return 0
	}
	r, size := utf8.DecodeRuneInString(p.src[p.pos:])
	p.pos += size
	return r
}

func (p *ronParser) hasPrefix(s string) bool {
	return strings.HasPrefix(p.src[p.pos:], s)
}

func (p *ronParser) skipSpace() {
	for p.pos < len(p.src) {
		switch {
		case p.hasPrefix("//"):
			if i := strings.IndexByte(p.src[p.pos:], '\n'); i >= 0 {
				p.pos += i + 1
			} else {
				p.pos = len(p.src)
			}
		case p.hasPrefix("/*"):
			p.skipBlockComment()
		case unicode.IsSpace(p.peek()):
			p.next()
		default:
			return
		}
	}
}

// skipBlockComment consumes a possibly nested /* */ comment.
func (p *ronParser) skipBlockComment() {
	depth := 0
	for p.pos < len(p.src) {
		switch {
		case p.hasPrefix("/*"):
			depth++
			p.pos += 2
		case p.hasPrefix("*/"):
			depth--
			p.pos += 2
			if depth == 0 {
				return
			}
		default:
			p.next()
		}
	}
}

// skipAttributes consumes leading #![enable(...)] attributes.
func (p *ronParser) skipAttributes() error {
	for {
		p.skipSpace()
		if !p.hasPrefix("#!") {
			return nil
		}
		end := strings.IndexByte(p.src[p.pos:], ']')
		if end < 0 {
			return p.errorf("unterminated attribute")
		}
		p.pos += end + 1
	}
}

func (p *ronParser) expect(r rune) error {
	p.skipSpace()
	if got := p.peek(); got != r {
		return p.errorf("expected %q, found %q", r, got)
	}
	p.next()
	return nil
}

func (p *ronParser) value() (value.Value, error) {
	p.skipSpace()
	c := p.peek()
	switch {
	case c == 0:
		return value.Value{}, p.errorf("unexpected end of input")
	case c == '(':
		return p.parens()
	case c == '[':
		return p.list()
	case c == '{':
		return p.mapping()
	case c == '"':
		s, err := p.quoted()
		if err != nil {
			return value.Value{}, err
		}
		return value.String(s), nil
	case c == 'r' && (p.hasPrefix("r\"") || p.hasPrefix("r#\"") || p.hasPrefix("r##")):
		s, err := p.raw()
		if err != nil {
			return value.Value{}, err
		}
		return value.String(s), nil
	case c == '\'':
		return p.char()
	case c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9'):
		return p.number()
	case isIdentStart(c):
		return p.identValue()
	}
	return value.Value{}, p.errorf("unexpected character %q", c)
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentChar(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func (p *ronParser) ident() string {
	start := p.pos
	if p.hasPrefix("r#") {
		p.pos += 2
		start = p.pos
	}
	for p.pos < len(p.src) && isIdentChar(p.peek()) {
		p.next()
	}
	return p.src[start:p.pos]
}

func (p *ronParser) identValue() (value.Value, error) {
	name := p.ident()
	switch name {
	case "true":
		return value.Bool(true), nil
	case "false":
		return value.Bool(false), nil
	case "None":
		return value.None(), nil
	case "inf", "NaN":
		return p.finishFloat(name, "")
	}

	p.skipSpace()
	if p.peek() != '(' {
		return value.String(name), nil
	}
	if name == "Some" {
		p.next()
		inner, err := p.value()
		if err != nil {
			return value.Value{}, err
		}
		p.skipSpace()
		if p.peek() == ',' {
			p.next()
		}
		if err := p.expect(')'); err != nil {
			return value.Value{}, err
		}
		return value.Some(inner), nil
	}
	return p.parens()
}

// parens reads (), a struct body (a: 1, b: 2) or a tuple (1, 2).
func (p *ronParser) parens() (value.Value, error) {
	if err := p.expect('('); err != nil {
		return value.Value{}, err
	}
	p.skipSpace()
	if p.peek() == ')' {
		p.next()
		return value.Unit(), nil
	}
	if p.atFieldName() {
		return p.structBody()
	}

	var items []value.Value
	for {
		v, err := p.value()
		if err != nil {
			return value.Value{}, err
		}
		items = append(items, v)
		p.skipSpace()
		if p.peek() == ',' {
			p.next()
			p.skipSpace()
			if p.peek() != ')' {
				continue
			}
		}
		if err := p.expect(')'); err != nil {
			return value.Value{}, err
		}
		return value.Tuple(items...), nil
	}
}

// atFieldName reports whether the input continues with `ident :`.
func (p *ronParser) atFieldName() bool {
	save := p.pos
	defer func() { p.pos = save }()
	if !isIdentStart(p.peek()) && !p.hasPrefix("r#") {
		return false
	}
	if p.ident() == "" {
		return false
	}
	p.skipSpace()
	return p.peek() == ':' && !p.hasPrefix("::")
}

func (p *ronParser) structBody() (value.Value, error) {
	rec := value.NewRecord()
	for {
		p.skipSpace()
		if p.peek() == ')' {
			p.next()
			return value.Struct(rec), nil
		}
		key := p.ident()
		if key == "" {
			return value.Value{}, p.errorf("expected field name")
		}
		if err := p.expect(':'); err != nil {
			return value.Value{}, err
		}
		v, err := p.value()
		if err != nil {
			return value.Value{}, errors.Wrapf(err, "at field %q", key)
		}
		if rec.Has(key) {
			return value.Value{}, p.errorf("duplicate field %q", key)
		}
		rec.Set(key, v)
		p.skipSpace()
		if p.peek() == ',' {
			p.next()
			continue
		}
		if err := p.expect(')'); err != nil {
			return value.Value{}, err
		}
		return value.Struct(rec), nil
	}
}

func (p *ronParser) list() (value.Value, error) {
	if err := p.expect('['); err != nil {
		return value.Value{}, err
	}
	items := []value.Value{}
	for {
		p.skipSpace()
		if p.peek() == ']' {
			p.next()
			return p.opts.sequence(items), nil
		}
		v, err := p.value()
		if err != nil {
			return value.Value{}, err
		}
		items = append(items, v)
		p.skipSpace()
		if p.peek() == ',' {
			p.next()
			continue
		}
		if err := p.expect(']'); err != nil {
			return value.Value{}, err
		}
		return p.opts.sequence(items), nil
	}
}

func (p *ronParser) mapping() (value.Value, error) {
	if err := p.expect('{'); err != nil {
		return value.Value{}, err
	}
	rec := value.NewRecord()
	for {
		p.skipSpace()
		if p.peek() == '}' {
			p.next()
			return value.Struct(rec), nil
		}
		key, err := p.value()
		if err != nil {
			return value.Value{}, err
		}
		if key.Kind() != value.KindString {
			return value.Value{}, errors.WithHint(p.errorf("expected a string key in mapping, found %s", key.Kind()),
				"quote the key to make it a string")
		}
		if err := p.expect(':'); err != nil {
			return value.Value{}, err
		}
		v, err := p.value()
		if err != nil {
			return value.Value{}, errors.Wrapf(err, "at key %q", key.Text())
		}
		if rec.Has(key.Text()) {
			return value.Value{}, p.errorf("duplicate key %q", key.Text())
		}
		rec.Set(key.Text(), v)
		p.skipSpace()
		if p.peek() == ',' {
			p.next()
			continue
		}
		if err := p.expect('}'); err != nil {
			return value.Value{}, err
		}
		return value.Struct(rec), nil
	}
}

func (p *ronParser) quoted() (string, error) {
	p.next()
	var b strings.Builder
	for {
		if p.pos >= len(p.src) {
			return "", p.errorf("unterminated string")
		}
		r := p.next()
		switch r {
		case '"':
			return b.String(), nil
		case '\\':
			esc, err := p.escape()
			if err != nil {
				return "", err
			}
			b.WriteRune(esc)
		default:
			b.WriteRune(r)
		}
	}
}

// raw reads r"..." or r#"..."# with any number of hashes.
func (p *ronParser) raw() (string, error) {
	p.next()
	hashes := 0
	for p.peek() == '#' {
		hashes++
		p.next()
	}
	if p.next() != '"' {
		return "", p.errorf("malformed raw string")
	}
	closing := "\"" + strings.Repeat("#", hashes)
	end := strings.Index(p.src[p.pos:], closing)
	if end < 0 {
		return "", p.errorf("unterminated raw string")
	}
	s := p.src[p.pos : p.pos+end]
	p.pos += end + len(closing)
	return s, nil
}

func (p *ronParser) char() (value.Value, error) {
	p.next()
	r := p.next()
	if r == '\\' {
		esc, err := p.escape()
		if err != nil {
			return value.Value{}, err
		}
		r = esc
	}
	if p.next() != '\'' {
		return value.Value{}, p.errorf("malformed char literal")
	}
	return value.Char(r), nil
}

func (p *ronParser) escape() (rune, error) {
	switch r := p.next(); r {
	case 'n':
		return '\n', nil
	case 'r':
		return '\r', nil
	case 't':
		return '\t', nil
	case 'b':
		return '\b', nil
	case 'f':
		return '\f', nil
	case '0':
		return 0, nil
	case '\\', '"', '\'', '/':
		return r, nil
	case 'x':
		return p.hexEscape(2)
	case 'u':
		if p.peek() == '{' {
			p.next()
			end := strings.IndexByte(p.src[p.pos:], '}')
			if end < 0 {
				return 0, p.errorf("unterminated unicode escape")
			}
			digits := p.src[p.pos : p.pos+end]
			p.pos += end + 1
			n, err := strconv.ParseUint(digits, 16, 32)
			if err != nil || !utf8.ValidRune(rune(n)) {
				return 0, p.errorf("invalid unicode escape %q", digits)
			}
			return rune(n), nil
		}
		return p.hexEscape(4)
	default:
		return 0, p.errorf("unknown escape \\%c", r)
	}
}

func (p *ronParser) hexEscape(width int) (rune, error) {
	if p.pos+width > len(p.src) {
		return 0, p.errorf("truncated escape")
	}
	digits := p.src[p.pos : p.pos+width]
	p.pos += width
	n, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return 0, p.errorf("invalid escape %q", digits)
	}
	return rune(n), nil
}

func (p *ronParser) number() (value.Value, error) {
	start := p.pos
	if c := p.peek(); c == '-' || c == '+' {
		p.next()
	}
	if isIdentStart(p.peek()) {
		// -inf, +NaN
		word := p.ident()
		if word != "inf" && word != "NaN" {
			return value.Value{}, p.errorf("invalid number %q", p.src[start:p.pos])
		}
		return p.finishFloat(p.src[start:p.pos], "")
	}

	if p.hasPrefix("0x") || p.hasPrefix("0o") || p.hasPrefix("0b") {
		p.pos += 2
		for p.pos < len(p.src) {
			c := p.peek()
			if c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F') {
				p.next()
				continue
			}
			break
		}
		text := p.src[start:p.pos]
		suffix := ""
		if c := p.peek(); c == 'i' || c == 'u' {
			suffix = p.ident()
		}
		return p.finishNumber(text, suffix)
	}

	p.digits()
	if p.peek() == '.' {
		p.next()
		p.digits()
	}
	if c := p.peek(); c == 'e' || c == 'E' {
		p.next()
		if c := p.peek(); c == '-' || c == '+' {
			p.next()
		}
		p.digits()
	}
	text := p.src[start:p.pos]
	suffix := ""
	if isIdentStart(p.peek()) {
		suffix = p.ident()
	}
	return p.finishNumber(text, suffix)
}

func (p *ronParser) digits() {
	for p.pos < len(p.src) {
		c := p.peek()
		if c == '_' || (c >= '0' && c <= '9') {
			p.next()
			continue
		}
		return
	}
}

func (p *ronParser) finishNumber(text, suffix string) (value.Value, error) {
	if suffix == "" {
		v, err := parseNumber(text, p.opts)
		if err != nil {
			return value.Value{}, p.errorf("%s", err.Error())
		}
		return v, nil
	}

	kind, ok := ronSuffixes[suffix]
	if !ok {
		return value.Value{}, p.errorf("unknown number suffix %q", suffix)
	}
	if kind.IsFloat() {
		return p.finishFloat(text, suffix)
	}

	clean := strings.ReplaceAll(text, "_", "")
	base := 10
	if hasRadixPrefix(clean) {
		base = 0
	}
	n, ok := new(big.Int).SetString(clean, base)
	if !ok {
		return value.Value{}, p.errorf("%s is not an integer", text)
	}
	v, err := exactInt(n, kind)
	if err != nil {
		return value.Value{}, p.errorf("%s", err.Error())
	}
	return v, nil
}

// finishFloat converts float text, honouring an explicit f32/f64 suffix.
func (p *ronParser) finishFloat(text, suffix string) (value.Value, error) {
	f, err := strconv.ParseFloat(strings.ReplaceAll(text, "_", ""), 64)
	if err != nil {
		return value.Value{}, p.errorf("invalid float %q", text)
	}
	switch suffix {
	case "f32":
		if !math.IsInf(f, 0) && math.Abs(f) > math.MaxFloat32 {
			return value.Value{}, p.errorf("float %s does not fit in f32", text)
		}
		return value.Float(value.KindF32, f), nil
	case "f64":
		return value.Float(value.KindF64, f), nil
	}
	return fitFloat(f, p.opts.FloatSize), nil
}
