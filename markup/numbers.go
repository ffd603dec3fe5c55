package markup

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	"fortio.org/safecast"

	"github.com/teranos/markgen/errors"
	"github.com/teranos/markgen/value"
)

// signedLadder is the promotion order for integers that overflow the
// preferred width. isize is treated as 64 bits wide.
var signedLadder = []value.Kind{value.KindI8, value.KindI16, value.KindI32, value.KindI64, value.KindI128}

var (
	minI128 = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
	maxI128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	maxU128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
)

func ladderFrom(preferred value.Kind) []value.Kind {
	if preferred == value.KindISize {
		return []value.Kind{value.KindISize, value.KindI128}
	}
	for i, k := range signedLadder {
		if k == preferred {
			return signedLadder[i:]
		}
	}
	return signedLadder[3:]
}

// fitInt returns n at the preferred width, or the first wider signed width
// that holds it.
func fitInt(n int64, preferred value.Kind) value.Value {
	for _, k := range ladderFrom(preferred) {
		if intFits(n, k) {
			return value.Int(k, n)
		}
	}
	return value.Int(value.KindI128, n)
}

func intFits(n int64, kind value.Kind) bool {
	var err error
	switch kind {
	case value.KindI8:
		_, err = safecast.Conv[int8](n)
	case value.KindI16:
		_, err = safecast.Conv[int16](n)
	case value.KindI32:
		_, err = safecast.Conv[int32](n)
	}
	return err == nil
}

// fitUint handles unsigned decoder output, which may exceed int64.
func fitUint(u uint64, preferred value.Kind) value.Value {
	if n, err := safecast.Conv[int64](u); err == nil {
		return fitInt(n, preferred)
	}
	return value.Wide(value.KindI128, new(big.Int).SetUint64(u))
}

// fitBig handles integers of arbitrary size. Anything outside the i128
// range is a parse error.
func fitBig(n *big.Int, preferred value.Kind) (value.Value, error) {
	if n.IsInt64() {
		return fitInt(n.Int64(), preferred), nil
	}
	if n.Cmp(minI128) < 0 || n.Cmp(maxI128) > 0 {
		return value.Value{}, errors.NewParseError("integer %s does not fit in any supported width", n.String())
	}
	return value.Wide(value.KindI128, n), nil
}

// fitFloat returns f at the preferred width, promoting finite values that
// overflow f32 to f64.
func fitFloat(f float64, preferred value.Kind) value.Value {
	if preferred == value.KindF32 {
		if math.IsInf(f, 0) || math.IsNaN(f) || math.Abs(f) <= math.MaxFloat32 {
			return value.Float(value.KindF32, f)
		}
	}
	return value.Float(value.KindF64, f)
}

// exactInt converts n to exactly the given kind, as requested by a typed
// literal suffix. Overflow is a parse error rather than a promotion.
func exactInt(n *big.Int, kind value.Kind) (value.Value, error) {
	overflow := func() (value.Value, error) {
		return value.Value{}, errors.NewParseError("integer %s does not fit in %s", n.String(), kind)
	}

	switch {
	case kind == value.KindI128:
		if n.Cmp(minI128) < 0 || n.Cmp(maxI128) > 0 {
			return overflow()
		}
		return value.Wide(kind, n), nil
	case kind == value.KindU128:
		if n.Sign() < 0 || n.Cmp(maxU128) > 0 {
			return overflow()
		}
		return value.Wide(kind, n), nil
	case kind.IsUnsigned():
		if n.Sign() < 0 || !n.IsUint64() {
			return overflow()
		}
		u := n.Uint64()
		var err error
		switch kind {
		case value.KindU8:
			_, err = safecast.Conv[uint8](u)
		case value.KindU16:
			_, err = safecast.Conv[uint16](u)
		case value.KindU32:
			_, err = safecast.Conv[uint32](u)
		}
		if err != nil {
			return overflow()
		}
		return value.Uint(kind, u), nil
	case kind.IsSigned():
		if !n.IsInt64() {
			return overflow()
		}
		i := n.Int64()
		if kind != value.KindI64 && kind != value.KindISize && !intFits(i, kind) {
			return overflow()
		}
		return value.Int(kind, i), nil
	}
	return value.Value{}, errors.NewParseError("%s is not an integer kind", kind)
}

// parseNumber decodes numeric text: integers (decimal, or 0x/0o/0b
// prefixed, with optional underscores) go through the integer policy and
// everything else through the float policy.
func parseNumber(text string, opts Options) (value.Value, error) {
	clean := strings.ReplaceAll(text, "_", "")
	if !looksFloat(clean) {
		base := 10
		if hasRadixPrefix(clean) {
			base = 0
		}
		if n, ok := new(big.Int).SetString(clean, base); ok {
			return fitBig(n, opts.IntSize)
		}
	}
	f, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		if numErr, ok := err.(*strconv.NumError); ok && numErr.Err == strconv.ErrRange && f == 0 {
			return fitFloat(f, opts.FloatSize), nil
		}
		if numErr, ok := err.(*strconv.NumError); ok && numErr.Err == strconv.ErrRange {
			return value.Value{}, errors.NewParseError("number %s does not fit in f64", text)
		}
		return value.Value{}, errors.NewParseError("invalid number %q", text)
	}
	return fitFloat(f, opts.FloatSize), nil
}

func hasRadixPrefix(s string) bool {
	s = strings.ToLower(strings.TrimLeft(s, "+-"))
	return strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0o") || strings.HasPrefix(s, "0b")
}

// looksFloat reports text that can only be a float: a fraction, an
// exponent, inf or nan. Hex literals may contain 'e' and are integers.
func looksFloat(s string) bool {
	if hasRadixPrefix(s) {
		return false
	}
	return strings.ContainsAny(s, ".eEnN")
}
