package value

// Unify normalizes sibling values so they can share one inferred type.
//
// Children are unified first, depth-first: an optional's payload, each tuple
// slot on its own, the elements of every array or list as one group, and each
// record field on its own. Then, if any value in values is optional, every
// non-optional sibling is wrapped in Some. No other coercion happens: mixed
// numeric kinds stay mixed and are reported later by shape inference.
//
// Values are rewritten in place. The error return is reserved for rules that
// can reject a group; the current rules never do.
func Unify(values []Value) error {
	for i := range values {
		if err := unifyValue(&values[i]); err != nil {
			return err
		}
	}

	anyOptional := false
	for _, v := range values {
		if v.kind == KindOption {
			anyOptional = true
			break
		}
	}
	if !anyOptional {
		return nil
	}
	for i, v := range values {
		if v.kind != KindOption {
			values[i] = Some(v)
		}
	}
	return nil
}

// UnifyValue unifies every group nested inside v.
func UnifyValue(v *Value) error {
	return unifyValue(v)
}

func unifyValue(v *Value) error {
	switch v.kind {
	case KindOption:
		if len(v.items) == 1 {
			return unifyValue(&v.items[0])
		}
	case KindTuple:
		for i := range v.items {
			if err := unifyValue(&v.items[i]); err != nil {
				return err
			}
		}
	case KindArray, KindList:
		return Unify(v.items)
	case KindRecord:
		fields := v.rec.Fields()
		for i := range fields {
			if err := unifyValue(&fields[i].Value); err != nil {
				return err
			}
		}
	}
	return nil
}
