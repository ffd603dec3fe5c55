package value

// Field is one key/value pair of a Record.
type Field struct {
	Key   string
	Value Value
}

// Record is a string-keyed mapping that remembers insertion order.
type Record struct {
	fields []Field
	index  map[string]int
}

// NewRecord returns an empty record.
func NewRecord() *Record {
	return &Record{index: make(map[string]int)}
}

// RecordOf builds a record from pairs in order. A repeated key replaces the
// earlier value and keeps the earlier position.
func RecordOf(fields ...Field) *Record {
	r := NewRecord()
	for _, f := range fields {
		r.Set(f.Key, f.Value)
	}
	return r
}

// Set inserts key at the end, or replaces its value in place if present.
func (r *Record) Set(key string, v Value) {
	if i, ok := r.index[key]; ok {
		r.fields[i].Value = v
		return
	}
	r.index[key] = len(r.fields)
	r.fields = append(r.fields, Field{Key: key, Value: v})
}

// Get returns the value stored under key.
func (r *Record) Get(key string) (Value, bool) {
	if r == nil {
		return Value{}, false
	}
	i, ok := r.index[key]
	if !ok {
		return Value{}, false
	}
	return r.fields[i].Value, true
}

// Has reports whether key is present.
func (r *Record) Has(key string) bool {
	if r == nil {
		return false
	}
	_, ok := r.index[key]
	return ok
}

// Len returns the number of fields.
func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.fields)
}

// Keys returns the keys in insertion order.
func (r *Record) Keys() []string {
	if r == nil {
		return nil
	}
	keys := make([]string, len(r.fields))
	for i, f := range r.fields {
		keys[i] = f.Key
	}
	return keys
}

// Values returns the values in insertion order.
func (r *Record) Values() []Value {
	if r == nil {
		return nil
	}
	values := make([]Value, len(r.fields))
	for i, f := range r.fields {
		values[i] = f.Value
	}
	return values
}

// Fields returns the fields in insertion order. The slice aliases r: values
// may be rewritten in place but keys must not change.
func (r *Record) Fields() []Field {
	if r == nil {
		return nil
	}
	return r.fields
}
