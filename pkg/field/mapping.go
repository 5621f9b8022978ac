package field

// ObsCore column names used as coordinate and region roles.
const (
	ObsCoreRA     = "s_ra"
	ObsCoreDec    = "s_dec"
	ObsCoreRegion = "s_region"
)

// Mapping is an ordered mapping from key to Field, one entry per column.
// Keys are the reserved "ra"/"dec" for the resolved coordinate columns and
// the normalized column name otherwise.
type Mapping struct {
	keys    []string
	fields  map[string]Field
	obsCore bool
}

// NewMapping creates an empty mapping.
func NewMapping() *Mapping {
	return &Mapping{fields: make(map[string]Field)}
}

// Set adds or replaces the entry for key. Insertion order is kept.
func (m *Mapping) Set(key string, f Field) {
	if _, ok := m.fields[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.fields[key] = f
}

// Get returns the Field registered under key.
func (m *Mapping) Get(key string) (Field, bool) {
	if m == nil {
		return Field{}, false
	}
	f, ok := m.fields[key]
	return f, ok
}

// Keys returns the keys in column order.
func (m *Mapping) Keys() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of entries.
func (m *Mapping) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// IsObsCore reports whether the mapping was built from an ObsCore table.
func (m *Mapping) IsObsCore() bool {
	return m != nil && m.obsCore
}

// RA returns the right ascension field.
func (m *Mapping) RA() (Field, bool) {
	if m.IsObsCore() {
		return m.Get(ObsCoreRA)
	}
	return m.Get(KeyRA)
}

// Dec returns the declination field.
func (m *Mapping) Dec() (Field, bool) {
	if m.IsObsCore() {
		return m.Get(ObsCoreDec)
	}
	return m.Get(KeyDec)
}

// Region returns the ObsCore s_region field, if any.
func (m *Mapping) Region() (Field, bool) {
	if !m.IsObsCore() {
		return Field{}, false
	}
	return m.Get(ObsCoreRegion)
}

// Parse resolves the coordinate columns and builds the key mapping. The
// resolved columns are stored under "ra" and "dec"; every other column keeps
// its normalized name.
func Parse(cols []Column, raHint, decHint string) *Mapping {
	raIdx, decIdx := Resolve(cols, raHint, decHint)

	m := NewMapping()
	for i, col := range cols {
		name := NormalizeKey(col.Label())
		key := name
		switch i {
		case raIdx:
			key = KeyRA
		case decIdx:
			key = KeyDec
		}
		m.Set(key, Field{Name: name, Index: i})
	}
	return m
}

// IsObsCore reports whether the columns follow the ObsCore data model,
// i.e. carry s_ra and s_dec columns.
func IsObsCore(cols []Column) bool {
	var hasRA, hasDec bool
	for _, col := range cols {
		switch NormalizeKey(col.Label()) {
		case ObsCoreRA:
			hasRA = true
		case ObsCoreDec:
			hasDec = true
		}
	}
	return hasRA && hasDec
}

// ParseObsCore builds a mapping for an ObsCore table. No key is renamed; the
// s_ra, s_dec and s_region columns serve as coordinate and region roles.
func ParseObsCore(cols []Column) *Mapping {
	m := NewMapping()
	m.obsCore = true
	for i, col := range cols {
		name := NormalizeKey(col.Label())
		m.Set(name, Field{Name: name, Index: i})
	}
	return m
}

// ParseAuto picks ParseObsCore for ObsCore tables and Parse otherwise.
func ParseAuto(cols []Column, raHint, decHint string) *Mapping {
	if raHint == "" && decHint == "" && IsObsCore(cols) {
		return ParseObsCore(cols)
	}
	return Parse(cols, raHint, decHint)
}
