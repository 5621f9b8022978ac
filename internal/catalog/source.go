package catalog

// Source is one row of a catalog: a sky position plus the row's values.
// A source belongs to at most one catalog.
type Source struct {
	RA       float64        `json:"ra"`
	Dec      float64        `json:"dec"`
	Data     map[string]any `json:"data"`
	RowIndex int            `json:"row_index"`

	// X and Y hold the screen position computed by the last draw.
	X float64 `json:"-"`
	Y float64 `json:"-"`

	catalog *Catalog

	selected bool
	hovered  bool
	showing  bool

	hasFootprint      bool
	tooSmallFootprint bool

	marker               bool
	useMarkerDefaultIcon bool
}

// NewSource creates a visible, unattached source.
func NewSource(ra, dec float64, data map[string]any) *Source {
	if data == nil {
		data = make(map[string]any)
	}
	return &Source{RA: ra, Dec: dec, Data: data, RowIndex: -1, showing: true}
}

// Catalog returns the owning catalog, or nil.
func (s *Source) Catalog() *Catalog { return s.catalog }

func (s *Source) IsSelected() bool { return s.selected }
func (s *Source) IsHovered() bool  { return s.hovered }
func (s *Source) IsShowing() bool  { return s.showing }

// HasFootprint reports whether the last footprint computation produced a
// footprint for this source.
func (s *Source) HasFootprint() bool { return s.hasFootprint }

// Select marks the source as selected.
func (s *Source) Select() {
	if s.selected {
		return
	}
	s.selected = true
	s.changed()
}

// Deselect clears the selection.
func (s *Source) Deselect() {
	if !s.selected {
		return
	}
	s.selected = false
	s.changed()
}

// Hover marks the source as hovered.
func (s *Source) Hover() {
	if s.hovered {
		return
	}
	s.hovered = true
	s.changed()
}

// Unhover clears the hover state.
func (s *Source) Unhover() {
	if !s.hovered {
		return
	}
	s.hovered = false
	s.changed()
}

// Show makes the source visible.
func (s *Source) Show() {
	if s.showing {
		return
	}
	s.showing = true
	s.changed()
}

// Hide stops the source from being drawn.
func (s *Source) Hide() {
	if !s.showing {
		return
	}
	s.showing = false
	s.changed()
}

// SetMarker turns the source into a marker. With useDefaultIcon the source
// is drawn with the catalog's marker icon instead of its stamp.
func (s *Source) SetMarker(useDefaultIcon bool) {
	s.marker = true
	s.useMarkerDefaultIcon = useDefaultIcon
	s.changed()
}

// IsMarker reports whether SetMarker was called.
func (s *Source) IsMarker() bool { return s.marker }

func (s *Source) changed() {
	if s.catalog != nil {
		s.catalog.reportChange()
	}
}
