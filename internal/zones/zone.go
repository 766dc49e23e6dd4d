package zones

// Zone is an immutable rectangle with a stable index inside a Layout.
// Validity is decided once at construction.
type Zone struct {
	rect  Rect
	id    int
	valid bool
}

// NewZone creates a zone. Inverted or zero-area rectangles and negative ids
// produce a zone whose IsValid reports false.
func NewZone(rect Rect, id int) Zone {
	return Zone{
		rect:  rect,
		id:    id,
		valid: id >= 0 && rect.Left < rect.Right && rect.Top < rect.Bottom,
	}
}

func (z Zone) IsValid() bool { return z.valid }
func (z Zone) Rect() Rect    { return z.rect }
func (z Zone) ID() int       { return z.id }
