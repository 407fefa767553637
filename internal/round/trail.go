package round

// Trail is a fixed-capacity ring buffer of recent pointer positions.
// It is used for drawing only; collisions never consult it.
type Trail struct {
	points []Point
	head   int
	count  int
}

// NewTrail creates a trail holding at most capacity points.
func NewTrail(capacity int) *Trail {
	return &Trail{
		points: make([]Point, capacity),
	}
}

// Push appends p, evicting the oldest point when full.
func (t *Trail) Push(p Point) {
	t.points[t.head] = p
	t.head = (t.head + 1) % len(t.points)
	if t.count < len(t.points) {
		t.count++
	}
}

// Points returns the stored points oldest first.
func (t *Trail) Points() []Point {
	n := len(t.points)
	result := make([]Point, t.count)
	for i := 0; i < t.count; i++ {
		idx := (t.head - t.count + i + n) % n
		result[i] = t.points[idx]
	}
	return result
}

// Len returns the number of stored points.
func (t *Trail) Len() int {
	return t.count
}

// Cap returns the trail capacity.
func (t *Trail) Cap() int {
	return len(t.points)
}

// Clear drops every point.
func (t *Trail) Clear() {
	t.head = 0
	t.count = 0
}
