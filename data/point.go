package data

// Point is one observation: a fixed-length numeric feature vector and a
// fixed-length categorical feature vector holding category indexes.
// The per-row weight lives at the dataset level, not inside the point,
// so weights can be rewritten without touching feature data.
//
// Points added to a store are treated as immutable; derivations that
// need ownership of the arrays call Clone.
type Point struct {
	Numeric     []float64
	Categorical []int
}

// NewPoint builds a point over the given feature arrays. The arrays are
// used as-is, not copied.
func NewPoint(numeric []float64, categorical []int) Point {
	return Point{Numeric: numeric, Categorical: categorical}
}

// NumNumeric returns the number of numeric features.
func (p Point) NumNumeric() int {
	return len(p.Numeric)
}

// NumCategorical returns the number of categorical features.
func (p Point) NumCategorical() int {
	return len(p.Categorical)
}

// Clone returns a point with freshly allocated feature arrays.
func (p Point) Clone() Point {
	num := make([]float64, len(p.Numeric))
	copy(num, p.Numeric)
	cat := make([]int, len(p.Categorical))
	copy(cat, p.Categorical)
	return Point{Numeric: num, Categorical: cat}
}

// Equal reports feature-wise equality with q.
func (p Point) Equal(q Point) bool {
	if len(p.Numeric) != len(q.Numeric) || len(p.Categorical) != len(q.Categorical) {
		return false
	}
	for i, v := range p.Numeric {
		if v != q.Numeric[i] {
			return false
		}
	}
	for i, v := range p.Categorical {
		if v != q.Categorical[i] {
			return false
		}
	}
	return true
}
