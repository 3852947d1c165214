package data

import (
	"fmt"

	"github.com/YuminosukeSato/ensgo/pkg/errors"
)

// Layout identifies the physical organization of a store.
type Layout int

const (
	// RowMajor stores a sequence of points; natural for per-row
	// iteration and cheap row subsetting.
	RowMajor Layout = iota
	// ColumnMajor stores one array per feature; reconstructing a row
	// gathers one value from every column.
	ColumnMajor
)

// String returns the layout name used in logs.
func (l Layout) String() string {
	switch l {
	case RowMajor:
		return "row_major"
	case ColumnMajor:
		return "column_major"
	default:
		return fmt.Sprintf("layout(%d)", int(l))
	}
}

// Store is the physical container for a collection of points. It owns
// the feature storage and reports its layout so callers can pick the
// layout-aware access pattern.
//
// Point(i) panics when i is outside [0, Size()), mirroring slice and
// gonum indexing. Operations taking caller-supplied index lists validate
// them first and return IndexError instead.
type Store interface {
	// Layout reports the physical layout.
	Layout() Layout
	// Size returns the number of stored points.
	Size() int
	// NumNumeric returns the numeric feature count of the schema.
	NumNumeric() int
	// Categories returns the categorical descriptors of the schema.
	// Callers must not modify the returned slice.
	Categories() []*Categorical
	// Point returns the point at index i. Row-major stores return the
	// stored point, sharing its backing arrays; column-major stores
	// gather into freshly allocated arrays.
	Point(i int) Point
	// Add appends a point after validating it against the schema.
	Add(p Point) error
	// EmptyClone returns a new empty store with the same schema and layout.
	EmptyClone() Store
	// Clone returns a deep copy of the store.
	Clone() Store
}

// NewStore returns an empty store of the requested layout.
func NewStore(layout Layout, numNumeric int, categories []*Categorical) Store {
	if layout == ColumnMajor {
		return NewColumnStore(numNumeric, categories)
	}
	return NewRowStore(numNumeric, categories)
}

// validatePoint checks a point's shape and categorical values against a
// schema. op names the calling operation for error messages.
func validatePoint(op string, numNumeric int, categories []*Categorical, p Point) error {
	if len(p.Numeric) != numNumeric {
		return errors.NewDimensionError(op, numNumeric, len(p.Numeric), 1)
	}
	if len(p.Categorical) != len(categories) {
		return errors.NewDimensionError(op, len(categories), len(p.Categorical), 1)
	}
	for j, v := range p.Categorical {
		if !categories[j].Valid(v) {
			return errors.NewValueError(op,
				fmt.Sprintf("categorical feature %d: value %d outside [0, %d)", j, v, categories[j].Cardinality()))
		}
	}
	return nil
}

// copyCategories snapshots a descriptor slice. The descriptors
// themselves are immutable and stay shared by pointer.
func copyCategories(categories []*Categorical) []*Categorical {
	out := make([]*Categorical, len(categories))
	copy(out, categories)
	return out
}

// RowStore keeps points as a sequence, one entry per observation.
type RowStore struct {
	numNumeric int
	categories []*Categorical
	points     []Point
}

// NewRowStore creates an empty row-major store for the given schema.
func NewRowStore(numNumeric int, categories []*Categorical) *RowStore {
	return &RowStore{
		numNumeric: numNumeric,
		categories: copyCategories(categories),
	}
}

// Layout implements Store.
func (s *RowStore) Layout() Layout { return RowMajor }

// Size implements Store.
func (s *RowStore) Size() int { return len(s.points) }

// NumNumeric implements Store.
func (s *RowStore) NumNumeric() int { return s.numNumeric }

// Categories implements Store.
func (s *RowStore) Categories() []*Categorical { return s.categories }

// Point implements Store. The returned point shares the stored arrays.
func (s *RowStore) Point(i int) Point {
	if i < 0 || i >= len(s.points) {
		panic(fmt.Sprintf("data: RowStore.Point: index %d out of range [0, %d)", i, len(s.points)))
	}
	return s.points[i]
}

// Add implements Store.
func (s *RowStore) Add(p Point) error {
	if err := validatePoint("RowStore.Add", s.numNumeric, s.categories, p); err != nil {
		return err
	}
	s.points = append(s.points, p)
	return nil
}

// EmptyClone implements Store.
func (s *RowStore) EmptyClone() Store {
	return NewRowStore(s.numNumeric, s.categories)
}

// Clone implements Store.
func (s *RowStore) Clone() Store {
	out := NewRowStore(s.numNumeric, s.categories)
	out.points = make([]Point, len(s.points))
	for i, p := range s.points {
		out.points[i] = p.Clone()
	}
	return out
}

// ColumnStore keeps one array per feature. Row i is spread across all
// column arrays at offset i.
type ColumnStore struct {
	categories  []*Categorical
	numeric     [][]float64
	categorical [][]int
	size        int
}

// NewColumnStore creates an empty column-major store for the given schema.
func NewColumnStore(numNumeric int, categories []*Categorical) *ColumnStore {
	return &ColumnStore{
		categories:  copyCategories(categories),
		numeric:     make([][]float64, numNumeric),
		categorical: make([][]int, len(categories)),
	}
}

// Layout implements Store.
func (s *ColumnStore) Layout() Layout { return ColumnMajor }

// Size implements Store.
func (s *ColumnStore) Size() int { return s.size }

// NumNumeric implements Store.
func (s *ColumnStore) NumNumeric() int { return len(s.numeric) }

// Categories implements Store.
func (s *ColumnStore) Categories() []*Categorical { return s.categories }

// Point implements Store. Each call gathers one value per column into
// freshly allocated arrays owned by the caller.
func (s *ColumnStore) Point(i int) Point {
	if i < 0 || i >= s.size {
		panic(fmt.Sprintf("data: ColumnStore.Point: index %d out of range [0, %d)", i, s.size))
	}
	num := make([]float64, len(s.numeric))
	for j, col := range s.numeric {
		num[j] = col[i]
	}
	cat := make([]int, len(s.categorical))
	for j, col := range s.categorical {
		cat[j] = col[i]
	}
	return Point{Numeric: num, Categorical: cat}
}

// Add implements Store.
func (s *ColumnStore) Add(p Point) error {
	if err := validatePoint("ColumnStore.Add", len(s.numeric), s.categories, p); err != nil {
		return err
	}
	for j := range s.numeric {
		s.numeric[j] = append(s.numeric[j], p.Numeric[j])
	}
	for j := range s.categorical {
		s.categorical[j] = append(s.categorical[j], p.Categorical[j])
	}
	s.size++
	return nil
}

// EmptyClone implements Store.
func (s *ColumnStore) EmptyClone() Store {
	return NewColumnStore(len(s.numeric), s.categories)
}

// Clone implements Store.
func (s *ColumnStore) Clone() Store {
	out := NewColumnStore(len(s.numeric), s.categories)
	for j, col := range s.numeric {
		out.numeric[j] = append([]float64(nil), col...)
	}
	for j, col := range s.categorical {
		out.categorical[j] = append([]int(nil), col...)
	}
	out.size = s.size
	return out
}

