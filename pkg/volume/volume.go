// Package volume provides the label volume container used throughout the
// inspection pipeline. A volume is an ordered stack of same-shape 2D integer
// planes; the value 0 denotes background and any other value identifies one
// reconstructed cell instance, shared across every plane it appears on.
package volume

import (
	"errors"
	"fmt"
	"sort"
)

// ErrMalformedVolume is returned when a volume cannot be constructed from the
// supplied planes: the stack is empty, a plane is empty, or plane shapes are
// inconsistent. Validation happens at construction so the geometric code can
// assume well-formed input.
var ErrMalformedVolume = errors.New("malformed label volume")

// Volume is a read-only stack of 2D integer label planes.
//
// Data is stored as a flat array in plane-major order, addressed by
// (plane, x, y) where x runs along plane rows and y along plane columns.
// The crop operations always allocate a fresh volume; a Volume handed to the
// pipeline is never mutated.
type Volume struct {
	// data holds the label values in plane-major, row-major order
	data []int32

	// depth is the number of planes in the stack
	depth int

	// rows and cols are the per-plane dimensions (x and y axis extents)
	rows int
	cols int
}

// New creates a zero-filled volume with the given dimensions.
func New(depth, rows, cols int) (*Volume, error) {
	if depth <= 0 || rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: non-positive dimensions %dx%dx%d", ErrMalformedVolume, depth, rows, cols)
	}
	return &Volume{
		data:  make([]int32, depth*rows*cols),
		depth: depth,
		rows:  rows,
		cols:  cols,
	}, nil
}

// FromPlanes builds a volume from a stack of 2D planes, validating that every
// plane has the same non-empty shape.
func FromPlanes(planes [][][]int32) (*Volume, error) {
	if len(planes) == 0 {
		return nil, fmt.Errorf("%w: empty plane stack", ErrMalformedVolume)
	}
	rows := len(planes[0])
	if rows == 0 {
		return nil, fmt.Errorf("%w: plane 0 has no rows", ErrMalformedVolume)
	}
	cols := len(planes[0][0])
	if cols == 0 {
		return nil, fmt.Errorf("%w: plane 0 has no columns", ErrMalformedVolume)
	}

	v, err := New(len(planes), rows, cols)
	if err != nil {
		return nil, err
	}
	for p, plane := range planes {
		if len(plane) != rows {
			return nil, fmt.Errorf("%w: plane %d has %d rows, expected %d", ErrMalformedVolume, p, len(plane), rows)
		}
		for r, row := range plane {
			if len(row) != cols {
				return nil, fmt.Errorf("%w: plane %d row %d has %d columns, expected %d", ErrMalformedVolume, p, r, len(row), cols)
			}
			copy(v.data[p*rows*cols+r*cols:], row)
		}
	}
	return v, nil
}

// Depth returns the number of planes in the stack.
func (v *Volume) Depth() int { return v.depth }

// Rows returns the x-axis extent of each plane.
func (v *Volume) Rows() int { return v.rows }

// Cols returns the y-axis extent of each plane.
func (v *Volume) Cols() int { return v.cols }

// At returns the label value at (plane, x, y).
func (v *Volume) At(plane, x, y int) int32 {
	return v.data[plane*v.rows*v.cols+x*v.cols+y]
}

// Set writes the label value at (plane, x, y). It is intended for volume
// construction; the inspection pipeline itself never mutates a volume.
func (v *Volume) Set(plane, x, y int, value int32) {
	v.data[plane*v.rows*v.cols+x*v.cols+y] = value
}

// Plane returns a lightweight read-only view of a single plane.
func (v *Volume) Plane(index int) Plane {
	return Plane{vol: v, index: index}
}

// UniqueLabels returns the distinct non-zero label values present anywhere in
// the volume, in ascending numeric order.
func (v *Volume) UniqueLabels() []int32 {
	seen := make(map[int32]struct{})
	for _, val := range v.data {
		if val != 0 {
			seen[val] = struct{}{}
		}
	}
	labels := make([]int32, 0, len(seen))
	for label := range seen {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })
	return labels
}

// PlanesWithLabel returns the ordered plane indices on which the given label
// appears. The result is empty if the label is absent from the volume.
func (v *Volume) PlanesWithLabel(label int32) []int {
	var planes []int
	stride := v.rows * v.cols
	for p := 0; p < v.depth; p++ {
		for i := p * stride; i < (p+1)*stride; i++ {
			if v.data[i] == label {
				planes = append(planes, p)
				break
			}
		}
	}
	return planes
}

// Crop copies the half-open sub-rectangle [minX,maxX) x [minY,maxY) out of
// every plane into a fresh volume. The source volume is left untouched.
func (v *Volume) Crop(minX, maxX, minY, maxY int) (*Volume, error) {
	if minX < 0 || minY < 0 || maxX > v.rows || maxY > v.cols || minX >= maxX || minY >= maxY {
		return nil, fmt.Errorf("%w: crop [%d,%d)x[%d,%d) outside %dx%d planes",
			ErrMalformedVolume, minX, maxX, minY, maxY, v.rows, v.cols)
	}
	out, err := New(v.depth, maxX-minX, maxY-minY)
	if err != nil {
		return nil, err
	}
	for p := 0; p < v.depth; p++ {
		for x := minX; x < maxX; x++ {
			srcOff := p*v.rows*v.cols + x*v.cols + minY
			dstOff := p*out.rows*out.cols + (x-minX)*out.cols
			copy(out.data[dstOff:dstOff+out.cols], v.data[srcOff:srcOff+(maxY-minY)])
		}
	}
	return out, nil
}

// Plane is a read-only view of one plane of a Volume.
type Plane struct {
	vol   *Volume
	index int
}

// Index returns the plane's position in the stack.
func (p Plane) Index() int { return p.index }

// Rows returns the plane's x-axis extent.
func (p Plane) Rows() int { return p.vol.rows }

// Cols returns the plane's y-axis extent.
func (p Plane) Cols() int { return p.vol.cols }

// At returns the label value at (x, y) on this plane.
func (p Plane) At(x, y int) int32 {
	return p.vol.At(p.index, x, y)
}

// Has reports whether the given label appears anywhere on this plane.
func (p Plane) Has(label int32) bool {
	for x := 0; x < p.Rows(); x++ {
		for y := 0; y < p.Cols(); y++ {
			if p.At(x, y) == label {
				return true
			}
		}
	}
	return false
}
