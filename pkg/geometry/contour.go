// Package geometry extracts polygon boundaries from label planes. The
// boundary of a label's region is traced as a closed contour whose vertices
// are pixel-center coordinates, with X running along plane rows and Y along
// plane columns to match the volume's (plane, x, y) addressing.
package geometry

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"gonum.org/v1/gonum/stat"

	"cellinspect/pkg/volume"
)

// ErrEmptyLabelOnPlane is returned when a boundary is requested for a label
// that has no pixels on the queried plane. Callers are expected to only query
// planes on which the label is known to be present, so hitting this error
// indicates a bookkeeping bug upstream.
var ErrEmptyLabelOnPlane = errors.New("label not present on plane")

// Contour is the closed external boundary of one label region on one plane.
type Contour struct {
	// Ring holds the boundary vertices in traversal order, with runs of
	// collinear pixels collapsed to their endpoints. The ring is closed:
	// its first and last points are identical.
	Ring orb.Ring

	// trace is the full pixel sequence of the boundary walk, kept so the
	// centroid weights every boundary pixel rather than just the corners.
	trace orb.Ring
}

// BoundaryOf traces the external contour of the region carrying labelID on
// the given plane using Moore-Neighbor tracing.
//
// If the label's pixels form multiple disconnected regions on the plane, the
// boundary of the largest 4-connected component is returned; ties are broken
// by the component whose first pixel comes earliest in row-major order. This
// keeps fragmented labels deterministic without enclosing foreign pixels the
// way a union hull would.
func BoundaryOf(plane volume.Plane, labelID int32) (Contour, error) {
	comp, err := largestComponent(plane, labelID)
	if err != nil {
		return Contour{}, err
	}
	trace := traceBoundary(comp)
	return Contour{Ring: simplifyRing(trace), trace: trace}, nil
}

// Centroid returns the arithmetic centroid of the traced boundary pixels.
func (c Contour) Centroid() (x, y float64) {
	pts := c.trace
	if len(pts) == 0 {
		pts = c.Ring
	}
	// Skip the duplicated closing vertex so it is not double-weighted.
	if len(pts) > 1 && pts[0] == pts[len(pts)-1] {
		pts = pts[:len(pts)-1]
	}
	xs := make([]float64, len(pts))
	ys := make([]float64, len(pts))
	for i, pt := range pts {
		xs[i] = pt[0]
		ys[i] = pt[1]
	}
	return stat.Mean(xs, nil), stat.Mean(ys, nil)
}

// Coords returns the boundary vertex coordinates as parallel x and y slices,
// including the duplicated closing vertex.
func (c Contour) Coords() (xs, ys []float64) {
	xs = make([]float64, len(c.Ring))
	ys = make([]float64, len(c.Ring))
	for i, pt := range c.Ring {
		xs[i] = pt[0]
		ys[i] = pt[1]
	}
	return xs, ys
}

// component is a binary raster holding one connected region of a label.
type component struct {
	mask []bool
	rows int
	cols int
	// startX, startY is the component's first pixel in row-major order
	startX int
	startY int
}

func (c *component) at(x, y int) bool {
	if x < 0 || y < 0 || x >= c.rows || y >= c.cols {
		return false
	}
	return c.mask[x*c.cols+y]
}

// largestComponent isolates the mask plane == labelID and returns its largest
// 4-connected component.
func largestComponent(plane volume.Plane, labelID int32) (*component, error) {
	rows, cols := plane.Rows(), plane.Cols()
	labeled := make([]int, rows*cols)

	next := 0
	bestID, bestSize := -1, 0
	bestStart := 0
	for x := 0; x < rows; x++ {
		for y := 0; y < cols; y++ {
			idx := x*cols + y
			if plane.At(x, y) != labelID || labeled[idx] != 0 {
				continue
			}
			next++
			size := floodFill(plane, labeled, labelID, x, y, next)
			if size > bestSize {
				bestID, bestSize, bestStart = next, size, idx
			}
		}
	}
	if bestID < 0 {
		return nil, fmt.Errorf("%w: label %d, plane %d", ErrEmptyLabelOnPlane, labelID, plane.Index())
	}

	comp := &component{
		mask:   make([]bool, rows*cols),
		rows:   rows,
		cols:   cols,
		startX: bestStart / cols,
		startY: bestStart % cols,
	}
	for i, id := range labeled {
		if id == bestID {
			comp.mask[i] = true
		}
	}
	return comp, nil
}

// floodFill marks the 4-connected component containing (x, y) with id and
// returns its pixel count.
func floodFill(plane volume.Plane, labeled []int, labelID int32, x, y, id int) int {
	cols := plane.Cols()
	stack := [][2]int{{x, y}}
	labeled[x*cols+y] = id
	size := 0
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		size++
		for _, d := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
			nx, ny := cur[0]+d[0], cur[1]+d[1]
			if nx < 0 || ny < 0 || nx >= plane.Rows() || ny >= cols {
				continue
			}
			idx := nx*cols + ny
			if labeled[idx] == 0 && plane.At(nx, ny) == labelID {
				labeled[idx] = id
				stack = append(stack, [2]int{nx, ny})
			}
		}
	}
	return size
}

// moore lists the 8-neighborhood in clockwise order for image coordinates
// with x growing down rows and y growing across columns.
var moore = [8][2]int{
	{0, 1},   // E
	{1, 1},   // SE
	{1, 0},   // S
	{1, -1},  // SW
	{0, -1},  // W
	{-1, -1}, // NW
	{-1, 0},  // N
	{-1, 1},  // NE
}

// traceBoundary walks the external contour of the component with
// Moore-Neighbor tracing and returns every visited pixel in order. The walk
// state (current pixel, backtrack pixel) fully determines every following
// step, so the trace terminates when the state of the first move recurs,
// which happens exactly once per full loop around the boundary.
func traceBoundary(comp *component) orb.Ring {
	start := [2]int{comp.startX, comp.startY}
	// The start pixel is the first in row-major order, so its west neighbor
	// is guaranteed to be outside the component.
	startBack := [2]int{comp.startX, comp.startY - 1}

	trace := orb.Ring{{float64(start[0]), float64(start[1])}}

	first, firstBack, found := nextBoundaryPixel(comp, start, startBack)
	if !found {
		// Isolated single pixel.
		return trace
	}
	cur, back := first, firstBack
	trace = append(trace, orb.Point{float64(cur[0]), float64(cur[1])})

	maxSteps := 4*comp.rows*comp.cols + 8
	for steps := 0; steps < maxSteps; steps++ {
		next, nextBack, _ := nextBoundaryPixel(comp, cur, back)
		if next == first && nextBack == firstBack {
			break
		}
		cur, back = next, nextBack
		trace = append(trace, orb.Point{float64(cur[0]), float64(cur[1])})
	}

	// Close the trace.
	if len(trace) > 1 && trace[0] != trace[len(trace)-1] {
		trace = append(trace, trace[0])
	}
	return trace
}

// simplifyRing collapses runs of collinear pixels, keeping only their
// endpoints. A vertex is dropped only when it lies strictly between its
// neighbors: a zero cross product alone also matches 180-degree reversals,
// and those turnaround vertices carry the full extent of one-pixel-wide
// regions, so they must stay.
func simplifyRing(trace orb.Ring) orb.Ring {
	ring := make(orb.Ring, 0, len(trace))
	for _, pt := range trace {
		n := len(ring)
		if n >= 2 {
			a, b := ring[n-2], ring[n-1]
			cross := (b[0]-a[0])*(pt[1]-b[1]) - (b[1]-a[1])*(pt[0]-b[0])
			dot := (b[0]-a[0])*(pt[0]-b[0]) + (b[1]-a[1])*(pt[1]-b[1])
			if cross == 0 && dot > 0 {
				ring = ring[:n-1]
			}
		}
		ring = append(ring, pt)
	}
	return ring
}

// nextBoundaryPixel scans the Moore neighborhood of cur clockwise, starting
// just after the backtrack position, and returns the first component pixel
// together with the free pixel visited immediately before it.
func nextBoundaryPixel(comp *component, cur, back [2]int) (next, nextBack [2]int, found bool) {
	startDir := 0
	for i, d := range moore {
		if cur[0]+d[0] == back[0] && cur[1]+d[1] == back[1] {
			startDir = i
			break
		}
	}
	prev := back
	for i := 1; i <= 8; i++ {
		d := moore[(startDir+i)%8]
		nx, ny := cur[0]+d[0], cur[1]+d[1]
		if comp.at(nx, ny) {
			return [2]int{nx, ny}, prev, true
		}
		prev = [2]int{nx, ny}
	}
	return cur, back, false
}
