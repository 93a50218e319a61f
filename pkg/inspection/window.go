package inspection

import "image"

// Window is an axis-aligned crop rectangle applied identically to every plane
// of a volume. X runs along plane rows and Y along plane columns; both ranges
// are half-open.
type Window struct {
	MinX, MaxX int
	MinY, MaxY int
}

// Width returns the window's x-axis (row) extent.
func (w Window) Width() int { return w.MaxX - w.MinX }

// Height returns the window's y-axis (column) extent.
func (w Window) Height() int { return w.MaxY - w.MinY }

// Rect converts the window to image coordinates, where the horizontal image
// axis corresponds to plane columns and the vertical axis to plane rows.
func (w Window) Rect() image.Rectangle {
	return image.Rect(w.MinY, w.MinX, w.MaxY, w.MaxX)
}

// ClampWindow computes a [lower, upper) index range of the preferred size
// 2*halfWindow around centroid, kept inside [0, extent). The four branches
// are evaluated in order and the first match wins:
//
//  1. the centered window fits: use it unchanged;
//  2. it underruns the low edge but a full-size window fits: pin to the low
//     edge, keeping the full size;
//  3. it overruns the high edge but a full-size window fits: pin to the high
//     edge, keeping the full size;
//  4. the axis is narrower than the window: return the whole axis.
//
// Branches 2 and 3 only fire when the full window still fits after shifting,
// so a near-edge centroid never shrinks the window on a large axis.
func ClampWindow(centroid, extent, halfWindow int) (lower, upper int) {
	switch {
	case centroid-halfWindow >= 0 && centroid+halfWindow <= extent:
		return centroid - halfWindow, centroid + halfWindow
	case centroid-halfWindow < 0 && 2*halfWindow <= extent:
		return 0, 2 * halfWindow
	case centroid-2*halfWindow >= 0 && centroid+halfWindow > extent:
		return extent - 2*halfWindow, extent
	default:
		return 0, extent
	}
}
