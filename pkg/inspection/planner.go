package inspection

import (
	"fmt"
	"math"

	"cellinspect/pkg/geometry"
	"cellinspect/pkg/volume"
)

// PlanCrop computes the crop window for one instance: the boundary centroid
// of labelID on planeID is rounded to the nearest integer per axis, then
// clamped against the plane extents so the window prefers the full
// 2*halfWindow size. The same window is applied to all planes of the volume
// and to any co-registered companion stacks to keep them spatially aligned.
func PlanCrop(vol *volume.Volume, labelID int32, planeID, halfWindow int) (Window, error) {
	contour, err := geometry.BoundaryOf(vol.Plane(planeID), labelID)
	if err != nil {
		return Window{}, fmt.Errorf("planning crop for label %d: %w", labelID, err)
	}

	cx, cy := contour.Centroid()
	centroidX := int(math.Round(cx))
	centroidY := int(math.Round(cy))

	var win Window
	win.MinX, win.MaxX = ClampWindow(centroidX, vol.Rows(), halfWindow)
	win.MinY, win.MaxY = ClampWindow(centroidY, vol.Cols(), halfWindow)
	return win, nil
}
