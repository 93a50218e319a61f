package inspection

import (
	"fmt"

	"cellinspect/pkg/geometry"
	"cellinspect/pkg/palette"
	"cellinspect/pkg/render"
	"cellinspect/pkg/volume"
)

// BuildPlotInfo computes the overlay drawing data for an already-cropped
// volume: colors are assigned once for the cropped volume's whole label set,
// then every (plane, label) pair where the label actually appears gets its
// boundary coordinates recorded under that pair. Labels absent from a plane
// contribute no entry for that plane. The function is pure; it never touches
// state outside the volume it is given.
func BuildPlotInfo(cropped *volume.Volume) (render.PlotInfo, error) {
	labels := cropped.UniqueLabels()
	colors := palette.Assign(labels)

	info := make(render.PlotInfo, cropped.Depth())
	for z := 0; z < cropped.Depth(); z++ {
		info[z] = make(map[int32]render.Overlay)
	}

	for _, labelID := range labels {
		for _, z := range cropped.PlanesWithLabel(labelID) {
			contour, err := geometry.BoundaryOf(cropped.Plane(z), labelID)
			if err != nil {
				return nil, fmt.Errorf("plot info for label %d, plane %d: %w", labelID, z, err)
			}
			xs, ys := contour.Coords()
			info[z][labelID] = render.Overlay{
				Color:   colors[labelID],
				XCoords: xs,
				YCoords: ys,
			}
		}
	}
	return info, nil
}
