package inspection

import (
	"errors"
	"fmt"

	"cellinspect/pkg/volume"
)

// ErrLabelIndexOutOfRange is returned when an inspection request names a
// label ordinal outside the volume's unique non-background label count.
var ErrLabelIndexOutOfRange = errors.New("label index out of range")

// SelectLabel resolves a label ordinal to a concrete label id. The ordinal
// indexes the volume's unique non-zero labels in ascending numeric order.
func SelectLabel(vol *volume.Volume, labelIndex int) (int32, error) {
	labels := vol.UniqueLabels()
	if labelIndex < 0 || labelIndex >= len(labels) {
		return 0, fmt.Errorf("%w: index %d, volume has %d labels", ErrLabelIndexOutOfRange, labelIndex, len(labels))
	}
	return labels[labelIndex], nil
}

// RepresentativePlane picks the plane used to represent a 3D instance in the
// 2D comparison figure. For a label present on a single plane that plane is
// returned; otherwise the positional midpoint of the ordered plane list,
// planes[len(planes)/2], is used. The midpoint rule is positional, not a true
// median, and is kept exactly for reproducibility of saved figures.
func RepresentativePlane(vol *volume.Volume, labelID int32) (int, error) {
	planes := vol.PlanesWithLabel(labelID)
	if len(planes) == 0 {
		return 0, fmt.Errorf("label %d not present in volume", labelID)
	}
	if len(planes) == 1 {
		return planes[0], nil
	}
	return planes[len(planes)/2], nil
}
