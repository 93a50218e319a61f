// Package inspection implements the visual quality-control pipeline for
// reconstructed cell segmentations: picking a representative instance and
// plane, planning a bounded crop around it, collecting per-plane boundary
// overlays, and running pluggable inspection strategies that render
// comparison figures.
package inspection

import (
	"fmt"
	"image"

	"github.com/sirupsen/logrus"

	"cellinspect/pkg/volume"
)

// Source supplies the externally-owned volumes and path conventions the
// pipeline consumes. The core never reads directories itself; it is handed
// aligned stacks by a Source, optionally pre-cropped so companion stacks stay
// registered with the final-label crop.
type Source interface {
	// LoadFinalLabels loads the postprocessed final-label stack for one
	// file/area identity.
	LoadFinalLabels(fileID, areaID string) (*volume.Volume, error)

	// LoadRawStack loads the preprocessed input images for fileID. A
	// non-empty crop rectangle is applied to each plane while loading.
	LoadRawStack(fileID string, crop image.Rectangle) ([]image.Image, error)

	// LoadInstanceStack loads the instance-segmentation images for fileID,
	// cropped the same way.
	LoadInstanceStack(fileID string, crop image.Rectangle) ([]image.Image, error)

	// PlotPath returns the destination path for the inspection figure of one
	// label, following the {file}_{area}_{label}_2D.{ext} convention.
	PlotPath(fileID, areaID string, labelID int32) string
}

// Strategy is one pluggable inspection behavior. Strategies are run in
// sequence over a shared Object and each produces (or declines to produce)
// its own figure.
type Strategy interface {
	Run(obj *Object) error
}

// Options carries the display parameters of an inspection call.
type Options struct {
	// HalfWindowSize controls the crop planner: the preferred window is
	// 2*HalfWindowSize pixels per axis, centered on the instance centroid.
	HalfWindowSize int

	// LineWidth is the boundary overlay stroke width in pixels.
	LineWidth float64

	// CrosshairArm is the half-length of the representative-plane marker.
	CrosshairArm float64
}

// DefaultOptions returns the display parameters used by the 2D comparison
// view.
func DefaultOptions() Options {
	return Options{
		HalfWindowSize: 200,
		LineWidth:      3,
		CrosshairArm:   15,
	}
}

// Object is the shared context one inspection call threads through its
// strategies. It resolves the label ordinal and representative plane at
// construction and holds no state beyond that call.
type Object struct {
	// Source supplies volumes and output paths
	Source Source

	// FileID and AreaID identify the inspected stack
	FileID string
	AreaID string

	// Stack is the loaded final-label volume
	Stack *volume.Volume

	// LabelID is the resolved label identity and PlaneID its representative
	// plane
	LabelID int32
	PlaneID int

	// Show requests a rendered handle; Save persists the figure
	Show bool
	Save bool

	// Opts holds the display parameters
	Opts Options

	// Rendered receives the figure handle of the last strategy that produced
	// one, when Show is set
	Rendered image.Image

	log *logrus.Entry
}

// NewObject loads the final-label stack for (fileID, areaID) and resolves
// labelIndex to a concrete label and representative plane.
func NewObject(src Source, fileID, areaID string, labelIndex int, show, save bool, opts Options) (*Object, error) {
	stack, err := src.LoadFinalLabels(fileID, areaID)
	if err != nil {
		return nil, fmt.Errorf("loading final labels for %s/%s: %w", fileID, areaID, err)
	}

	labelID, err := SelectLabel(stack, labelIndex)
	if err != nil {
		return nil, err
	}
	planeID, err := RepresentativePlane(stack, labelID)
	if err != nil {
		return nil, err
	}

	return &Object{
		Source:  src,
		FileID:  fileID,
		AreaID:  areaID,
		Stack:   stack,
		LabelID: labelID,
		PlaneID: planeID,
		Show:    show,
		Save:    save,
		Opts:    opts,
		log: logrus.WithFields(logrus.Fields{
			"file":  fileID,
			"area":  areaID,
			"label": labelID,
		}),
	}, nil
}

// logger returns the object's log entry, falling back to the standard logger
// for objects constructed without NewObject.
func (o *Object) logger() *logrus.Entry {
	if o.log == nil {
		o.log = logrus.WithFields(logrus.Fields{
			"file": o.FileID,
			"area": o.AreaID,
		})
	}
	return o.log
}

// RunAll invokes the given strategies in order against this object. The
// strategy sequence is explicit configuration: an empty slice means no
// inspection output is produced, and that is not an error.
func (o *Object) RunAll(strategies []Strategy) error {
	for _, strategy := range strategies {
		if err := strategy.Run(o); err != nil {
			return err
		}
	}
	return nil
}
