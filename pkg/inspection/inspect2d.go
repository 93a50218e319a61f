package inspection

import (
	"errors"
	"fmt"

	"cellinspect/pkg/render"
)

// Reconstructed2D renders the 2D comparison figure for one reconstructed
// instance: every plane of the crop as a row, with raw image, instance
// segmentation, and boundary-overlaid final labels as columns.
type Reconstructed2D struct{}

// Run plans the crop around the object's representative instance, crops the
// final-label stack, loads matching crops of the raw and instance stacks, and
// assembles the figure. A save failure on an otherwise successful render is
// reported but does not discard a requested handle.
func (Reconstructed2D) Run(o *Object) error {
	win, err := PlanCrop(o.Stack, o.LabelID, o.PlaneID, o.Opts.HalfWindowSize)
	if err != nil {
		return err
	}

	cropped, err := o.Stack.Crop(win.MinX, win.MaxX, win.MinY, win.MaxY)
	if err != nil {
		return fmt.Errorf("cropping final labels: %w", err)
	}
	info, err := BuildPlotInfo(cropped)
	if err != nil {
		return err
	}

	raw, err := o.Source.LoadRawStack(o.FileID, win.Rect())
	if err != nil {
		return fmt.Errorf("loading raw stack: %w", err)
	}
	instance, err := o.Source.LoadInstanceStack(o.FileID, win.Rect())
	if err != nil {
		return fmt.Errorf("loading instance stack: %w", err)
	}

	dest := o.Source.PlotPath(o.FileID, o.AreaID, o.LabelID)
	if o.Show {
		o.logger().Infof("inspecting segmentation of label #%d on plane %d, crop [%d,%d)x[%d,%d)",
			o.LabelID, o.PlaneID, win.MinX, win.MaxX, win.MinY, win.MaxY)
	}

	fig := render.Figure{
		Raw:             raw,
		Instance:        instance,
		Final:           cropped,
		Info:            info,
		PlaneOfInterest: o.PlaneID,
		LineWidth:       o.Opts.LineWidth,
		CrosshairArm:    o.Opts.CrosshairArm,
	}
	handle, err := fig.Assemble(dest, o.Save, o.Show)
	if handle != nil {
		o.Rendered = handle
	}
	if err != nil {
		if errors.Is(err, render.ErrDestinationUnwritable) && handle != nil {
			// Partial success: the figure rendered but could not be saved.
			o.logger().WithError(err).Warn("figure rendered but not saved")
			return err
		}
		return err
	}
	if o.Save {
		o.logger().Infof("inspection figure saved to %s", dest)
	}
	return nil
}
