// Package render assembles the multi-panel comparison figure: one row per
// plane of the cropped stacks, three columns (raw image, instance
// segmentation, final labels with boundary overlays).
package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"

	"cellinspect/pkg/palette"
	"cellinspect/pkg/volume"
)

// ErrDestinationUnwritable is returned when a figure save is requested and
// the destination file cannot be created or encoded.
var ErrDestinationUnwritable = errors.New("figure destination unwritable")

// Overlay holds the boundary of one label on one plane together with its
// assigned display color. XCoords run along plane rows and YCoords along
// plane columns, so on the canvas YCoords map to horizontal and XCoords to
// vertical positions.
type Overlay struct {
	Color   color.RGBA
	XCoords []float64
	YCoords []float64
}

// PlotInfo maps plane index -> label id -> overlay for one cropped volume.
// Labels absent from a plane have no entry for that plane.
type PlotInfo map[int]map[int32]Overlay

// Figure describes one comparison figure before assembly. All stacks must be
// spatially aligned to the same crop window.
type Figure struct {
	// Raw holds the cropped preprocessed input image per plane
	Raw []image.Image

	// Instance holds the cropped instance-segmentation image per plane
	Instance []image.Image

	// Final is the cropped final-label volume
	Final *volume.Volume

	// Info carries the boundary overlays drawn on the final-label column
	Info PlotInfo

	// PlaneOfInterest is the representative plane; its final-label panel is
	// marked with a crosshair at the crop window's center
	PlaneOfInterest int

	// LineWidth is the stroke width for boundary overlays and the crosshair
	LineWidth float64

	// CrosshairArm is the half-length of each crosshair arm in pixels
	CrosshairArm float64
}

// Panel layout constants. The left margin carries the plane_N row labels and
// the top margin the column titles.
const (
	marginLeft = 70
	marginTop  = 36
	panelGap   = 10
)

// Assemble composes the figure and optionally persists it. When save is set
// the figure is encoded to dest (format chosen by extension, PNG or JPEG).
// When show is set the composed image is returned as a handle for the caller
// to present; with neither flag the figure is composed and discarded.
//
// A failed save is reported via ErrDestinationUnwritable but does not void a
// requested handle: the rendered image is still returned alongside the error
// so the caller can fall back to displaying it.
func (f *Figure) Assemble(dest string, save, show bool) (image.Image, error) {
	if f.Final == nil || f.Final.Depth() == 0 {
		return nil, fmt.Errorf("figure requires a non-empty final-label volume")
	}

	img := f.compose()

	var saveErr error
	if save {
		if err := encode(img, dest); err != nil {
			saveErr = fmt.Errorf("%w: %s: %v", ErrDestinationUnwritable, dest, err)
		}
	}
	if show {
		return img, saveErr
	}
	return nil, saveErr
}

// compose renders all rows and columns onto a single canvas.
func (f *Figure) compose() image.Image {
	depth := f.Final.Depth()
	pw := f.Final.Cols()
	ph := f.Final.Rows()

	width := marginLeft + 3*pw + 2*panelGap
	height := marginTop + depth*(ph+panelGap)

	dc := gg.NewContext(width, height)
	dc.SetColor(color.White)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	titles := [3]string{"input image", "instance segmentation", "connected components (color-coded)"}
	for col, title := range titles {
		x := float64(marginLeft + col*(pw+panelGap) + pw/2)
		dc.SetColor(color.Black)
		dc.DrawStringAnchored(title, x, float64(marginTop)/2, 0.5, 0.5)
	}

	maxLabel := maxLabelValue(f.Final)
	for z := 0; z < depth; z++ {
		y0 := marginTop + z*(ph+panelGap)

		dc.SetColor(color.Black)
		dc.DrawStringAnchored(fmt.Sprintf("plane_%d", z), float64(marginLeft)/2, float64(y0+ph/2), 0.5, 0.5)

		if z < len(f.Raw) && f.Raw[z] != nil {
			dc.DrawImage(f.Raw[z], marginLeft, y0)
		}
		if z < len(f.Instance) && f.Instance[z] != nil {
			dc.DrawImage(f.Instance[z], marginLeft+pw+panelGap, y0)
		}

		x0 := marginLeft + 2*(pw+panelGap)
		dc.DrawImage(labelPlaneImage(f.Final, z, maxLabel), x0, y0)
		f.drawOverlays(dc, z, x0, y0)
		if z == f.PlaneOfInterest {
			f.drawCrosshair(dc, x0, y0, pw, ph)
		}
	}

	return dc.Image()
}

// drawOverlays strokes every boundary recorded for plane z in its assigned
// color. Boundary x coordinates (rows) map to the vertical canvas axis.
func (f *Figure) drawOverlays(dc *gg.Context, z, x0, y0 int) {
	for _, overlay := range f.Info[z] {
		if len(overlay.XCoords) == 0 {
			continue
		}
		dc.NewSubPath()
		dc.MoveTo(float64(x0)+overlay.YCoords[0]+0.5, float64(y0)+overlay.XCoords[0]+0.5)
		for i := 1; i < len(overlay.XCoords); i++ {
			dc.LineTo(float64(x0)+overlay.YCoords[i]+0.5, float64(y0)+overlay.XCoords[i]+0.5)
		}
		dc.SetColor(overlay.Color)
		dc.SetLineWidth(f.LineWidth)
		dc.Stroke()
	}
}

// drawCrosshair marks the crop window's geometric center on the
// representative plane's final-label panel.
func (f *Figure) drawCrosshair(dc *gg.Context, x0, y0, pw, ph int) {
	cx := float64(x0) + float64(pw)/2
	cy := float64(y0) + float64(ph)/2
	arm := f.CrosshairArm

	dc.SetColor(palette.Crosshair)
	dc.SetLineWidth(f.LineWidth)
	dc.DrawLine(cx-arm, cy, cx+arm, cy)
	dc.Stroke()
	dc.DrawLine(cx, cy-arm, cx, cy+arm)
	dc.Stroke()
}

// labelPlaneImage renders one final-label plane as an inverted-grayscale
// image: background stays black, labels brighten with their numeric value.
func labelPlaneImage(vol *volume.Volume, z int, maxLabel int32) image.Image {
	img := image.NewGray(image.Rect(0, 0, vol.Cols(), vol.Rows()))
	for x := 0; x < vol.Rows(); x++ {
		for y := 0; y < vol.Cols(); y++ {
			val := vol.At(z, x, y)
			if val == 0 {
				continue
			}
			gray := uint8(55 + int32(200)*val/maxLabel)
			img.SetGray(y, x, color.Gray{Y: gray})
		}
	}
	return img
}

func maxLabelValue(vol *volume.Volume) int32 {
	var max int32 = 1
	for z := 0; z < vol.Depth(); z++ {
		for x := 0; x < vol.Rows(); x++ {
			for y := 0; y < vol.Cols(); y++ {
				if v := vol.At(z, x, y); v > max {
					max = v
				}
			}
		}
	}
	return max
}

// encode writes the composed figure to dest, choosing the encoder from the
// file extension.
func encode(img image.Image, dest string) error {
	file, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(dest)) {
	case ".jpg", ".jpeg":
		return jpeg.Encode(file, img, &jpeg.Options{Quality: 90})
	default:
		return png.Encode(file, img)
	}
}
