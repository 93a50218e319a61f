package inspection

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"testing"

	"cellinspect/pkg/render"
	"cellinspect/pkg/volume"
)

// fakeSource serves stacks from memory and records the crop rectangles it
// was asked to apply.
type fakeSource struct {
	stack    *volume.Volume
	plotDir  string
	rawCrop  image.Rectangle
	instCrop image.Rectangle
}

func (f *fakeSource) LoadFinalLabels(fileID, areaID string) (*volume.Volume, error) {
	if f.stack == nil {
		return nil, fmt.Errorf("%w: no stack for %s/%s", volume.ErrMalformedVolume, fileID, areaID)
	}
	return f.stack, nil
}

func (f *fakeSource) LoadRawStack(fileID string, crop image.Rectangle) ([]image.Image, error) {
	f.rawCrop = crop
	return f.grayStack(crop), nil
}

func (f *fakeSource) LoadInstanceStack(fileID string, crop image.Rectangle) ([]image.Image, error) {
	f.instCrop = crop
	return f.grayStack(crop), nil
}

func (f *fakeSource) PlotPath(fileID, areaID string, labelID int32) string {
	return filepath.Join(f.plotDir, fmt.Sprintf("%s_%s_%d_2D.png", fileID, areaID, labelID))
}

func (f *fakeSource) grayStack(crop image.Rectangle) []image.Image {
	stack := make([]image.Image, f.stack.Depth())
	for i := range stack {
		stack[i] = image.NewGray(image.Rect(0, 0, crop.Dx(), crop.Dy()))
	}
	return stack
}

// TestNewObjectResolvesSelection verifies that object construction resolves
// the label ordinal and representative plane.
func TestNewObjectResolvesSelection(t *testing.T) {
	stack, err := volume.New(5, 30, 30)
	if err != nil {
		t.Fatalf("Failed to create volume: %v", err)
	}
	for _, p := range []int{1, 2, 4} {
		stack.Set(p, 10, 10, 6)
	}

	src := &fakeSource{stack: stack}
	obj, err := NewObject(src, "f01", "area2", 0, false, false, DefaultOptions())
	if err != nil {
		t.Fatalf("NewObject failed: %v", err)
	}
	if obj.LabelID != 6 {
		t.Errorf("Expected label 6, got %d", obj.LabelID)
	}
	if obj.PlaneID != 2 {
		t.Errorf("Expected representative plane 2, got %d", obj.PlaneID)
	}

	if _, err := NewObject(src, "f01", "area2", 3, false, false, DefaultOptions()); !errors.Is(err, ErrLabelIndexOutOfRange) {
		t.Errorf("Expected ErrLabelIndexOutOfRange, got %v", err)
	}
}

// TestReconstructed2DEndToEnd runs the full pipeline over a 3-plane 400x400
// volume with a single disk instance: the crop covers the whole plane, the
// figure is saved, and a handle is returned.
func TestReconstructed2DEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping figure rendering test in short mode")
	}

	tempDir, err := os.MkdirTemp("", "inspect2d-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	stack := diskStack(t, 3, 400, 400, 200, 200, 20, 5)
	src := &fakeSource{stack: stack, plotDir: tempDir}

	obj, err := NewObject(src, "f01", "roi1", 0, true, true, DefaultOptions())
	if err != nil {
		t.Fatalf("NewObject failed: %v", err)
	}
	if obj.PlaneID != 1 {
		t.Errorf("Expected middle plane 1 as representative, got %d", obj.PlaneID)
	}

	if err := obj.RunAll([]Strategy{Reconstructed2D{}}); err != nil {
		t.Fatalf("RunAll failed: %v", err)
	}

	// The companion stacks must have been loaded with the whole-plane crop.
	expected := image.Rect(0, 0, 400, 400)
	if src.rawCrop != expected || src.instCrop != expected {
		t.Errorf("Expected crop %v for companion stacks, got raw %v, instance %v",
			expected, src.rawCrop, src.instCrop)
	}

	// Saved figure exists at the conventional path.
	dest := src.PlotPath("f01", "roi1", 5)
	if _, err := os.Stat(dest); os.IsNotExist(err) {
		t.Errorf("Expected saved figure at %s", dest)
	}

	// Show was requested, so the rendered handle is retained.
	if obj.Rendered == nil {
		t.Fatal("Expected rendered figure handle")
	}
	bounds := obj.Rendered.Bounds()
	if bounds.Dx() <= 3*400 || bounds.Dy() <= 3*400 {
		t.Errorf("Figure %dx%d too small for 3 rows x 3 columns of 400x400 panels",
			bounds.Dx(), bounds.Dy())
	}
}

// TestReconstructed2DComputeOnly verifies that with neither show nor save the
// pipeline still runs to completion without output.
func TestReconstructed2DComputeOnly(t *testing.T) {
	stack := diskStack(t, 2, 60, 60, 30, 30, 8, 4)
	src := &fakeSource{stack: stack, plotDir: "unused"}

	opts := DefaultOptions()
	opts.HalfWindowSize = 20
	obj, err := NewObject(src, "f02", "roi1", 0, false, false, opts)
	if err != nil {
		t.Fatalf("NewObject failed: %v", err)
	}
	if err := obj.RunAll([]Strategy{Reconstructed2D{}}); err != nil {
		t.Fatalf("RunAll failed: %v", err)
	}
	if obj.Rendered != nil {
		t.Error("Expected no rendered handle without show")
	}
}

// TestReconstructed2DUnwritableDestination verifies partial success: the
// save fails but the requested handle is still produced.
func TestReconstructed2DUnwritableDestination(t *testing.T) {
	stack := diskStack(t, 1, 60, 60, 30, 30, 8, 4)
	src := &fakeSource{
		stack:   stack,
		plotDir: filepath.Join(string(os.PathSeparator), "cellinspect-nonexistent", "plots"),
	}

	opts := DefaultOptions()
	opts.HalfWindowSize = 20
	obj, err := NewObject(src, "f03", "roi1", 0, true, true, opts)
	if err != nil {
		t.Fatalf("NewObject failed: %v", err)
	}

	err = obj.RunAll([]Strategy{Reconstructed2D{}})
	if !errors.Is(err, render.ErrDestinationUnwritable) {
		t.Errorf("Expected ErrDestinationUnwritable, got %v", err)
	}
	if obj.Rendered == nil {
		t.Error("Expected rendered handle despite failed save")
	}
}

// TestRunAllEmptyStrategies verifies that an empty strategy sequence is a
// no-op, not an error.
func TestRunAllEmptyStrategies(t *testing.T) {
	stack := diskStack(t, 1, 30, 30, 15, 15, 4, 2)
	src := &fakeSource{stack: stack}

	obj, err := NewObject(src, "f04", "roi1", 0, false, false, DefaultOptions())
	if err != nil {
		t.Fatalf("NewObject failed: %v", err)
	}
	if err := obj.RunAll(nil); err != nil {
		t.Errorf("Expected nil error for empty strategy sequence, got %v", err)
	}
}
