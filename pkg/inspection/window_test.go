package inspection

import (
	"image"
	"testing"
)

// TestClampWindow verifies the four-branch clamping policy against the
// reference cases.
func TestClampWindow(t *testing.T) {
	cases := []struct {
		name       string
		centroid   int
		extent     int
		halfWindow int
		lower      int
		upper      int
	}{
		{"centered window fits", 500, 1000, 200, 300, 700},
		{"pinned to low edge", 50, 1000, 200, 0, 400},
		{"pinned to high edge", 950, 1000, 200, 600, 1000},
		{"axis narrower than window", 50, 300, 200, 0, 300},
		{"exactly spans the axis", 200, 400, 200, 0, 400},
		{"low edge exact fit", 200, 1000, 200, 0, 400},
		{"high edge exact fit", 800, 1000, 200, 600, 1000},
	}

	for _, tc := range cases {
		lower, upper := ClampWindow(tc.centroid, tc.extent, tc.halfWindow)
		if lower != tc.lower || upper != tc.upper {
			t.Errorf("%s: clamp(%d,%d,%d) = (%d,%d), expected (%d,%d)",
				tc.name, tc.centroid, tc.extent, tc.halfWindow, lower, upper, tc.lower, tc.upper)
		}
	}
}

// TestClampWindowFullSizePreference verifies that near-edge centroids keep
// the full window size whenever the axis allows it.
func TestClampWindowFullSizePreference(t *testing.T) {
	for centroid := 0; centroid <= 1000; centroid += 25 {
		lower, upper := ClampWindow(centroid, 1000, 200)
		if upper-lower != 400 {
			t.Errorf("clamp(%d,1000,200) window size %d, expected 400", centroid, upper-lower)
		}
		if lower < 0 || upper > 1000 {
			t.Errorf("clamp(%d,1000,200) = (%d,%d) leaves the axis", centroid, lower, upper)
		}
	}
}

// TestWindowRect verifies the conversion to image coordinates, where columns
// map to the horizontal axis.
func TestWindowRect(t *testing.T) {
	win := Window{MinX: 10, MaxX: 110, MinY: 20, MaxY: 90}
	if win.Width() != 100 || win.Height() != 70 {
		t.Errorf("Expected window 100x70, got %dx%d", win.Width(), win.Height())
	}

	rect := win.Rect()
	expected := image.Rect(20, 10, 90, 110)
	if rect != expected {
		t.Errorf("Expected rect %v, got %v", expected, rect)
	}
}
