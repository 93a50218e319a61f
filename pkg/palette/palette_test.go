package palette

import (
	"image/color"
	"testing"
)

// TestAssignDistinctColors verifies that every label in one call receives
// its own color.
func TestAssignDistinctColors(t *testing.T) {
	for _, count := range []int{1, 2, 7, 40, 150} {
		labels := make([]int32, count)
		for i := range labels {
			labels[i] = int32(i*3 + 1)
		}

		assigned := Assign(labels)
		if len(assigned) != count {
			t.Fatalf("Expected %d assignments, got %d", count, len(assigned))
		}
		seen := make(map[color.RGBA]int32)
		for label, c := range assigned {
			if other, ok := seen[c]; ok {
				t.Errorf("Labels %d and %d share color %v (set size %d)", label, other, c, count)
			}
			seen[c] = label
		}
	}
}

// TestAssignStability verifies that the mapping is a pure function of the
// input set, regardless of input order.
func TestAssignStability(t *testing.T) {
	first := Assign([]int32{12, 3, 47, 5})
	second := Assign([]int32{3, 5, 12, 47})

	if len(first) != len(second) {
		t.Fatalf("Expected equal-size mappings, got %d and %d", len(first), len(second))
	}
	for label, c := range first {
		if second[label] != c {
			t.Errorf("Label %d maps to %v then %v", label, c, second[label])
		}
	}
}

// TestAssignDuplicateInput verifies that repeated labels in the input do not
// consume extra colors.
func TestAssignDuplicateInput(t *testing.T) {
	assigned := Assign([]int32{4, 4, 9, 9, 9})
	if len(assigned) != 2 {
		t.Errorf("Expected 2 assignments for 2 distinct labels, got %d", len(assigned))
	}
	if assigned[4] == assigned[9] {
		t.Error("Distinct labels share a color")
	}
}

// TestHSVToRGB verifies the conversion on primary hues.
func TestHSVToRGB(t *testing.T) {
	cases := []struct {
		h, s, v  float64
		expected color.RGBA
	}{
		{0, 1, 1, color.RGBA{R: 255, G: 0, B: 0, A: 255}},
		{120, 1, 1, color.RGBA{R: 0, G: 255, B: 0, A: 255}},
		{240, 1, 1, color.RGBA{R: 0, G: 0, B: 255, A: 255}},
		{0, 0, 1, color.RGBA{R: 255, G: 255, B: 255, A: 255}},
		{0, 0, 0, color.RGBA{R: 0, G: 0, B: 0, A: 255}},
	}
	for _, tc := range cases {
		got := HSVToRGB(tc.h, tc.s, tc.v)
		if got != tc.expected {
			t.Errorf("HSVToRGB(%v,%v,%v) = %v, expected %v", tc.h, tc.s, tc.v, got, tc.expected)
		}
	}
}
