// Package store owns the on-disk layout of an analysis run: per-plane image
// files grouped by processing stage, and the destination directory for
// inspection figures. The inspection core consumes volumes through this
// package and never touches paths itself.
package store

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"

	"cellinspect/pkg/volume"
)

// Subdirectory names of an analysis run, one per processing stage.
const (
	segmentationsDirName = "quantified_segmentations"
	preprocessedDirName  = "preprocessed_images"
	instanceDirName      = "instance_segmentations"
	plotsDirName         = "inspected_area_plots"
)

// Store resolves file and area identities against a run's root directory.
//
// Plane files are named <fileID>-<plane>.<ext> and sort into stack order
// lexicographically (zero-padded plane numbers). Label planes are 16-bit
// grayscale PNGs where the pixel value is the label id.
type Store struct {
	root       string
	plotFormat string
	log        *logrus.Entry
}

// New creates a store rooted at the given run directory. plotFormat selects
// the figure file extension ("png" or "jpg"); an empty value means PNG.
func New(root, plotFormat string) *Store {
	if plotFormat == "" {
		plotFormat = "png"
	}
	return &Store{
		root:       root,
		plotFormat: plotFormat,
		log:        logrus.WithField("store", root),
	}
}

// Root returns the run's root directory.
func (s *Store) Root() string { return s.root }

// SegmentationsDir returns the final-label plane directory for one area.
func (s *Store) SegmentationsDir(areaID string) string {
	return filepath.Join(s.root, segmentationsDirName, areaID)
}

// PreprocessedDir returns the raw (preprocessed) image plane directory.
func (s *Store) PreprocessedDir() string {
	return filepath.Join(s.root, preprocessedDirName)
}

// InstanceDir returns the instance-segmentation plane directory.
func (s *Store) InstanceDir() string {
	return filepath.Join(s.root, instanceDirName)
}

// PlotsDir returns the inspection figure output directory.
func (s *Store) PlotsDir() string {
	return filepath.Join(s.root, plotsDirName)
}

// PlotPath returns the destination path of the inspection figure for one
// label, following the {file}_{area}_{label}_2D.{ext} convention.
func (s *Store) PlotPath(fileID, areaID string, labelID int32) string {
	name := fmt.Sprintf("%s_%s_%d_2D.%s", fileID, areaID, labelID, s.plotFormat)
	return filepath.Join(s.PlotsDir(), name)
}

// EnsurePlotsDir creates the figure output directory if needed.
func (s *Store) EnsurePlotsDir() error {
	return os.MkdirAll(s.PlotsDir(), 0755)
}

// LoadFinalLabels reads the postprocessed final-label stack for one
// file/area identity from its per-plane PNG files.
func (s *Store) LoadFinalLabels(fileID, areaID string) (*volume.Volume, error) {
	dir := s.SegmentationsDir(areaID)
	files, err := s.planeFiles(dir, fileID)
	if err != nil {
		return nil, err
	}

	planes := make([][][]int32, 0, len(files))
	for _, file := range files {
		plane, err := readLabelPlane(filepath.Join(dir, file))
		if err != nil {
			return nil, fmt.Errorf("reading label plane %s: %w", file, err)
		}
		planes = append(planes, plane)
	}

	vol, err := volume.FromPlanes(planes)
	if err != nil {
		return nil, fmt.Errorf("label stack %s/%s: %w", fileID, areaID, err)
	}
	s.log.Debugf("loaded %d label planes for %s/%s", vol.Depth(), fileID, areaID)
	return vol, nil
}

// LoadRawStack loads the preprocessed input images for fileID, applying the
// crop rectangle to each plane while loading when it is non-empty.
func (s *Store) LoadRawStack(fileID string, crop image.Rectangle) ([]image.Image, error) {
	return s.loadImageStack(s.PreprocessedDir(), fileID, crop)
}

// LoadInstanceStack loads the instance-segmentation images for fileID with
// the same crop applied, keeping the stack registered to the label crop.
func (s *Store) LoadInstanceStack(fileID string, crop image.Rectangle) ([]image.Image, error) {
	return s.loadImageStack(s.InstanceDir(), fileID, crop)
}

func (s *Store) loadImageStack(dir, fileID string, crop image.Rectangle) ([]image.Image, error) {
	files, err := s.planeFiles(dir, fileID)
	if err != nil {
		return nil, err
	}

	stack := make([]image.Image, 0, len(files))
	for _, file := range files {
		img, err := imaging.Open(filepath.Join(dir, file))
		if err != nil {
			return nil, fmt.Errorf("reading plane image %s: %w", file, err)
		}
		if !crop.Empty() {
			img = imaging.Crop(img, crop)
		}
		stack = append(stack, img)
	}
	return stack, nil
}

// planeFiles lists the plane files for fileID in dir, in stack order. Hidden
// files are skipped. os.ReadDir already sorts by name, which is stack order
// for zero-padded plane numbers.
func (s *Store) planeFiles(dir, fileID string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing plane directory %s: %w", dir, err)
	}

	prefix := fileID + "-"
	var files []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || !strings.HasPrefix(name, prefix) {
			continue
		}
		files = append(files, name)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no plane files for %s in %s", volume.ErrMalformedVolume, fileID, dir)
	}
	return files, nil
}

// readLabelPlane decodes one label plane. 8- and 16-bit grayscale PNGs keep
// their stored pixel values as label ids; other color models are reduced
// through the Gray16 model.
func readLabelPlane(path string) ([][]int32, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, err := png.Decode(file)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	rows, cols := bounds.Dy(), bounds.Dx()
	plane := make([][]int32, rows)
	for r := 0; r < rows; r++ {
		plane[r] = make([]int32, cols)
		for c := 0; c < cols; c++ {
			px := img.At(bounds.Min.X+c, bounds.Min.Y+r)
			switch gray := px.(type) {
			case color.Gray16:
				plane[r][c] = int32(gray.Y)
			case color.Gray:
				plane[r][c] = int32(gray.Y)
			default:
				plane[r][c] = int32(color.Gray16Model.Convert(px).(color.Gray16).Y)
			}
		}
	}
	return plane, nil
}
