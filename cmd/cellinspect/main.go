package main

import (
	"errors"
	"flag"
	"os"

	"github.com/sirupsen/logrus"

	"cellinspect/internal/store"
	"cellinspect/pkg/config"
	"cellinspect/pkg/inspection"
)

func main() {
	// Parse command line arguments
	dataDir := flag.String("data", "", "Root directory of the analysis run")
	fileID := flag.String("file", "", "File identity of the stack to inspect")
	areaID := flag.String("area", "", "Area ROI identity of the stack to inspect")
	labelIndex := flag.Int("label", 0, "Ordinal of the label to inspect (-1 inspects every label)")
	show := flag.Bool("show", false, "Keep the rendered figure handle and report it")
	save := flag.Bool("save", true, "Save the inspection figure")
	configPath := flag.String("config", "", "Optional YAML configuration file")
	flag.Parse()

	// Validate inputs
	if *dataDir == "" || *fileID == "" || *areaID == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}
	if cfg.Output.Verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	st := store.New(*dataDir, cfg.Output.PlotFormat)
	if *save {
		if err := st.EnsurePlotsDir(); err != nil {
			logrus.WithError(err).Fatal("failed to create figure output directory")
		}
	}

	opts := inspection.Options{
		HalfWindowSize: cfg.Inspection.HalfWindowSize,
		LineWidth:      cfg.Inspection.LineWidth,
		CrosshairArm:   cfg.Inspection.CrosshairArm,
	}
	strategies := []inspection.Strategy{inspection.Reconstructed2D{}}

	if *labelIndex >= 0 {
		if err := inspect(st, *fileID, *areaID, *labelIndex, *show, *save, opts, strategies); err != nil {
			logrus.WithError(err).Fatal("inspection failed")
		}
		return
	}

	// Batch mode: walk label ordinals until the volume runs out of labels.
	for index := 0; ; index++ {
		err := inspect(st, *fileID, *areaID, index, *show, *save, opts, strategies)
		if errors.Is(err, inspection.ErrLabelIndexOutOfRange) {
			logrus.Infof("inspected %d labels", index)
			return
		}
		if err != nil {
			logrus.WithError(err).Fatalf("inspection of label ordinal %d failed", index)
		}
	}
}

// inspect runs one full inspection call for a single label ordinal.
func inspect(st *store.Store, fileID, areaID string, labelIndex int, show, save bool, opts inspection.Options, strategies []inspection.Strategy) error {
	obj, err := inspection.NewObject(st, fileID, areaID, labelIndex, show, save, opts)
	if err != nil {
		return err
	}
	if err := obj.RunAll(strategies); err != nil {
		return err
	}
	if show && obj.Rendered != nil {
		bounds := obj.Rendered.Bounds()
		logrus.Infof("rendered %dx%d figure for label #%d (plane %d)",
			bounds.Dx(), bounds.Dy(), obj.LabelID, obj.PlaneID)
	}
	return nil
}
