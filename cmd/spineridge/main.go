package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"spineridge/internal/models"
	"spineridge/pkg/config"
	"spineridge/pkg/pipeline"
	"spineridge/pkg/visualization"
)

// report is the YAML document written to -output
type report struct {
	Mask    string           `yaml:"mask"`
	Depth   string           `yaml:"depth"`
	Metrics pipeline.Metrics `yaml:"metrics"`
	Spine   struct {
		Stop   string          `yaml:"stop"`
		Seed   models.Cell     `yaml:"seed"`
		Tip    models.Cell     `yaml:"tip"`
		Tail   models.Cell     `yaml:"tail"`
		Points []models.Point3 `yaml:"points"`
		Radii  []float64       `yaml:"radii"`
	} `yaml:"spine"`
	Ridges []models.Polyline `yaml:"ridges"`
}

func main() {
	// Parse command line arguments
	maskPath := flag.String("mask", "", "Object mask image (PNG or JPEG, foreground = bright)")
	depthPath := flag.String("depth", "", "Depth image (PNG or JPEG, near = bright)")
	configPath := flag.String("config", "config.yaml", "YAML configuration file")
	writeConfig := flag.Bool("write-config", false, "Write the default configuration to -config and exit")
	outputPath := flag.String("output", "spineridge.yaml", "Output YAML result file")
	heatmapDir := flag.String("heatmaps", "", "Directory to save medialness and curvature heat maps (optional)")
	spinePoints := flag.Int("spine-points", -1, "Resample the spine to this many points (default: from config)")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	flag.Parse()

	if *writeConfig {
		if err := config.CreateDefaultConfigFile(*configPath); err != nil {
			log.Fatalf("Failed to write config: %v", err)
		}
		fmt.Printf("Default configuration written to: %s\n", *configPath)
		return
	}

	// Validate inputs
	if *maskPath == "" || *depthPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *spinePoints >= 0 {
		cfg.Output.SpinePoints = *spinePoints
	}

	level := slog.LevelInfo
	if *verbose || cfg.Output.Verbose {
		level = slog.LevelDebug
	}
	pipeline.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	fmt.Println("================================")
	fmt.Println("SPINE AND RIDGE EXTRACTION FROM MASK AND DEPTH")
	fmt.Println("================================")

	maskImg, err := loadImage(*maskPath)
	if err != nil {
		log.Fatalf("Failed to load mask: %v", err)
	}
	depthImg, err := loadImage(*depthPath)
	if err != nil {
		log.Fatalf("Failed to load depth: %v", err)
	}
	mask := maskFromImage(maskImg)
	depth := depthFromImage(depthImg, mask.Width, mask.Height)

	params := cfg.Params()
	extractor := pipeline.NewExtractor(&params)

	startTime := time.Now()
	result, err := extractor.Process(mask, depth)
	if err != nil {
		log.Fatalf("Extraction failed: %v", err)
	}
	processingTime := time.Since(startTime)

	if err := writeReport(*outputPath, *maskPath, *depthPath, result); err != nil {
		log.Fatalf("Failed to write result: %v", err)
	}

	metrics := result.Metrics
	fmt.Printf("\nExtraction completed successfully in %.2f seconds!\n", processingTime.Seconds())
	fmt.Printf("Result saved to: %s\n\n", *outputPath)

	fmt.Printf("Metrics:\n")
	fmt.Printf("=======================================\n")
	fmt.Printf("Spine length: %.2f px (%d raw points, stop: %s)\n",
		metrics.SpineLength, metrics.SpinePoints, result.Spine.Spine.Stop)
	fmt.Printf("Ridge curves: %d (total length %.2f px)\n", metrics.RidgeCount, metrics.RidgeLength)
	fmt.Printf("Mean medialness: %.3f\n", metrics.MeanMedialness)
	fmt.Printf("Mean curvature: %.3f\n", metrics.MeanCurvature)
	if metrics.SpinePoints <= 1 {
		fmt.Println("\nWarning: degenerate spine, no meaningful medial axis was found")
	}

	if *heatmapDir != "" {
		if err := saveHeatmaps(*heatmapDir, mask, result, cfg.Output.HeatmapScale); err != nil {
			log.Printf("Warning: Failed to save heat maps: %v", err)
		} else {
			fmt.Printf("\nHeat maps saved to: %s\n", *heatmapDir)
		}
	}
}

// writeReport stores the extraction result as YAML
func writeReport(path, maskPath, depthPath string, result *pipeline.Result) error {
	var r report
	r.Mask, r.Depth = maskPath, depthPath
	r.Metrics = result.Metrics

	spine := result.Spine
	r.Spine.Stop = spine.Spine.Stop.String()
	r.Spine.Seed, r.Spine.Tip, r.Spine.Tail = spine.Spine.Seed, spine.Spine.Tip, spine.Spine.Tail
	r.Spine.Points = spine.Lifted
	r.Spine.Radii = spine.Radii
	r.Ridges = result.Ridges.Curves

	data, err := yaml.Marshal(&r)
	if err != nil {
		return fmt.Errorf("error marshaling result: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("error creating output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("error writing result file: %w", err)
	}
	return nil
}

// saveHeatmaps renders the medialness field with the spine and the
// curvature map with the ridge curves
func saveHeatmaps(dir string, mask *models.Mask, result *pipeline.Result, scale float64) error {
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}

	medial := visualization.Heatmap(result.Spine.Field.Medialness, mask)
	visualization.Overlay(medial, []models.Polyline{result.Spine.Path}, white)

	curvature := visualization.Heatmap(result.Ridges.Strength, mask)
	visualization.Overlay(curvature, result.Ridges.Curves, white)

	for name, img := range map[string]*image.RGBA{"medialness.png": medial, "curvature.png": curvature} {
		scaled, err := visualization.Scale(img, scale)
		if err != nil {
			return err
		}
		if err := visualization.Save(scaled, filepath.Join(dir, name)); err != nil {
			return err
		}
	}
	return nil
}
