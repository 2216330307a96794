package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"tedeval/pkg/config"
	"tedeval/pkg/solver"
	"tedeval/pkg/ted"
	"tedeval/pkg/volume"
)

var (
	groundTruthDir    string
	reconstructionDir string
	configPath        string
	threshold         float64
	correctedDir      string
	reportPath        string
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Score a reconstruction against a ground-truth segmentation",
	Long: `Reads two volumes as directories of 16-bit grayscale PNG slices,
computes the tolerant edit distance, and prints the split and merge
counts. Optionally writes the corrected reconstruction and a YAML
report.`,
	RunE: runEvaluate,
}

func init() {
	evaluateCmd.Flags().StringVar(&groundTruthDir, "ground-truth", "", "Directory with ground-truth PNG slices (required)")
	evaluateCmd.Flags().StringVar(&reconstructionDir, "reconstruction", "", "Directory with reconstruction PNG slices (required)")
	evaluateCmd.Flags().StringVar(&configPath, "config", "tedeval.yaml", "Configuration file")
	evaluateCmd.Flags().Float64Var(&threshold, "threshold", -1, "Distance threshold override (physical units)")
	evaluateCmd.Flags().StringVar(&correctedDir, "corrected", "", "Directory to write the corrected reconstruction slices")
	evaluateCmd.Flags().StringVar(&reportPath, "report", "", "Path for the YAML report")

	evaluateCmd.MarkFlagRequired("ground-truth")
	evaluateCmd.MarkFlagRequired("reconstruction")
	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.Output.Verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	groundTruth, err := volume.LoadStack(groundTruthDir)
	if err != nil {
		return fmt.Errorf("failed to load ground truth: %w", err)
	}
	reconstruction, err := volume.LoadStack(reconstructionDir)
	if err != nil {
		return fmt.Errorf("failed to load reconstruction: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"width":  groundTruth.Width,
		"height": groundTruth.Height,
		"depth":  groundTruth.Depth,
	}).Info("volumes loaded")

	params := &ted.Params{
		DistanceThreshold:        cfg.Evaluation.DistanceThreshold,
		VoxelSize:                cfg.Evaluation.VoxelSize,
		NumWorkers:               cfg.Evaluation.NumWorkers,
		ComputeCorrected:         cfg.Evaluation.ComputeCorrected || correctedDir != "",
		HaveBackground:           cfg.Evaluation.HaveBackground,
		GroundTruthBackground:    cfg.Evaluation.GroundTruthBackground,
		ReconstructionBackground: cfg.Evaluation.ReconstructionBackground,
	}
	if threshold >= 0 {
		params.DistanceThreshold = threshold
	}

	evaluator := ted.NewEvaluator(params)
	evaluator.SetLogger(logger)

	bb := solver.NewBranchBound()
	if cfg.Solver.MaxNodes > 0 {
		bb.MaxNodes = cfg.Solver.MaxNodes
	}
	evaluator.SetSolver(bb)

	report, err := evaluator.Evaluate(groundTruth, reconstruction)
	if err != nil {
		return err
	}

	fmt.Printf("splits: %d\n", report.Splits)
	fmt.Printf("merges: %d\n", report.Merges)
	fmt.Printf("distance: %d\n", report.Splits+report.Merges)

	if correctedDir != "" && report.Corrected != nil {
		if err := volume.SaveStack(correctedDir, report.Corrected); err != nil {
			return fmt.Errorf("failed to save corrected reconstruction: %w", err)
		}
		logger.WithField("dir", correctedDir).Info("corrected reconstruction saved")
	}

	out := reportPath
	if out == "" {
		out = cfg.Output.ReportPath
	}
	if out != "" {
		if err := writeReport(out, report); err != nil {
			return err
		}
		logger.WithField("path", out).Info("report saved")
	}

	return nil
}

func writeReport(path string, report *ted.Report) error {
	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
