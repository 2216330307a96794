package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	logLevel string
	logger   *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:   "tedeval",
	Short: "Tolerant edit distance for voxel segmentations",
	Long: `tedeval scores a candidate reconstruction volume against a ground-truth
segmentation. Voxels near label boundaries may be tolerantly relabeled
within a physical distance budget; the relabeling minimizing the number
of split and merge errors is found by solving an integer linear program.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = logrus.New()
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			level = logrus.InfoLevel
		}
		logger.SetLevel(level)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}
