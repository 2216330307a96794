package ted_test

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"tedeval/pkg/ted"
	"tedeval/pkg/volume"
)

// makeVolume builds a volume from labels listed in row-major order
// (x fastest, then y, then z).
func makeVolume(t *testing.T, width, height, depth int, labels []float64) *volume.Volume {
	t.Helper()
	require.Len(t, labels, width*height*depth)

	vol := volume.New(width, height, depth)
	copy(vol.Data, labels)
	return vol
}

// rowVolume builds a width x 1 x 1 volume.
func rowVolume(t *testing.T, labels ...float64) *volume.Volume {
	return makeVolume(t, len(labels), 1, 1, labels)
}

// isotropicParams returns params with unit pitch on every axis, one
// worker and the given threshold, which keeps small scenarios easy to
// reason about.
func isotropicParams(threshold float64) *ted.Params {
	return &ted.Params{
		DistanceThreshold: threshold,
		VoxelSize:         volume.VoxelSize{X: 1, Y: 1, Z: 1},
		NumWorkers:        1,
	}
}

// quietLogger suppresses stage logging in tests.
func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

// evaluate runs the full pipeline with the given params.
func evaluate(t *testing.T, params *ted.Params, gt, rec *volume.Volume) *ted.Report {
	t.Helper()

	evaluator := ted.NewEvaluator(params)
	evaluator.SetLogger(quietLogger())

	report, err := evaluator.Evaluate(gt, rec)
	require.NoError(t, err)
	return report
}
