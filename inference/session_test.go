package inference

import (
	"os"
	"testing"

	"github.com/nvr-ai/go-pose/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorgonia.org/tensor"
)

// modelConfig returns the default model section pointed at ONNXRUNTIME_LIB
// and POSE_TEST_MODEL, skipping the test when either is unset.
func modelConfig(t *testing.T) config.ModelConfig {
	t.Helper()
	lib, model := os.Getenv("ONNXRUNTIME_LIB"), os.Getenv("POSE_TEST_MODEL")
	if lib == "" || model == "" {
		t.Skip("ONNXRUNTIME_LIB and POSE_TEST_MODEL are required")
	}
	cfg := config.Default().Model
	cfg.SharedLibrary = lib
	cfg.Path = model
	return cfg
}

func TestSessionRun(t *testing.T) {
	cfg := modelConfig(t)
	session, err := NewSession(cfg)
	require.NoError(t, err)
	defer session.Close()

	input := tensor.New(
		tensor.WithShape(shape(cfg.InputLayout, 3, cfg.InputHeight, cfg.InputWidth)...),
		tensor.Of(tensor.Float32),
	)
	heatmaps, pafs, err := session.Run(input)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{1, 19, cfg.OutputHeight, cfg.OutputWidth}, heatmaps.Shape())
	assert.Equal(t, tensor.Shape{1, 38, cfg.OutputHeight, cfg.OutputWidth}, pafs.Shape())
	assert.Equal(t, int64(1), session.Stats().Runs)

	_, _, err = session.Run(tensor.New(tensor.WithShape(1, 3, 8, 8), tensor.Of(tensor.Float32)))
	assert.Error(t, err)

	require.NoError(t, session.Close())
	require.NoError(t, session.Close())
	_, _, err = session.Run(input)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestNewSessionMissingLibrary(t *testing.T) {
	if os.Getenv("ONNXRUNTIME_LIB") != "" {
		t.Skip("runtime may already be initialized")
	}
	cfg := config.Default().Model
	cfg.SharedLibrary = t.TempDir() + "/missing.so"
	_, err := NewSession(cfg)
	assert.Error(t, err)
}
