package inference

import (
	"testing"

	"github.com/nvr-ai/go-pose/config"
	"github.com/nvr-ai/go-pose/fields"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorgonia.org/tensor"
)

func TestChannelsFirstFromNHWC(t *testing.T) {
	// 2x2 image with 3 channels, value = 100*c + 10*y + x.
	var data []float32
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			for c := 0; c < 3; c++ {
				data = append(data, float32(100*c+10*y+x))
			}
		}
	}

	got, err := ChannelsFirst(data, config.LayoutNHWC, 3, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{1, 3, 2, 2}, got.Shape())
	assert.Equal(t, []float32{0, 1, 10, 11, 100, 101, 110, 111, 200, 201, 210, 211}, got.Data())

	stack, err := fields.FromTensor(got, 3)
	require.NoError(t, err)
	assert.Equal(t, float32(211), stack[2].At(1, 1))
}

func TestChannelsFirstFromNCHWCopies(t *testing.T) {
	data := []float32{1, 2, 3, 4}
	got, err := ChannelsFirst(data, config.LayoutNCHW, 1, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{1, 1, 2, 2}, got.Shape())

	data[0] = 9
	assert.Equal(t, []float32{1, 2, 3, 4}, got.Data(), "result owns its data")
}

func TestChannelsFirstLengthMismatch(t *testing.T) {
	_, err := ChannelsFirst(make([]float32, 5), config.LayoutNHWC, 3, 2, 2)
	assert.Error(t, err)
}

func TestShape(t *testing.T) {
	assert.Equal(t, tensor.Shape{1, 224, 224, 3}, shape(config.LayoutNHWC, 3, 224, 224))
	assert.Equal(t, tensor.Shape{1, 19, 28, 28}, shape(config.LayoutNCHW, 19, 28, 28))
}

func TestSharedLibraryPath(t *testing.T) {
	assert.Equal(t, "/opt/ort/libonnxruntime.so", SharedLibraryPath("/opt/ort/libonnxruntime.so"))
	assert.NotEmpty(t, SharedLibraryPath(""))

	assert.Equal(t, "third_party/onnxruntime.so", defaultLibraryPath("linux", "amd64"))
	assert.Equal(t, "third_party/onnxruntime_arm64.so", defaultLibraryPath("linux", "arm64"))
	assert.Equal(t, "third_party/libonnxruntime.dylib", defaultLibraryPath("darwin", "arm64"))
	assert.Equal(t, "third_party/onnxruntime.dll", defaultLibraryPath("windows", "amd64"))
}

func TestOpenVINOOptions(t *testing.T) {
	opts := openVINOOptions(config.ModelConfig{IntraOpThreads: 4})
	assert.Equal(t, "4", opts["num_of_threads"])
	assert.Equal(t, "CPU", opts["device_type"])

	_, ok := openVINOOptions(config.ModelConfig{})["num_of_threads"]
	assert.False(t, ok)
}

func TestStatsAverage(t *testing.T) {
	assert.Zero(t, Stats{}.Average())
	assert.Equal(t, int64(5), int64(Stats{Runs: 2, Total: 10}.Average()))
}
