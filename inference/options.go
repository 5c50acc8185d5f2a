package inference

import (
	"strconv"

	"github.com/nvr-ai/go-pose/config"
	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
)

// Execution provider names accepted in model.provider.
const (
	ProviderCPU      = "cpu"
	ProviderCoreML   = "coreml"
	ProviderOpenVINO = "openvino"
)

// openVINOOptions are passed to the OpenVINO execution provider.
// See https://onnxruntime.ai/docs/execution-providers/OpenVINO-ExecutionProvider.html
func openVINOOptions(cfg config.ModelConfig) map[string]string {
	opts := map[string]string{
		"device_type": "CPU",
		"precision":   "FP32",
	}
	if cfg.IntraOpThreads > 0 {
		opts["num_of_threads"] = strconv.Itoa(cfg.IntraOpThreads)
	}
	return opts
}

// sessionOptions builds runtime options from the model configuration. The
// caller destroys the result.
func sessionOptions(cfg config.ModelConfig) (*ort.SessionOptions, error) {
	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, errors.Wrap(err, "create session options")
	}

	if err := configure(options, cfg); err != nil {
		options.Destroy()
		return nil, err
	}
	return options, nil
}

func configure(options *ort.SessionOptions, cfg config.ModelConfig) error {
	if err := options.SetGraphOptimizationLevel(ort.GraphOptimizationLevelEnableExtended); err != nil {
		return errors.Wrap(err, "set graph optimization level")
	}
	if err := options.SetIntraOpNumThreads(cfg.IntraOpThreads); err != nil {
		return errors.Wrap(err, "set intra-op threads")
	}
	if err := options.SetInterOpNumThreads(cfg.InterOpThreads); err != nil {
		return errors.Wrap(err, "set inter-op threads")
	}

	switch cfg.Provider {
	case ProviderCPU, "":
	case ProviderCoreML:
		if err := options.AppendExecutionProviderCoreML(0); err != nil {
			return errors.Wrap(err, "enable CoreML")
		}
	case ProviderOpenVINO:
		if err := options.AppendExecutionProviderOpenVINO(openVINOOptions(cfg)); err != nil {
			return errors.Wrap(err, "enable OpenVINO")
		}
	default:
		return errors.Errorf("unsupported execution provider %q", cfg.Provider)
	}
	return nil
}
