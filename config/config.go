// Package config - koanf backed configuration: built-in defaults, an optional
// YAML file and POSE_ prefixed environment overrides, in that order.
package config

import (
	"strings"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/nvr-ai/go-pose/pose"
	"github.com/pkg/errors"
)

// EnvPrefix prefixes environment overrides. POSE_ASSEMBLY_WORKERS sets
// assembly.workers.
const EnvPrefix = "POSE_"

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// Layout is the memory order of a 4D image or output tensor.
type Layout string

const (
	// LayoutNCHW is channel-first.
	LayoutNCHW Layout = "nchw"
	// LayoutNHWC is channel-last.
	LayoutNHWC Layout = "nhwc"
)

// AssemblyConfig holds the pose pipeline constants.
type AssemblyConfig struct {
	Sigma         float64 `koanf:"sigma"`
	PeakThreshold float64 `koanf:"peakthreshold"`
	MidSamples    int     `koanf:"midsamples"`
	LineThreshold float64 `koanf:"linethreshold"`
	AlignedRatio  float64 `koanf:"alignedratio"`
	DistanceRatio float64 `koanf:"distanceratio"`
	MinNorm       float64 `koanf:"minnorm"`
	BodyLimbs     int     `koanf:"bodylimbs"`
	MinParts      int     `koanf:"minparts"`
	MinMeanScore  float64 `koanf:"minmeanscore"`
	Workers       int     `koanf:"workers"`
}

// Params converts the section to pose parameters.
func (a AssemblyConfig) Params() pose.Params {
	return pose.Params{
		Sigma:         a.Sigma,
		PeakThreshold: float32(a.PeakThreshold),
		MidSamples:    a.MidSamples,
		LineThreshold: a.LineThreshold,
		AlignedRatio:  a.AlignedRatio,
		DistanceRatio: a.DistanceRatio,
		MinNorm:       a.MinNorm,
		BodyLimbs:     a.BodyLimbs,
		MinParts:      a.MinParts,
		MinMeanScore:  a.MinMeanScore,
		Workers:       a.Workers,
	}
}

// ModelConfig describes the ONNX network and its runtime.
type ModelConfig struct {
	// Path is the ONNX model file.
	Path string `koanf:"path"`
	// SharedLibrary is the ONNX Runtime shared library.
	SharedLibrary string `koanf:"sharedlibrary"`
	// Provider is the execution provider: cpu, coreml or openvino.
	Provider    string `koanf:"provider"`
	InputName   string `koanf:"inputname"`
	InputWidth  int    `koanf:"inputwidth"`
	InputHeight int    `koanf:"inputheight"`
	InputLayout Layout `koanf:"inputlayout"`
	// HeatmapOutput and PAFOutput name the two network outputs.
	HeatmapOutput string `koanf:"heatmapoutput"`
	PAFOutput     string `koanf:"pafoutput"`
	OutputWidth   int    `koanf:"outputwidth"`
	OutputHeight  int    `koanf:"outputheight"`
	OutputLayout  Layout `koanf:"outputlayout"`
	// IntraOpThreads and InterOpThreads size the runtime thread pools; 0 lets
	// the runtime decide.
	IntraOpThreads int `koanf:"intraopthreads"`
	InterOpThreads int `koanf:"interopthreads"`
}

// RenderConfig controls keypoint drawing.
type RenderConfig struct {
	KeypointThreshold float64 `koanf:"keypointthreshold"`
	Radius            int     `koanf:"radius"`
	Thickness         int     `koanf:"thickness"`
	// Alpha is the weight of the original image when blending the overlay.
	Alpha float64 `koanf:"alpha"`
	Limbs bool    `koanf:"limbs"`
	// PartColors colors keypoints by body region instead of green.
	PartColors bool `koanf:"partcolors"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level       string `koanf:"level"`
	Development bool   `koanf:"development"`
}

// Config is the application configuration.
type Config struct {
	Assembly AssemblyConfig `koanf:"assembly"`
	Model    ModelConfig    `koanf:"model"`
	Render   RenderConfig   `koanf:"render"`
	Log      LogConfig      `koanf:"log"`
}

// Defaults returns the built-in values keyed by koanf path.
func Defaults() map[string]any {
	p := pose.DefaultParams()
	return map[string]any{
		"assembly.sigma":         p.Sigma,
		"assembly.peakthreshold": float64(p.PeakThreshold),
		"assembly.midsamples":    p.MidSamples,
		"assembly.linethreshold": p.LineThreshold,
		"assembly.alignedratio":  p.AlignedRatio,
		"assembly.distanceratio": p.DistanceRatio,
		"assembly.minnorm":       p.MinNorm,
		"assembly.bodylimbs":     p.BodyLimbs,
		"assembly.minparts":      p.MinParts,
		"assembly.minmeanscore":  p.MinMeanScore,
		"assembly.workers":       0,

		"model.path":           "models/openpose.onnx",
		"model.sharedlibrary":  "",
		"model.provider":       "cpu",
		"model.inputname":      "image",
		"model.inputwidth":     224,
		"model.inputheight":    224,
		"model.inputlayout":    string(LayoutNHWC),
		"model.heatmapoutput":  "heatmap",
		"model.pafoutput":      "paf",
		"model.outputwidth":    28,
		"model.outputheight":   28,
		"model.outputlayout":   string(LayoutNHWC),
		"model.intraopthreads": 0,
		"model.interopthreads": 0,

		"render.keypointthreshold": 0.8,
		"render.radius":            4,
		"render.thickness":         2,
		"render.alpha":             0.8,
		"render.limbs":             true,
		"render.partcolors":        false,

		"log.level":       "info",
		"log.development": false,
	}
}

// Default returns the configuration built from Defaults alone.
func Default() *Config {
	cfg, err := load("", nil)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads defaults, then the YAML file at path (skipped when empty), then
// POSE_ environment variables, and validates the result.
//
// Arguments:
//   - path: YAML configuration file, or "" for defaults and environment only.
//
// Returns:
//   - *Config: The merged configuration.
//   - error: Load, unmarshal or validation failure.
//
// @example
//
//	cfg, err := config.Load("config/config.yaml")
func Load(path string) (*Config, error) {
	cfg, err := load(path, env.Provider(EnvPrefix, ".", envKey))
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func load(path string, environment koanf.Provider) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, errors.Wrap(err, "load defaults")
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "load %s", path)
		}
	}
	if environment != nil {
		if err := k.Load(environment, nil); err != nil {
			return nil, errors.Wrap(err, "load environment")
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal configuration")
	}
	return &cfg, nil
}

// envKey maps POSE_MODEL_INPUTWIDTH to model.inputwidth.
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".")
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if err := c.Assembly.Params().Validate(); err != nil {
		return errors.Wrap(ErrInvalidConfig, err.Error())
	}
	m := c.Model
	if m.InputWidth <= 0 || m.InputHeight <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "model input %dx%d", m.InputWidth, m.InputHeight)
	}
	if m.OutputWidth <= 0 || m.OutputHeight <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "model output %dx%d", m.OutputWidth, m.OutputHeight)
	}
	for _, l := range []Layout{m.InputLayout, m.OutputLayout} {
		if l != LayoutNCHW && l != LayoutNHWC {
			return errors.Wrapf(ErrInvalidConfig, "unknown layout %q", l)
		}
	}
	switch m.Provider {
	case "cpu", "coreml", "openvino":
	default:
		return errors.Wrapf(ErrInvalidConfig, "unknown provider %q", m.Provider)
	}
	if c.Render.Alpha < 0 || c.Render.Alpha > 1 {
		return errors.Wrapf(ErrInvalidConfig, "render alpha %v is outside [0, 1]", c.Render.Alpha)
	}
	return nil
}
