// Package inference - ONNX Runtime session for pose networks that emit part
// heatmaps and part affinity fields.
package inference

import (
	"os"
	"sync"
	"time"

	"github.com/nvr-ai/go-pose/config"
	"github.com/nvr-ai/go-pose/skeleton"
	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
	"go.uber.org/zap"
	"gorgonia.org/tensor"
)

// ErrClosed is returned by Run after Close.
var ErrClosed = errors.New("session closed")

// environment guards the process wide runtime initialization.
var environment sync.Mutex

// Stats summarizes the runs of a session.
type Stats struct {
	// Runs is the number of completed runs.
	Runs int64 `json:"runs"`
	// Total is the time spent inside the runtime.
	Total time.Duration `json:"total"`
}

// Average returns the mean run time, or zero before the first run.
func (s Stats) Average() time.Duration {
	if s.Runs == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Runs)
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// Session runs a pose network with preallocated input and output tensors.
// Run is serialized; create one session per concurrent caller.
type Session struct {
	cfg     config.ModelConfig
	logger  *zap.Logger
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	heatmap *ort.Tensor[float32]
	paf     *ort.Tensor[float32]

	mu    sync.Mutex
	stats Stats
}

// NewSession loads the model described by cfg.
//
// Order of operations:
//  1. Locate the runtime library and initialize the environment once.
//  2. Allocate the input and both output tensors from the configured shapes.
//  3. Build session options and create the session.
//
// Arguments:
//   - cfg: Model file, tensor names, shapes, layouts and runtime options.
//   - opts: Optional settings.
//
// Returns:
//   - *Session: The session. The caller must Close it.
//   - error: If the library, the model or a tensor cannot be set up.
//
// @example
//
//	session, err := inference.NewSession(cfg.Model, inference.WithLogger(log))
//	if err != nil {
//		return err
//	}
//	defer session.Close()
func NewSession(cfg config.ModelConfig, opts ...Option) (*Session, error) {
	s := &Session{cfg: cfg, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}

	if err := initEnvironment(cfg.SharedLibrary); err != nil {
		return nil, err
	}

	var err error
	defer func() {
		if err != nil {
			s.Close()
		}
	}()

	in := shape(cfg.InputLayout, 3, cfg.InputHeight, cfg.InputWidth)
	if s.input, err = ort.NewEmptyTensor[float32](ortShape(in)); err != nil {
		return nil, errors.Wrap(err, "create input tensor")
	}
	heat := shape(cfg.OutputLayout, skeleton.HeatmapChannels, cfg.OutputHeight, cfg.OutputWidth)
	if s.heatmap, err = ort.NewEmptyTensor[float32](ortShape(heat)); err != nil {
		return nil, errors.Wrap(err, "create heatmap tensor")
	}
	paf := shape(cfg.OutputLayout, skeleton.VectorFieldChannels, cfg.OutputHeight, cfg.OutputWidth)
	if s.paf, err = ort.NewEmptyTensor[float32](ortShape(paf)); err != nil {
		return nil, errors.Wrap(err, "create vector field tensor")
	}

	options, err := sessionOptions(cfg)
	if err != nil {
		return nil, err
	}
	defer options.Destroy()

	s.session, err = ort.NewAdvancedSession(
		cfg.Path,
		[]string{cfg.InputName},
		[]string{cfg.HeatmapOutput, cfg.PAFOutput},
		[]ort.ArbitraryTensor{s.input},
		[]ort.ArbitraryTensor{s.heatmap, s.paf},
		options,
	)
	if err != nil {
		err = errors.Wrapf(err, "create session for %s", cfg.Path)
		return nil, err
	}

	s.logger.Info("session created",
		zap.String("model", cfg.Path),
		zap.String("provider", cfg.Provider),
		zap.Ints("input", in),
		zap.Ints("heatmap", heat),
		zap.Ints("paf", paf),
	)
	return s, nil
}

func initEnvironment(library string) error {
	environment.Lock()
	defer environment.Unlock()

	if ort.IsInitialized() {
		return nil
	}
	path := SharedLibraryPath(library)
	if _, err := os.Stat(path); err != nil {
		return errors.Wrapf(err, "onnxruntime library %s", path)
	}
	ort.SetSharedLibraryPath(path)
	if err := ort.InitializeEnvironment(); err != nil {
		return errors.Wrap(err, "initialize onnxruntime environment")
	}
	return nil
}

func ortShape(s tensor.Shape) ort.Shape {
	dims := make([]int64, len(s))
	for i, d := range s {
		dims[i] = int64(d)
	}
	return ort.NewShape(dims...)
}

// Run feeds input to the network and returns the heatmaps and part affinity
// fields as channel-first [1, C, H, W] tensors.
//
// Arguments:
//   - input: A float32 tensor in the configured input shape and layout.
//
// Returns:
//   - heatmaps: [1, 19, H, W].
//   - pafs: [1, 38, H, W].
//   - error: On shape mismatch or runtime failure.
func (s *Session) Run(input *tensor.Dense) (heatmaps, pafs *tensor.Dense, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return nil, nil, ErrClosed
	}
	want := shape(s.cfg.InputLayout, 3, s.cfg.InputHeight, s.cfg.InputWidth)
	if !input.Shape().Eq(want) {
		return nil, nil, errors.Errorf("input shape %v, expected %v", input.Shape(), want)
	}
	data, ok := input.Data().([]float32)
	if !ok {
		return nil, nil, errors.Errorf("input backed by %T, expected []float32", input.Data())
	}
	copy(s.input.GetData(), data)

	start := time.Now()
	if err := s.session.Run(); err != nil {
		return nil, nil, errors.Wrap(err, "run session")
	}
	elapsed := time.Since(start)
	s.stats.Runs++
	s.stats.Total += elapsed

	oh, ow := s.cfg.OutputHeight, s.cfg.OutputWidth
	heatmaps, err = ChannelsFirst(s.heatmap.GetData(), s.cfg.OutputLayout, skeleton.HeatmapChannels, oh, ow)
	if err != nil {
		return nil, nil, errors.Wrap(err, "heatmap output")
	}
	pafs, err = ChannelsFirst(s.paf.GetData(), s.cfg.OutputLayout, skeleton.VectorFieldChannels, oh, ow)
	if err != nil {
		return nil, nil, errors.Wrap(err, "vector field output")
	}

	s.logger.Debug("session run", zap.Duration("elapsed", elapsed))
	return heatmaps, pafs, nil
}

// Stats returns the accumulated run statistics.
func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Close releases the session and its tensors. It is safe to call twice.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	if s.session != nil {
		err = errors.Wrap(s.session.Destroy(), "destroy session")
		s.session = nil
	}
	for _, t := range []**ort.Tensor[float32]{&s.input, &s.heatmap, &s.paf} {
		if *t != nil {
			(*t).Destroy()
			*t = nil
		}
	}
	return err
}
