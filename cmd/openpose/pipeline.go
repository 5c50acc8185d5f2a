package main

import (
	"encoding/json"
	"image"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nvr-ai/go-pose/config"
	"github.com/nvr-ai/go-pose/pose"
	"github.com/nvr-ai/go-pose/preprocess"
	"github.com/nvr-ai/go-pose/profiler"
	"github.com/nvr-ai/go-pose/render"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gocv.io/x/gocv"
	"gorgonia.org/tensor"
)

// network produces channel-first heatmaps and part affinity fields.
type network interface {
	Run(input *tensor.Dense) (heatmaps, pafs *tensor.Dense, err error)
}

// Report is the JSON document written next to an annotated image.
type Report struct {
	Image   string        `json:"image"`
	Width   int           `json:"width"`
	Height  int           `json:"height"`
	People  []pose.Person `json:"people"`
	Elapsed time.Duration `json:"elapsed_ns"`
}

type pipeline struct {
	cfg       *config.Config
	net       network
	estimator *pose.Estimator
	profiler  *profiler.Profiler
	logger    *zap.Logger
}

func newPipeline(cfg *config.Config, net network, logger *zap.Logger) (*pipeline, error) {
	estimator, err := pose.NewEstimator(
		pose.WithParams(cfg.Assembly.Params()),
		pose.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}
	return &pipeline{
		cfg:       cfg,
		net:       net,
		estimator: estimator,
		profiler:  profiler.New(),
		logger:    logger,
	}, nil
}

// detect finds the people in img and returns them in img's coordinates.
func (p *pipeline) detect(img image.Image) ([]pose.Person, error) {
	m := p.cfg.Model
	done := p.profiler.StartOperation(profiler.StageLetterbox)
	lb, err := preprocess.Letterbox(img, m.InputWidth, m.InputHeight)
	done()
	if err != nil {
		return nil, err
	}

	order := preprocess.ChannelOrderCHW
	if m.InputLayout == config.LayoutNHWC {
		order = preprocess.ChannelOrderHWC
	}
	input := lb.Tensor(order)

	done = p.profiler.StartOperation(profiler.StageInference)
	heatmaps, pafs, err := p.net.Run(input)
	done()
	if err != nil {
		return nil, err
	}

	done = p.profiler.StartOperation(profiler.StageEstimate)
	result, err := p.estimator.Estimate(heatmaps, pafs, m.InputHeight, m.InputWidth)
	done()
	if err != nil {
		return nil, err
	}

	people := result.People()
	for i := range people {
		people[i] = people[i].Map(lb.Unmap)
	}
	return people, nil
}

// processFile annotates the image at in, writes it to out and, when
// writeJSON is set, a report beside it.
func (p *pipeline) processFile(in, out string, writeJSON bool) error {
	start := time.Now()

	done := p.profiler.StartOperation(profiler.StageDecode)
	img := gocv.IMRead(in, gocv.IMReadColor)
	defer img.Close()
	if img.Empty() {
		done()
		return errors.Errorf("cannot read image %s", in)
	}
	src, err := img.ToImage()
	done()
	if err != nil {
		return errors.Wrapf(err, "convert %s", in)
	}

	people, err := p.detect(src)
	if err != nil {
		return errors.Wrapf(err, "estimate %s", in)
	}

	done = p.profiler.StartOperation(profiler.StageRender)
	err = render.Pose(&img, people, render.FromConfig(p.cfg.Render))
	done()
	if err != nil {
		return errors.Wrapf(err, "render %s", in)
	}
	if ok := gocv.IMWrite(out, img); !ok {
		return errors.Errorf("cannot write image %s", out)
	}

	report := Report{
		Image:   in,
		Width:   img.Cols(),
		Height:  img.Rows(),
		People:  people,
		Elapsed: time.Since(start),
	}
	if writeJSON {
		if err := writeReport(reportPath(out), report); err != nil {
			return err
		}
	}

	p.logger.Info("image processed",
		zap.String("input", in),
		zap.String("output", out),
		zap.Int("people", len(people)),
		zap.Duration("elapsed", report.Elapsed),
	)
	return nil
}

func reportPath(imagePath string) string {
	return strings.TrimSuffix(imagePath, filepath.Ext(imagePath)) + ".json"
}

func writeReport(path string, report Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode report")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return nil
}
