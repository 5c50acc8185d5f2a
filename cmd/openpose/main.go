// Command openpose estimates multi-person poses in images with an ONNX pose
// network and writes annotated copies.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nvr-ai/go-pose/config"
	"github.com/nvr-ai/go-pose/inference"
	"github.com/nvr-ai/go-pose/logger"
	"github.com/nvr-ai/go-pose/util"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// job pairs an input image with its annotated output.
type job struct {
	in, out string
}

func main() {
	var (
		configPath string
		imagePath  string
		dir        string
		output     string
		writeJSON  bool
	)
	flag.StringVar(&configPath, "config", "", "Path to a YAML configuration file")
	flag.StringVar(&imagePath, "image", "", "Path to an image file (.jpg, .jpeg, .png, .bmp)")
	flag.StringVar(&dir, "dir", "", "Directory of images to process")
	flag.StringVar(&output, "output", "", "Output image file, or output directory with -dir")
	flag.BoolVar(&writeJSON, "json", false, "Write a JSON report next to each output image")
	flag.Parse()

	if err := run(configPath, imagePath, dir, output, writeJSON); err != nil {
		fmt.Fprintf(os.Stderr, "openpose: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, imagePath, dir, output string, writeJSON bool) error {
	jobs, err := plan(imagePath, dir, output)
	if err != nil {
		return err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	session, err := inference.NewSession(cfg.Model, inference.WithLogger(log))
	if err != nil {
		return err
	}
	defer session.Close()

	p, err := newPipeline(cfg, session, log)
	if err != nil {
		return err
	}

	failed := 0
	for _, j := range jobs {
		if err := p.processFile(j.in, j.out, writeJSON); err != nil {
			log.Error("image failed", zap.String("input", j.in), zap.Error(err))
			failed++
		}
	}

	stats := session.Stats()
	log.Info("done", append([]zap.Field{
		zap.Int("images", len(jobs)),
		zap.Int("failed", failed),
		zap.Int64("runs", stats.Runs),
		zap.Duration("average_run", stats.Average()),
	}, p.profiler.Fields()...)...)
	if failed > 0 {
		return errors.Errorf("%d of %d images failed", failed, len(jobs))
	}
	return nil
}

// plan resolves the flags to a list of jobs. A single image defaults to
// <name>_pose<ext>; a directory defaults to <dir>/pose.
func plan(imagePath, dir, output string) ([]job, error) {
	switch {
	case imagePath != "" && dir != "":
		return nil, errors.New("use either -image or -dir")
	case imagePath != "":
		if !util.IsImage(imagePath) {
			return nil, errors.Errorf("unsupported image %s", imagePath)
		}
		if output == "" {
			ext := filepath.Ext(imagePath)
			output = imagePath[:len(imagePath)-len(ext)] + "_pose" + ext
		}
		return []job{{in: imagePath, out: output}}, nil
	case dir != "":
		files, err := util.ListImageFiles(dir)
		if err != nil {
			return nil, err
		}
		if output == "" {
			output = filepath.Join(dir, "pose")
		}
		if err := os.MkdirAll(output, 0o755); err != nil {
			return nil, errors.Wrapf(err, "create %s", output)
		}
		jobs := make([]job, len(files))
		for i, f := range files {
			jobs[i] = job{in: f.Path, out: filepath.Join(output, filepath.Base(f.Path))}
		}
		return jobs, nil
	}
	return nil, errors.New("one of -image or -dir is required")
}
