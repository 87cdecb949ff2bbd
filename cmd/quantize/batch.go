package main

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/setanarut/kquant"
	"github.com/setanarut/kquant/utils"
	"golang.org/x/sync/errgroup"
)

type config struct {
	opt      kquant.Options
	jobs     int
	layers   bool
	palette  bool
	dominant bool
	blur     float64
}

// run quantizes every file and returns how many failed. A failing image does
// not stop the others.
func run(ctx context.Context, files []string, cfg config, log *kquant.Logger) int {
	var failed atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, cfg.jobs))
	for _, file := range files {
		g.Go(func() error {
			flog := log.WithFile(file).WithK(cfg.opt.K)
			flog.InfoContext(ctx, "processing")
			dst, err := processFile(ctx, file, cfg, flog)
			flog.LogImage(ctx, dst, err)
			if err != nil {
				failed.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()
	return int(failed.Load())
}

func processFile(ctx context.Context, file string, cfg config, log *kquant.Logger) (string, error) {
	img, err := utils.ReadImage(file)
	if err != nil {
		return "", err
	}
	img = utils.Denoise(img, cfg.blur)

	opt := cfg.opt
	opt.Logger = log
	if cfg.dominant {
		opt.Seeds = utils.ExtractDominantSeeds(img, opt.K)
	}

	q := kquant.NewQuantizer(img)
	if err := q.Build(ctx, opt); err != nil {
		return "", err
	}

	dst := utils.ResultPath(file, opt.K)
	if err := utils.SaveImage(q.Image(), dst); err != nil {
		return "", fmt.Errorf("write %s: %w", dst, err)
	}
	if cfg.layers {
		if err := utils.SaveRgbaImages(q.RGBALayers(), dst); err != nil {
			return "", fmt.Errorf("write layers: %w", err)
		}
	}
	if cfg.palette {
		if err := utils.SavePalette(q.Palette(), 64, utils.PalettePath(dst)); err != nil {
			return "", fmt.Errorf("write palette: %w", err)
		}
	}
	return dst, nil
}
