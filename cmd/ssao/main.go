// Command ssao computes screen-space ambient occlusion for a depth image or
// a synthetic scene and writes the result as a grayscale PNG.
//
// Usage:
//
//	ssao -scene sphere -out sphere_ao.png
//	ssao -in depth.png -near 0.5 -far 80 -strength 0.8 -view
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/chewxy/math32"
	"github.com/gdamore/tcell/v2"

	"github.com/gogpu/ssao"
	"github.com/gogpu/ssao/depthio"
	"github.com/gogpu/ssao/internal/synth"
	"github.com/gogpu/ssao/internal/termview"
)

func main() {
	var (
		in        = flag.String("in", "", "depth input (.png, .tif, .tiff or "+depthio.CaptureExt+")")
		scene     = flag.String("scene", "sphere", "synthetic scene when -in is empty: "+strings.Join(synth.Names(), ", "))
		width     = flag.Int("width", 640, "synthetic scene width")
		height    = flag.Int("height", 360, "synthetic scene height")
		near      = flag.Float64("near", float64(depthio.DefaultRange.Near), "depth mapped from the smallest non-zero image value")
		far       = flag.Float64("far", float64(depthio.DefaultRange.Far), "depth mapped from the largest image value")
		fov       = flag.Float64("fov", 60, "vertical field of view in degrees")
		strength  = flag.Float64("strength", ssao.DefaultStrength, "occlusion strength in [0, 1]")
		radius    = flag.Float64("radius", ssao.DefaultSamplingRadius, "sampling radius as a fraction of output height")
		workers   = flag.Int("workers", 0, "tile workers (0 = GOMAXPROCS)")
		lanes     = flag.String("lanes", ssao.LaneSerial.String(), "lane execution: serial or goroutines")
		useGPU    = flag.Bool("gpu", true, "use the GPU accelerator when available")
		local     = flag.Bool("local", false, "write the local-pass diagnostic instead of the final output")
		output    = flag.String("out", "ao.png", "output PNG")
		scale     = flag.Int("scale", 1, "upscale factor for the output PNG")
		saveDepth = flag.String("save-depth", "", "also save the input depth as a "+depthio.CaptureExt+" capture")
		view      = flag.Bool("view", false, "preview the result in the terminal")
		verbose   = flag.Bool("v", false, "verbose logging")
	)
	flag.Parse()

	if *verbose {
		ssao.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	depth, title, err := loadDepth(*in, *scene, *width, *height, depthio.Range{Near: float32(*near), Far: float32(*far)})
	if err != nil {
		log.Fatalf("Failed to load depth: %v", err)
	}
	if *saveDepth != "" {
		if err := depthio.SaveCapture(*saveDepth, depth); err != nil {
			log.Fatalf("Failed to save depth: %v", err)
		}
	}

	laneMode, err := ssao.ParseLaneExecution(*lanes)
	if err != nil {
		log.Fatalf("Invalid -lanes: %v", err)
	}
	params, err := ssao.NewParams(depth.Width, depth.Height,
		ssao.WithStrength(float32(*strength)),
		ssao.WithSamplingRadius(float32(*radius)),
	)
	if err != nil {
		log.Fatalf("Invalid parameters: %v", err)
	}

	aspect := float32(depth.Width) / float32(depth.Height)
	r := ssao.NewRenderer(
		ssao.WithWorkers(*workers),
		ssao.WithLaneExecution(laneMode),
		ssao.WithAccelerator(*useGPU),
		ssao.WithReconstructor(ssao.NewPerspective(float32(*fov)*math32.Pi/180, aspect)),
	)
	defer r.Close()

	start := time.Now()
	var ao *ssao.AOBuffer
	if *local {
		ao, err = r.ComputeLocal(ctx, depth, params)
	} else {
		ao, err = r.Compute(ctx, depth, params)
	}
	if err != nil {
		log.Fatalf("Failed to compute: %v", err)
	}
	elapsed := time.Since(start)

	if err := depthio.SaveAO(*output, ao, *scale); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}
	lo, hi, mean := ao.Stats()
	log.Printf("%s: %dx%d in %v (min %.3f, max %.3f, mean %.3f) -> %s\n",
		title, ao.Width, ao.Height, elapsed.Round(time.Microsecond), lo, hi, mean, *output)

	if *view {
		if err := preview(ctx, ao, title); err != nil {
			log.Fatalf("Preview failed: %v", err)
		}
	}
}

func loadDepth(path, scene string, w, h int, rng depthio.Range) (*ssao.DepthBuffer, string, error) {
	if path != "" {
		d, err := depthio.Load(path, rng)
		return d, path, err
	}
	data, err := synth.Scene(scene, w, h)
	if err != nil {
		return nil, "", err
	}
	d, err := ssao.DepthBufferFrom(w, h, data)
	return d, fmt.Sprintf("scene %s", scene), err
}

func preview(ctx context.Context, ao *ssao.AOBuffer, title string) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()
	err = termview.New(screen, ao, title).Run(ctx)
	if err == context.Canceled {
		return nil
	}
	return err
}
