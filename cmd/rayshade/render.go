package main

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"rayshade/internal/batch"
	"rayshade/internal/config"
	"rayshade/internal/postprocess"
	"rayshade/internal/raster"
	"rayshade/internal/scene"
	"rayshade/internal/texture"
	"rayshade/internal/tracer"
)

var renderFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "config, c",
		Usage: "JSON file with render settings",
	},
	cli.IntFlag{
		Name:  "width",
		Usage: "frame width (default 512)",
	},
	cli.IntFlag{
		Name:  "height",
		Usage: "frame height (default 512)",
	},
	cli.IntFlag{
		Name:  "depth",
		Usage: "maximum reflection/refraction depth (default 5)",
	},
	cli.Float64Flag{
		Name:  "threshold",
		Usage: "skip secondary rays whose weight falls below this value",
	},
	cli.IntFlag{
		Name:  "samples, s",
		Usage: "jittered samples per pixel for anti-aliasing (0 disables)",
	},
	cli.Float64Flag{
		Name:  "aa-threshold",
		Usage: "only anti-alias pixels that differ from a neighbour by more than this",
	},
	cli.IntFlag{
		Name:  "threads, t",
		Usage: "worker goroutines (default: number of CPUs)",
	},
	cli.IntFlag{
		Name:  "block-size",
		Usage: "edge length of the square blocks handed to workers (default 32)",
	},
	cli.StringFlag{
		Name:  "background",
		Usage: "environment for escaping rays: gradient or cubemap",
	},
	cli.StringFlag{
		Name:  "cubemap",
		Usage: "directory holding cube map faces (implies --background cubemap)",
	},
	cli.StringFlag{
		Name:  "out, o",
		Usage: "output image (.webp, .png or .bmp)",
	},
	cli.IntFlag{
		Name:  "thumbnail",
		Usage: "also write a thumbnail with this longest side",
	},
	cli.Float64Flag{
		Name:  "orbit",
		Usage: "swing the camera around the scene by this many degrees",
	},
	cli.Int64Flag{
		Name:  "seed",
		Usage: "base seed for the anti-aliasing jitter",
	},
	cli.BoolFlag{
		Name:  "debug",
		Usage: "record intersections and log every pixel; forces a single thread",
	},
}

func renderFrame(ctx *cli.Context) error {
	setupLogging(ctx)

	var cfg config.Config
	if path := ctx.String("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return fail(err)
		}
	}

	flags := config.Flags{
		Width:       ctx.Int("width"),
		Height:      ctx.Int("height"),
		Threshold:   ctx.Float64("threshold"),
		Samples:     ctx.Int("samples"),
		AAThreshold: ctx.Float64("aa-threshold"),
		Threads:     ctx.Int("threads"),
		BlockSize:   ctx.Int("block-size"),
		Background:  ctx.String("background"),
		CubeMapDir:  ctx.String("cubemap"),
		Output:      ctx.String("out"),
		Thumbnail:   ctx.Int("thumbnail"),
		Debug:       ctx.Bool("debug"),
	}
	if ctx.IsSet("depth") {
		d := ctx.Int("depth")
		flags.Depth = &d
	}
	cfg.Resolve(flags)
	if ctx.IsSet("seed") {
		cfg.Seed = ctx.Int64("seed")
	}
	if err := cfg.Validate(); err != nil {
		return fail(err)
	}
	if ext := filepath.Ext(cfg.Output); !postprocess.Supported(ext) {
		return fail(fmt.Errorf("unsupported output format %q (want one of %s)", ext, strings.Join(postprocess.Formats, ", ")))
	}
	if cfg.Debug && cfg.Threads > 1 {
		logger.Notice("debug mode: rendering on a single thread")
		cfg.Threads = 1
	}

	name := "spheres"
	if ctx.NArg() > 0 {
		name = ctx.Args().First()
	}

	textures := texture.NewCache()
	sc, err := loadScene(name, cfg, textures)
	if err != nil {
		return fail(err)
	}
	sc.RecordIntersections = cfg.Debug
	if deg := ctx.Float64("orbit"); deg != 0 {
		sc.PinholeCamera().Orbit(deg)
	}

	bg, err := tracer.ParseBackground(cfg.Background)
	if err != nil {
		return fail(err)
	}
	opts := tracer.Options{
		MaxDepth:   cfg.MaxDepth(),
		Threshold:  cfg.Threshold,
		Background: bg,
		Debug:      cfg.Debug,
	}
	if bg == tracer.CubeMap {
		if opts.CubeMap, err = texture.LoadCubeMap(cfg.CubeMapDir, textures); err != nil {
			return fail(err)
		}
	}
	logger.Infof("scene %q: %d shapes, %d lights, %d textures", sc.Name, sc.NumShapes(), len(sc.Lights()), textures.Len())

	r := raster.NewRenderer(tracer.New(sc, opts), raster.Options{
		Samples:     cfg.Samples,
		AAThreshold: cfg.AAThreshold,
		Debug:       cfg.Debug,
	})
	res := batch.Run(r, batch.Config{
		Width:     cfg.Width,
		Height:    cfg.Height,
		Threads:   cfg.Threads,
		BlockSize: cfg.BlockSize,
		Seed:      cfg.Seed,
	})

	if cfg.Debug {
		logRecords(sc.Records())
	}

	img := r.Buffer().Image()
	if err := postprocess.Encode(cfg.Output, img); err != nil {
		return fail(err)
	}
	logger.Noticef("wrote %s", cfg.Output)

	manifest := batch.Manifest{
		Scene:      sc.Name,
		Image:      filepath.Base(cfg.Output),
		Width:      cfg.Width,
		Height:     cfg.Height,
		Depth:      cfg.MaxDepth(),
		Threshold:  cfg.Threshold,
		Samples:    cfg.Samples,
		Background: cfg.Background,
		Threads:    cfg.Threads,
		Pixels:     res.Pixels(),
		Resampled:  res.Resampled(),
		WallMillis: res.Wall.Milliseconds(),
		Rendered:   time.Now().UTC(),
	}
	if cfg.Thumbnail > 0 {
		thumbPath := postprocess.ThumbnailPath(cfg.Output)
		if err := postprocess.Encode(thumbPath, postprocess.Thumbnail(img, cfg.Thumbnail)); err != nil {
			return fail(err)
		}
		manifest.Thumbnail = filepath.Base(thumbPath)
	}
	manifestPath := strings.TrimSuffix(cfg.Output, filepath.Ext(cfg.Output)) + ".json"
	if err := batch.WriteManifest(manifestPath, manifest); err != nil {
		return fail(err)
	}

	displayRenderStats(res)
	return nil
}

// loadScene resolves a built-in name or a glTF path.
func loadScene(name string, cfg config.Config, textures *texture.Cache) (*scene.Scene, error) {
	opts := scene.Options{
		Aspect:  float64(cfg.Width) / float64(cfg.Height),
		Falloff: cfg.Falloff,
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".gltf", ".glb":
		model, err := scene.LoadGLTF(name, textures)
		if err != nil {
			return nil, err
		}
		logger.Infof("imported %d meshes, %d triangles from %s", len(model.Meshes), model.Triangles(), name)
		return scene.FromModel(model, opts), nil
	}
	return scene.Builtin(name, opts)
}

// logRecords summarizes the intersection queries of the last traced sample.
func logRecords(recs []scene.Record) {
	kinds := make(map[tracer.RayKind]int)
	hits := 0
	for _, rec := range recs {
		kinds[rec.Ray.Kind]++
		if rec.OK {
			hits++
		}
	}
	logger.Noticef("last sample: %d intersection queries, %d hits", len(recs), hits)
	for _, k := range []tracer.RayKind{tracer.Visibility, tracer.Shadow, tracer.Reflection, tracer.Refraction} {
		if n := kinds[k]; n > 0 {
			logger.Noticef("  %-10s %d", k, n)
		}
	}
	for i, rec := range recs {
		logger.Debugf("  #%d %s from %v along %v: hit=%v t=%.6g", i, rec.Ray.Kind, rec.Ray.Origin, rec.Ray.Direction, rec.OK, rec.Hit.T)
	}
}

func displayRenderStats(res batch.Result) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Worker", "Blocks", "Pixels", "Resampled", "Busy time"})
	for _, s := range res.Workers {
		table.Append([]string{
			fmt.Sprintf("%d", s.Worker),
			fmt.Sprintf("%d", s.Blocks),
			fmt.Sprintf("%d", s.Pixels),
			fmt.Sprintf("%d", s.Resampled),
			s.Busy.Round(time.Millisecond).String(),
		})
	}
	table.SetFooter([]string{"", "", fmt.Sprintf("%d", res.Pixels()), "TOTAL", res.Wall.Round(time.Millisecond).String()})

	table.Render()
	logger.Noticef("render statistics\n%s", buf.String())
}
