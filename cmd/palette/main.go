package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image/color"
	"os"
	"strings"

	"github.com/anime-shed/pokemon-palette-go/internal/catalog"
	"github.com/anime-shed/pokemon-palette-go/internal/config"
	"github.com/anime-shed/pokemon-palette-go/internal/container"
	"github.com/anime-shed/pokemon-palette-go/internal/logger"
	"github.com/anime-shed/pokemon-palette-go/internal/matcher"
	"github.com/anime-shed/pokemon-palette-go/internal/palette"
	"github.com/anime-shed/pokemon-palette-go/internal/stats"
)

func main() {
	cmd, args := "run", os.Args[1:]
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}

	var err error
	switch cmd {
	case "run":
		err = runAll(args)
	case "means":
		runMeans()
	case "average":
		err = runAverage(args)
	case "scan":
		err = runScan(args)
	case "match":
		err = runMatch(args)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fail(err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: palette [command] [args]")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  run     [-image metapod.png] [-dir images] [-force]   means, one average, gated scan (default)")
	fmt.Fprintln(os.Stderr, "  means                                               list and stack means")
	fmt.Fprintln(os.Stderr, "  average -image metapod.png [-dir images]")
	fmt.Fprintln(os.Stderr, "  scan    [-dir images] [-force]")
	fmt.Fprintln(os.Stderr, "  match   -r 0 -g 0 -b 0 [-n 5]")
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}

// commonFlags binds the flags shared by the image commands onto cfg.
func commonFlags(fs *flag.FlagSet, cfg *config.Config) {
	fs.StringVar(&cfg.ImageDir, "dir", cfg.ImageDir, "image directory for local storage")
	fs.StringVar(&cfg.ReportPath, "report", cfg.ReportPath, "report file")
	fs.StringVar(&cfg.MarkerPath, "marker", cfg.MarkerPath, "run-once marker file")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
}

func setup(name string, args []string, extra func(fs *flag.FlagSet)) (*container.Container, error) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, err
	}
	if os.Getenv("LOG_LEVEL") == "" {
		cfg.LogLevel = "warn"
	}

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	commonFlags(fs, cfg)
	if extra != nil {
		extra(fs)
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	logger.SetLevel(cfg.LogLevel)

	return container.NewContainer(cfg)
}

func runMeans() {
	fmt.Println(stats.Mean(stats.DefaultList(), true))
	fmt.Println(stats.StackMean(stats.DefaultStack(), true))
}

func runAll(args []string) error {
	var image string
	var force bool
	c, err := setup("run", args, func(fs *flag.FlagSet) {
		fs.StringVar(&image, "image", "metapod.png", "image to average")
		fs.BoolVar(&force, "force", false, "reset the marker before scanning")
	})
	if err != nil {
		return err
	}
	defer c.Close()

	runMeans()
	printAverage(c, image)
	return scan(c, force)
}

func runAverage(args []string) error {
	var image string
	c, err := setup("average", args, func(fs *flag.FlagSet) {
		fs.StringVar(&image, "image", "", "image to average")
	})
	if err != nil {
		return err
	}
	defer c.Close()

	if image == "" {
		return errors.New("missing required -image")
	}
	printAverage(c, image)
	return nil
}

// printAverage prints the average color, or the reason there is none.
func printAverage(c *container.Container, name string) {
	loaded, err := c.Repository().LoadImage(context.Background(), name)
	if err != nil {
		fmt.Printf("%s: %v\n", name, err)
		return
	}
	avg, err := c.Averager().Average(loaded.Image)
	if errors.Is(err, palette.ErrNoOpaquePixels) {
		fmt.Printf("%s: no fully opaque pixels\n", name)
		return
	}
	fmt.Println(avg)
}

func runScan(args []string) error {
	var force bool
	c, err := setup("scan", args, func(fs *flag.FlagSet) {
		fs.BoolVar(&force, "force", false, "reset the marker before scanning")
	})
	if err != nil {
		return err
	}
	defer c.Close()
	return scan(c, force)
}

func scan(c *container.Container, force bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), c.Config().ScanTimeout)
	defer cancel()

	ran, err := c.Catalog().Process(ctx, force)
	if err != nil {
		return fmt.Errorf("catalog scan: %w", err)
	}
	if !ran {
		fmt.Println("Catalog has been processed before, skipping...")
		return nil
	}
	report, err := c.Catalog().Report()
	if err != nil {
		return err
	}
	fmt.Printf("Catalog processed: %d images written to %s\n", report.TotalImages, c.Catalog().ReportPath())
	return nil
}

type matchArgs struct {
	report  string
	r, g, b uint
	n       uint
}

// parseMatchArgs reads the match flags; the report defaults to REPORT_PATH.
func parseMatchArgs(args []string, cfg *config.Config) (matchArgs, error) {
	var m matchArgs
	fs := flag.NewFlagSet("match", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.StringVar(&m.report, "report", cfg.ReportPath, "report file")
	fs.UintVar(&m.r, "r", 0, "red")
	fs.UintVar(&m.g, "g", 0, "green")
	fs.UintVar(&m.b, "b", 0, "blue")
	fs.UintVar(&m.n, "n", 5, "number of matches")
	if err := fs.Parse(args); err != nil {
		return m, err
	}
	if m.r > 255 || m.g > 255 || m.b > 255 {
		return m, errors.New("channels must be in 0..255")
	}
	return m, nil
}

func runMatch(args []string) error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return err
	}
	m, err := parseMatchArgs(args, cfg)
	if err != nil {
		return err
	}

	rep, err := catalog.ReadReport(m.report)
	if err != nil {
		return err
	}
	matches, err := matcher.New(rep.Images).Rank(color.NRGBA{R: uint8(m.r), G: uint8(m.g), B: uint8(m.b), A: 0xff}, int(m.n))
	if err != nil {
		return err
	}
	for _, m := range matches {
		fmt.Printf("%-24s %s %.2f\n", m.Record.FileName, m.Average, m.Distance)
	}
	return nil
}
