package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/five82/haarview/internal/app"
	"github.com/five82/haarview/internal/workflow"
)

const usage = `usage:
  haarview [-config PATH] [-env PATH]
  haarview [-config PATH] [-env PATH] compress [-level N] [-ratio N] [-step N] [-out DIR] FILE.bmp
  haarview [-config PATH] [-env PATH] decompress [-out DIR] FILE.compressed
  haarview [-config PATH] [-env PATH] sample [-size N] [-out DIR]
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	global := flag.NewFlagSet("haarview", flag.ContinueOnError)
	global.SetOutput(stderr)
	global.Usage = func() { fmt.Fprint(stderr, usage) }
	configPath := global.String("config", "", "override config path (optional)")
	envFile := global.String("env", "", "override .env path (optional)")
	if err := global.Parse(args); err != nil {
		return 2
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{ConfigPath: *configPath, EnvFile: *envFile}
	rest := global.Args()
	if len(rest) == 0 {
		if err := app.Run(ctx, opts); err != nil {
			fmt.Fprintf(stderr, "haarview: %v\n", err)
			return 1
		}
		return 0
	}

	var (
		path string
		err  error
	)
	switch rest[0] {
	case "compress":
		fs := flag.NewFlagSet("compress", flag.ContinueOnError)
		fs.SetOutput(stderr)
		level := fs.Int("level", workflow.DefaultLevel, "decomposition level (1-5)")
		ratio := fs.Int("ratio", workflow.DefaultRatio, "compression ratio in percent (0-100)")
		step := fs.Int("step", 0, "visualization step to download")
		out := fs.String("out", "", "output directory (optional)")
		if fs.Parse(rest[1:]) != nil || fs.NArg() != 1 {
			fmt.Fprint(stderr, usage)
			return 2
		}
		path, err = app.Compress(ctx, opts, app.CompressOptions{
			Path:   fs.Arg(0),
			Level:  *level,
			Ratio:  *ratio,
			Step:   *step,
			OutDir: *out,
		}, stderr)
	case "decompress":
		fs := flag.NewFlagSet("decompress", flag.ContinueOnError)
		fs.SetOutput(stderr)
		out := fs.String("out", "", "output directory (optional)")
		if fs.Parse(rest[1:]) != nil || fs.NArg() != 1 {
			fmt.Fprint(stderr, usage)
			return 2
		}
		path, err = app.Decompress(ctx, opts, app.DecompressOptions{Path: fs.Arg(0), OutDir: *out}, stderr)
	case "sample":
		fs := flag.NewFlagSet("sample", flag.ContinueOnError)
		fs.SetOutput(stderr)
		size := fs.Int("size", workflow.DefaultSampleSize, "edge length in pixels")
		out := fs.String("out", "", "output directory (optional)")
		if fs.Parse(rest[1:]) != nil || fs.NArg() != 0 {
			fmt.Fprint(stderr, usage)
			return 2
		}
		path, err = app.Sample(opts, app.SampleOptions{Size: *size, OutDir: *out}, stderr)
	default:
		fmt.Fprintf(stderr, "haarview: unknown command %q\n", rest[0])
		fmt.Fprint(stderr, usage)
		return 2
	}

	if err != nil {
		if !errors.Is(err, app.ErrReported) {
			fmt.Fprintf(stderr, "haarview: %v\n", err)
		}
		return 1
	}
	fmt.Fprintln(stdout, path)
	return 0
}
