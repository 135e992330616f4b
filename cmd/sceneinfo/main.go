package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/assimp-go"
	"github.com/wippyai/assimp-go/ffi"
	"github.com/wippyai/assimp-go/ffi/native"
	"github.com/wippyai/assimp-go/internal/config"
	"github.com/wippyai/assimp-go/internal/logging"
)

func main() {
	fs := flag.NewFlagSet("sceneinfo", flag.ExitOnError)
	flags := config.RegisterFlags(fs)
	interactive := fs.Bool("i", false, "Interactive mode with TUI")
	plain := fs.Bool("plain", false, "Disable colored output")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: sceneinfo [flags] <file>")
		fmt.Fprintln(os.Stderr, "       sceneinfo [flags] -hint obj -    (read from stdin)")
		fmt.Fprintln(os.Stderr, "       sceneinfo -i <file>              (interactive mode)")
		fs.PrintDefaults()
	}
	_ = fs.Parse(os.Args[1:])

	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(1)
	}
	input := fs.Arg(0)

	cfg, err := config.Load(flags.Config, flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	log := logging.New(cfg.Logging.Level, cfg.Logging.LogFile)
	defer func() { _ = log.Sync() }()
	assimp.SetLogger(log.Named("assimp"))
	native.SetLogger(log.Named("native"))

	lib, err := native.Open(cfg.Library.Path)
	if err != nil {
		log.Error("cannot load libassimp", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	req, err := newRequest(cfg, input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *interactive {
		if err := runInteractive(lib, req); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	st := plainStyles()
	if !*plain && term.IsTerminal(int(os.Stdout.Fd())) {
		st = colorStyles()
	}
	if err := run(ctx, lib, req, os.Stdin, os.Stdout, st); err != nil {
		log.Debug("import failed", zap.String("input", input), zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// request is one resolved import: what to read and how.
type request struct {
	path  string // "-" reads stdin
	hint  string
	steps assimp.PostProcess
	props []assimp.Property
}

func newRequest(cfg *config.Config, input string) (*request, error) {
	steps, err := cfg.PostProcess()
	if err != nil {
		return nil, err
	}
	props, err := cfg.Properties()
	if err != nil {
		return nil, err
	}
	return &request{path: input, hint: cfg.Import.Hint, steps: steps, props: props}, nil
}

// read imports the requested scene. stdin is consulted only for "-".
func (r *request) read(ctx context.Context, lib ffi.Library, stdin io.Reader, opts ...assimp.ImportOption) (*assimp.Scene, error) {
	imp := assimp.NewImporter(lib)
	opts = append(opts, assimp.WithProperties(r.props...))
	if r.path != "-" {
		return imp.ReadFile(ctx, r.path, r.steps, opts...)
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	return imp.ReadMemory(ctx, data, r.hint, r.steps, opts...)
}

func run(ctx context.Context, lib ffi.Library, req *request, stdin io.Reader, w io.Writer, st styles) error {
	s, err := req.read(ctx, lib, stdin)
	if err != nil {
		return err
	}
	defer s.Close()

	summarize(s).write(w, st)
	return nil
}
