package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/tvm-disasm/cell"
	"github.com/wippyai/tvm-disasm/config"
	"github.com/wippyai/tvm-disasm/disasm"
	"github.com/wippyai/tvm-disasm/export"
	"github.com/wippyai/tvm-disasm/shape"
)

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: tvmdisasm dump <file.boc>")
	fmt.Fprintln(os.Stderr, "       tvmdisasm graphviz [-method int|ext|ticktock|<id>] <file.tvc>")
	fmt.Fprintln(os.Stderr, "       tvmdisasm text [-raw] [-full=false] [-bytecode N] [-collapse] [-format text|cbor] [-config file] [-i] <file.tvc>")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "dump":
		err = dumpCommand(os.Args[2:])
	case "graphviz":
		err = graphvizCommand(os.Args[2:])
	case "text":
		err = textCommand(os.Args[2:])
	case "help", "-h", "-help", "--help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n", os.Args[1])
		usage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setupLogging installs a development logger on stderr when verbose is set.
func setupLogging(verbose bool) (*zap.Logger, error) {
	log := zap.NewNop()
	if verbose {
		var err error
		log, err = zap.NewDevelopment()
		if err != nil {
			return nil, fmt.Errorf("create logger: %w", err)
		}
	}
	disasm.SetLogger(log.Named("disasm"))
	shape.SetLogger(log.Named("shape"))
	return log, nil
}

func inputFile(fs *flag.FlagSet) (string, error) {
	if fs.NArg() != 1 {
		return "", fmt.Errorf("%s: expected one input file, got %d", fs.Name(), fs.NArg())
	}
	return fs.Arg(0), nil
}

func dumpCommand(args []string) error {
	fs := flag.NewFlagSet("dump", flag.ExitOnError)
	verbose := fs.Bool("v", false, "Verbose logging to stderr")
	_ = fs.Parse(args)

	if _, err := setupLogging(*verbose); err != nil {
		return err
	}
	filename, err := inputFile(fs)
	if err != nil {
		return err
	}
	roots, err := readRoots(filename)
	if err != nil {
		return err
	}
	runDump(os.Stdout, roots)
	return nil
}

func graphvizCommand(args []string) error {
	fs := flag.NewFlagSet("graphviz", flag.ExitOnError)
	method := fs.String("method", "", "Entry point (int, ext, ticktock) or internal method id")
	verbose := fs.Bool("v", false, "Verbose logging to stderr")
	_ = fs.Parse(args)

	if _, err := setupLogging(*verbose); err != nil {
		return err
	}
	filename, err := inputFile(fs)
	if err != nil {
		return err
	}
	roots, err := readRoots(filename)
	if err != nil {
		return err
	}
	code, err := codeRoot(roots)
	if err != nil {
		return err
	}
	root, err := graphvizRoot(code, *method)
	if err != nil {
		return err
	}
	runGraphviz(os.Stdout, root)
	return nil
}

type textOptions struct {
	configPath  string
	format      string
	bytecode    int
	raw         bool
	full        bool
	collapse    bool
	interactive bool
}

func textCommand(args []string) error {
	var opts textOptions
	fs := flag.NewFlagSet("text", flag.ExitOnError)
	fs.BoolVar(&opts.raw, "raw", false, "Disassemble the first root without selector recognition")
	fs.BoolVar(&opts.full, "full", true, "Expand nested code and cells inline")
	fs.IntVar(&opts.bytecode, "bytecode", 0, "Width of the bytecode column (0 disables it)")
	fs.BoolVar(&opts.collapse, "collapse", false, "Print repeated cells once")
	fs.StringVar(&opts.format, "format", "text", "Output format: text or cbor")
	fs.StringVar(&opts.configPath, "config", "", "Path to "+config.FileName+" (default: search upwards)")
	fs.BoolVar(&opts.interactive, "i", false, "Interactive mode with TUI")
	verbose := fs.Bool("v", false, "Verbose logging to stderr")
	_ = fs.Parse(args)

	log, err := setupLogging(*verbose)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	filename, err := inputFile(fs)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "bytecode":
			cfg.Output.BytecodeWidth = opts.bytecode
		case "collapse":
			cfg.Output.Collapse = opts.collapse
		}
	})
	if cfg.Path != "" {
		log.Debug("configuration loaded", zap.String("path", cfg.Path))
	}

	if opts.format != "text" && opts.format != "cbor" {
		return fmt.Errorf("unknown format %q", opts.format)
	}
	if opts.interactive {
		if opts.format != "text" {
			return fmt.Errorf("interactive mode prints text only")
		}
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			return fmt.Errorf("interactive mode needs a terminal")
		}
	}

	roots, err := readRoots(filename)
	if err != nil {
		return err
	}
	l, err := disassemble(cfg, roots, opts)
	if err != nil {
		return err
	}

	if opts.interactive {
		return runInteractive(filename, l)
	}
	return writeListing(os.Stdout, l, opts.format)
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	cfg, err := config.FindAndLoad(wd)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = config.Default()
	}
	return cfg, nil
}

func disassemble(cfg *config.Config, roots []*cell.Cell, opts textOptions) (*listing, error) {
	d := &disassembler{
		cfg:     cfg,
		printer: disasm.Printer{Full: opts.full, BytecodeWidth: cfg.Output.BytecodeWidth},
	}
	if opts.raw {
		if len(roots) == 0 {
			return nil, fmt.Errorf("empty bag of cells")
		}
		return d.rawListing(roots[0])
	}
	code, err := codeRoot(roots)
	if err != nil {
		return nil, err
	}
	layouts, err := cfg.ShapeLayouts()
	if err != nil {
		return nil, err
	}
	return d.buildListing(code, layouts)
}

func writeListing(w io.Writer, l *listing, format string) error {
	if format == "cbor" {
		data, err := export.Marshal(l.document())
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}
	_, err := io.WriteString(w, l.text())
	return err
}
