// run executes a function module, or one of the bundled example functions,
// against an input file and prints the output.
//
//	run --wasm cart-validation.wasm --input cart.json
//	run --example echo --input - < input.json
//	zstdcat input.msgpack.zst | run --wasm fn.wasm --input-format msgpack
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/wippyai/function-abi/config"
	"github.com/wippyai/function-abi/engine"
	"github.com/wippyai/function-abi/examples/cartvalidation"
	"github.com/wippyai/function-abi/examples/echo"
	"github.com/wippyai/function-abi/guest"
	"github.com/wippyai/function-abi/host"
	"github.com/wippyai/function-abi/runtime"
)

var examples = map[string]guest.Func{
	"echo":            echo.Run,
	"interned-echo":   echo.RunInterned,
	"cart-validation": cartvalidation.Run,
}

type options struct {
	wasm       string
	example    string
	input      string
	configPath string
	pretty     bool
	list       bool
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if err == pflag.ErrHelp {
			return
		}
		fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("error:"), err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var opts options
	flags := pflag.NewFlagSet("run", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringVar(&opts.wasm, "wasm", "", "path to a function module (.wasm, optionally zstd-compressed)")
	flags.StringVar(&opts.example, "example", "", "run a bundled function in-process: "+strings.Join(exampleNames(), ", "))
	flags.StringVarP(&opts.input, "input", "i", "-", "input file, - for stdin")
	flags.StringVarP(&opts.configPath, "config", "c", "", "YAML config file (default $"+config.EnvVar+")")
	flags.BoolVar(&opts.pretty, "pretty", false, "indent JSON output even when stdout is not a terminal")
	flags.BoolVar(&opts.list, "list", false, "print the module's imports and exports and exit")
	flags.String("entrypoint", "", "exported function to call")
	flags.String("input-format", "", "input encoding: json or msgpack")
	flags.String("output-format", "", "output encoding: json or msgpack")
	flags.Duration("timeout", 0, "abort the invocation after this long (0 disables)")
	flags.Uint32("memory-limit-pages", 0, "cap guest memory in 64KB pages")
	flags.String("log-level", "", "host log level: debug, info, warn, error")

	if err := flags.Parse(args); err != nil {
		return err
	}
	if (opts.wasm == "") == (opts.example == "") {
		flags.Usage()
		return fmt.Errorf("exactly one of --wasm or --example is required")
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if err := applyFlags(flags, cfg); err != nil {
		return err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()
	engine.SetLogger(log.Named("engine"))
	host.SetLogger(log.Named("host"))
	runtime.SetLogger(log.Named("runtime"))

	ctx := context.Background()

	if opts.example != "" {
		fn, ok := examples[opts.example]
		if !ok {
			return fmt.Errorf("unknown example %q (have %s)", opts.example, strings.Join(exampleNames(), ", "))
		}
		input, err := readInput(opts.input, stdin)
		if err != nil {
			return err
		}
		res, err := runtime.RunLocal(ctx, cfg, fn, input)
		report(stderr, res, err)
		if err != nil {
			return err
		}
		return writeOutput(stdout, cfg, res.Output, opts.pretty)
	}

	rt, err := runtime.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer rt.Close(ctx)

	fn, err := rt.LoadFile(ctx, opts.wasm)
	if err != nil {
		return err
	}
	if opts.list {
		listModule(stdout, opts.wasm, fn)
		return nil
	}

	input, err := readInput(opts.input, stdin)
	if err != nil {
		return err
	}
	res, err := fn.Run(ctx, input)
	report(stderr, res, err)
	if err != nil {
		return err
	}
	return writeOutput(stdout, cfg, res.Output, opts.pretty)
}

// applyFlags overrides cfg with every flag set on the command line.
func applyFlags(flags *pflag.FlagSet, cfg *config.Config) error {
	var err error
	get := func(name string, fn func()) {
		if err == nil && flags.Changed(name) {
			fn()
		}
	}
	get("entrypoint", func() { cfg.Entrypoint, err = flags.GetString("entrypoint") })
	get("input-format", func() { cfg.InputFormat, err = flags.GetString("input-format") })
	get("output-format", func() { cfg.OutputFormat, err = flags.GetString("output-format") })
	get("timeout", func() { cfg.Timeout, err = flags.GetDuration("timeout") })
	get("memory-limit-pages", func() { cfg.MemoryLimitPages, err = flags.GetUint32("memory-limit-pages") })
	get("log-level", func() { cfg.LogLevel, err = flags.GetString("log-level") })
	if err != nil {
		return err
	}
	return cfg.Validate()
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level := cfg.Level()
	if level == zap.DebugLevel {
		return zap.NewDevelopment()
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build()
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return b, nil
}

func exampleNames() []string {
	names := make([]string, 0, len(examples))
	for name := range examples {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func listModule(w io.Writer, path string, fn *runtime.Function) {
	fmt.Fprintln(w, titleStyle.Render(path))
	fmt.Fprintln(w, headerStyle.Render("imports"))
	for _, name := range fn.Imports() {
		fmt.Fprintf(w, "  %s\n", name)
	}
	fmt.Fprintln(w, headerStyle.Render("exports"))
	for _, name := range fn.Exports() {
		fmt.Fprintf(w, "  %s\n", funcStyle.Render(name))
	}
}
