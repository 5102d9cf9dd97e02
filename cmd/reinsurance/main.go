// Package main provides the reinsurance CLI: it loads an HCL program,
// evaluates it against input arrays, and prints the outputs.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/cbalona/reinsurance/internal/adapters/program"
	"github.com/cbalona/reinsurance/internal/app/usecases"
	"github.com/cbalona/reinsurance/internal/core/ndarray"
	"github.com/cbalona/reinsurance/internal/ctxlog"
	"github.com/cbalona/reinsurance/pkg/serialization"
)

// Version information set during build
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("reinsurance", flag.ContinueOnError)
	var (
		programPaths = fs.String("program", "", "comma-separated .hcl program files or directories")
		inputsPath   = fs.String("inputs", "", "JSON file mapping input names to {shape, data} payloads")
		backendName  = fs.String("backend", "sequential", "execution backend: sequential or parallel")
		workers      = fs.Int("workers", 0, "parallel backend worker count; 0 means one per CPU")
		visualize    = fs.Bool("visualize", false, "print the program graph in Graphviz DOT form and exit")
		exportPath   = fs.String("export", "", "write the program graph envelope (msgpack+zstd) to this file and exit")
		logLevel     = fs.String("log-level", "info", "log level: debug, info, warn, error")
		version      = fs.Bool("version", false, "print version and exit")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *version {
		fmt.Fprintf(out, "reinsurance %s (commit: %s, built: %s)\n", Version, Commit, BuildTime)
		return nil
	}
	if *programPaths == "" {
		return fmt.Errorf("-program is required")
	}

	logger := newLogger(*logLevel)
	ctx := ctxlog.WithLogger(context.Background(), logger)

	prog, err := program.NewLoader().Load(ctx, strings.Split(*programPaths, ",")...)
	if err != nil {
		return fmt.Errorf("loading program: %w", err)
	}

	var opts []usecases.ModelOption
	switch *backendName {
	case "sequential":
	case "parallel":
		opts = append(opts, usecases.WithBackend(usecases.NewParallelBackend(*workers)))
	default:
		return fmt.Errorf("unknown backend %q", *backendName)
	}

	m, err := prog.Model(opts...)
	if err != nil {
		return fmt.Errorf("resolving program: %w", err)
	}

	if *visualize {
		fmt.Fprint(out, m.Visualize())
		return nil
	}
	if *exportPath != "" {
		env := serialization.NewGraphEnvelope(m.Inputs(), m.Outputs())
		data, err := serialization.DefaultPipeline().Marshal(env)
		if err != nil {
			return fmt.Errorf("encoding envelope: %w", err)
		}
		if err := os.WriteFile(*exportPath, data, 0o644); err != nil {
			return fmt.Errorf("writing envelope: %w", err)
		}
		return nil
	}

	inputs, err := loadInputs(*inputsPath, prog)
	if err != nil {
		return err
	}

	results, err := m.ComputeNamed(ctx, inputs)
	if err != nil {
		return fmt.Errorf("compute: %w", err)
	}

	payloads := make(map[string]serialization.ArrayPayload, len(results))
	for name, a := range results {
		payloads[name] = serialization.NewArrayPayload(a)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(payloads)
}

// loadInputs merges the program's default values with the -inputs file, the
// file winning per input name.
func loadInputs(path string, prog *program.Program) (map[string]*ndarray.Array, error) {
	inputs := make(map[string]*ndarray.Array, len(prog.Defaults))
	for name, a := range prog.Defaults {
		inputs[name] = a
	}
	if path == "" {
		return inputs, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading inputs: %w", err)
	}
	var payloads map[string]serialization.ArrayPayload
	if err := serialization.NewJSONCodec().Decode(data, &payloads); err != nil {
		return nil, fmt.Errorf("parsing inputs: %w", err)
	}
	for name, p := range payloads {
		a, err := p.Array()
		if err != nil {
			return nil, fmt.Errorf("input %q: %w", name, err)
		}
		inputs[name] = a
	}
	return inputs, nil
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}
