package program

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/cbalona/reinsurance/internal/core/graph"
	"github.com/cbalona/reinsurance/internal/core/ndarray"
	"github.com/cbalona/reinsurance/internal/ctxlog"
	"github.com/cbalona/reinsurance/pkg/validation"
)

// Loader parses .hcl program files into a Program.
type Loader struct{}

// NewLoader creates a new HCL program loader.
func NewLoader() *Loader {
	return &Loader{}
}

// programSchema lists the top-level blocks of a program file. Blocks are
// processed in source order so that any block may reference the ones defined
// above it, outputs included.
var programSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "input", LabelNames: []string{"name"}},
		{Type: "layer", LabelNames: []string{"name"}},
		{Type: "output", LabelNames: []string{"name"}},
	},
}

type inputBlock struct {
	Default hcl.Expression `hcl:"default,optional"`
}

type layerBlock struct {
	Type   string `hcl:"type"`
	Source string `hcl:"source"`

	Cession    *float64 `hcl:"cession,optional"`
	Commission *float64 `hcl:"commission,optional"`

	Attachment         *float64 `hcl:"attachment,optional"`
	Width              *float64 `hcl:"width,optional"`
	Deductible         *float64 `hcl:"deductible,optional"`
	RateOnLine         *float64 `hcl:"rate_on_line,optional"`
	Reinstatements     *int     `hcl:"reinstatements,optional"`
	FreeReinstatements *int     `hcl:"free_reinstatements,optional"`
}

type outputBlock struct {
	Base   string   `hcl:"base"`
	Deduct []string `hcl:"deduct,optional"`
	Add    []string `hcl:"add,optional"`
}

// Load parses every .hcl file under the given paths, in path order, and
// builds the program graph. Blocks across files merge into one namespace.
func (l *Loader) Load(ctx context.Context, paths ...string) (*Program, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := l.findHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %v", ErrNoFiles, paths)
	}
	logger.DebugContext(ctx, "loading program files", "count", len(files))

	prog := &Program{
		Defaults: make(map[string]*ndarray.Array),
		nodes:    make(map[string]*graph.Node),
	}

	parser := hclparse.NewParser()
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse %s: %w", file, diags)
		}
		if err := l.mergeFile(prog, hclFile.Body); err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
	}

	roots := make([]*graph.Node, 0, len(prog.nodes))
	for _, n := range prog.nodes {
		roots = append(roots, n)
	}
	if err := validation.ValidateView(graph.View(roots...), validation.ViewValidationOptions{CheckCycles: true}); err != nil {
		return nil, fmt.Errorf("program graph: %w", err)
	}

	logger.DebugContext(ctx, "program loaded",
		"inputs", len(prog.Inputs), "outputs", len(prog.Outputs), "nodes", len(prog.nodes))
	return prog, nil
}

// mergeFile translates one file's blocks into program nodes, in source order.
func (l *Loader) mergeFile(prog *Program, body hcl.Body) error {
	content, diags := body.Content(programSchema)
	if diags.HasErrors() {
		return fmt.Errorf("failed to decode: %w", diags)
	}

	for _, block := range content.Blocks {
		name := block.Labels[0]
		switch block.Type {
		case "input":
			var b inputBlock
			if diags := gohcl.DecodeBody(block.Body, nil, &b); diags.HasErrors() {
				return fmt.Errorf("input %q: %w", name, diags)
			}
			if err := l.addInput(prog, name, &b); err != nil {
				return err
			}

		case "layer":
			var b layerBlock
			if diags := gohcl.DecodeBody(block.Body, nil, &b); diags.HasErrors() {
				return fmt.Errorf("layer %q: %w", name, diags)
			}
			n, err := prog.buildLayer(name, &b)
			if err != nil {
				return err
			}
			if err := prog.define(name, n); err != nil {
				return err
			}

		case "output":
			var b outputBlock
			if diags := gohcl.DecodeBody(block.Body, nil, &b); diags.HasErrors() {
				return fmt.Errorf("output %q: %w", name, diags)
			}
			n, err := prog.buildOutput(name, &b)
			if err != nil {
				return err
			}
			if err := prog.define(name, n); err != nil {
				return err
			}
			prog.Outputs = append(prog.Outputs, n)
		}
	}
	return nil
}

// addInput registers an input node and its optional default value.
func (l *Loader) addInput(prog *Program, name string, b *inputBlock) error {
	n := graph.Input(name)
	if err := prog.define(name, n); err != nil {
		return err
	}
	prog.Inputs = append(prog.Inputs, n)

	if b.Default == nil {
		return nil
	}
	val, diags := b.Default.Value(nil)
	if diags.HasErrors() {
		return fmt.Errorf("input %q default: %w", name, diags)
	}
	a, err := arrayFromCty(val)
	if err != nil {
		return fmt.Errorf("input %q: %w", name, err)
	}
	prog.Defaults[name] = a
	return nil
}

// findHCLFiles flattens the given files and directories into the list of
// .hcl files they contain, preserving order and dropping duplicates.
func (l *Loader) findHCLFiles(paths []string) ([]string, error) {
	var files []string
	seen := make(map[string]struct{})

	add := func(p string) {
		if _, ok := seen[p]; !ok {
			seen[p] = struct{}{}
			files = append(files, p)
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing %s: %w", path, err)
		}
		if !info.IsDir() {
			if filepath.Ext(path) == ".hcl" {
				add(path)
			}
			continue
		}
		err = filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !info.IsDir() && filepath.Ext(p) == ".hcl" {
				add(p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}
