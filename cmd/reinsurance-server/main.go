// Package main provides an HTTP server that evaluates a loaded reinsurance
// program and exposes debug endpoints.
package main

import (
	"context"
	"encoding/hex"
	"expvar"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	_ "net/http/pprof" // register /debug/pprof
	"os"
	"sort"
	"strings"

	"github.com/cbalona/reinsurance/internal/adapters/program"
	"github.com/cbalona/reinsurance/internal/ctxlog"
)

func main() {
	var (
		programPaths = flag.String("program", "", "comma-separated .hcl program files or directories")
		addr         = flag.String("addr", defaultAddr(), "listen address")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)
	ctx := ctxlog.WithLogger(context.Background(), logger)

	if *programPaths == "" {
		logger.Error("missing -program flag")
		os.Exit(1)
	}
	prog, err := program.NewLoader().Load(ctx, strings.Split(*programPaths, ",")...)
	if err != nil {
		logger.Error("failed to load program", "error", err)
		os.Exit(1)
	}
	key, err := payloadKeyFromEnv()
	if err != nil {
		logger.Error("invalid payload key", "error", err)
		os.Exit(1)
	}
	srv, err := newComputeServer(prog, key)
	if err != nil {
		logger.Error("failed to resolve program", "error", err)
		os.Exit(1)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprintln(w, "Reinsurance server is running. See /healthz, /compute, /graph, /metrics, /debug/vars, /debug/pprof/")
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprint(w, "ok")
	})
	mux.HandleFunc("/compute", srv.handleCompute)
	mux.HandleFunc("/graph", srv.handleGraph)
	mux.Handle("/debug/vars", expvar.Handler())

	// Prometheus-compatible metrics endpoint (no external deps)
	mux.HandleFunc("/metrics", promMetricsHandler)

	logger.Info("starting reinsurance server", "addr", *addr)
	if err := http.ListenAndServe(*addr, mux); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func defaultAddr() string {
	if v := os.Getenv("REINSURANCE_ADDR"); v != "" {
		return v
	}
	return ":8080"
}

// payloadKeyFromEnv reads REINSURANCE_PAYLOAD_KEY as a hex-encoded AES-256
// key. When set, /compute payloads are sealed with AES-GCM under it.
func payloadKeyFromEnv() ([]byte, error) {
	v := os.Getenv("REINSURANCE_PAYLOAD_KEY")
	if v == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(v)
	if err != nil {
		return nil, fmt.Errorf("REINSURANCE_PAYLOAD_KEY: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("REINSURANCE_PAYLOAD_KEY: need 32 bytes, got %d", len(key))
	}
	return key, nil
}

// promMetricsHandler renders known expvar metrics in Prometheus text format,
// falling back to a minimal conversion for other numeric vars.
func promMetricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	type meta struct {
		typ, help string
		isMap     bool
		label     string
	}
	metas := map[string]meta{
		"reinsurance_tasks_executed_total":        {typ: "counter", help: "Plan tasks executed", isMap: true, label: "kind"},
		"reinsurance_task_failures_total":         {typ: "counter", help: "Plan tasks failed", isMap: true, label: "kind"},
		"reinsurance_plans_resolved_total":        {typ: "counter", help: "Plans resolved successfully"},
		"reinsurance_plan_resolve_failures_total": {typ: "counter", help: "Plan resolutions rejected"},
		"reinsurance_compute_calls_total":         {typ: "counter", help: "Compute calls started"},
		"reinsurance_compute_failures_total":      {typ: "counter", help: "Compute calls failed"},
		"reinsurance_backend_workers":             {typ: "gauge", help: "Parallel backend worker count"},
	}

	varNames := make([]string, 0, 64)
	expvar.Do(func(kv expvar.KeyValue) {
		varNames = append(varNames, kv.Key)
	})
	sort.Strings(varNames)

	printed := make(map[string]bool)
	writeHeader := func(name string, m meta) {
		if printed[name] {
			return
		}
		_, _ = fmt.Fprintf(w, "# HELP %s %s\n", name, sanitizeHelp(m.help))
		_, _ = fmt.Fprintf(w, "# TYPE %s %s\n", name, m.typ)
		printed[name] = true
	}

	for _, name := range varNames {
		v := expvar.Get(name)
		m, known := metas[name]
		if !known {
			if iv, ok := v.(*expvar.Int); ok {
				_, _ = fmt.Fprintf(w, "# TYPE %s gauge\n", name)
				_, _ = fmt.Fprintf(w, "%s %s\n", name, iv.String())
			}
			continue
		}
		writeHeader(name, m)
		if m.isMap {
			if mp, ok := v.(*expvar.Map); ok {
				sub := make([]expvar.KeyValue, 0, 8)
				mp.Do(func(kv expvar.KeyValue) { sub = append(sub, kv) })
				sort.Slice(sub, func(i, j int) bool { return sub[i].Key < sub[j].Key })
				for _, kv := range sub {
					fmt.Fprintf(w, "%s{%s=%q} %s\n", name, m.label, escapeLabel(kv.Key), kv.Value.String())
				}
			}
		} else {
			fmt.Fprintf(w, "%s %s\n", name, v.String())
		}
	}
}

func sanitizeHelp(s string) string {
	return strings.ReplaceAll(s, "\n", " ")
}

func escapeLabel(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
