package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cbalona/reinsurance/internal/adapters/program"
	"github.com/cbalona/reinsurance/internal/app/dto"
	"github.com/cbalona/reinsurance/internal/app/usecases"
	"github.com/cbalona/reinsurance/internal/core/ndarray"
	"github.com/cbalona/reinsurance/internal/ctxlog"
	"github.com/cbalona/reinsurance/pkg/serialization"
)

// computeServer holds the loaded program and its resolved models, one per
// backend, so requests only pick and run. When payloadKey is set, every
// /compute request and response body is sealed with AES-GCM under it.
type computeServer struct {
	prog       *program.Program
	sequential *usecases.Model
	envelope   serialization.GraphEnvelope
	payloadKey []byte
}

func newComputeServer(prog *program.Program, payloadKey []byte) (*computeServer, error) {
	m, err := prog.Model()
	if err != nil {
		return nil, err
	}
	return &computeServer{
		prog:       prog,
		sequential: m,
		envelope:   serialization.NewGraphEnvelope(m.Inputs(), m.Outputs()),
		payloadKey: payloadKey,
	}, nil
}

// handleGraph serves the structural envelope of the loaded program.
func (s *computeServer) handleGraph(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.envelope)
}

// handleCompute evaluates the program for the posted inputs. The payload
// pipeline is negotiated per request: Content-Type picks the codec
// (application/msgpack or JSON, the default) and Content-Encoding picks the
// compression (gzip, zstd, or none); the response mirrors both.
func (s *computeServer) handleCompute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	codec := codecFor(r.Header.Get("Content-Type"))
	compression, err := serialization.ParseCompression(r.Header.Get("Content-Encoding"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnsupportedMediaType)
		return
	}
	pipe := serialization.NewPipeline(codec, compression, s.payloadKey)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req dto.ComputeRequest
	if err := pipe.Unmarshal(body, &req); err != nil {
		http.Error(w, "malformed request: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp := s.compute(r.Context(), &req)

	status := http.StatusOK
	if resp.Status == dto.ComputeStatusFailed {
		status = http.StatusUnprocessableEntity
	}
	out, err := pipe.Marshal(resp)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentTypeFor(codec))
	if compression != serialization.CompressionNone {
		w.Header().Set("Content-Encoding", string(compression))
	}
	w.WriteHeader(status)
	_, _ = w.Write(out)
}

func (s *computeServer) compute(ctx context.Context, req *dto.ComputeRequest) *dto.ComputeResponse {
	resp := &dto.ComputeResponse{
		ExecutionID: uuid.NewString(),
		StartTime:   time.Now(),
	}
	fail := func(err error) *dto.ComputeResponse {
		resp.Status = dto.ComputeStatusFailed
		resp.Error = err.Error()
		resp.Duration = time.Since(resp.StartTime)
		return resp
	}

	// Program defaults seed the inputs; request payloads win per name.
	inputs := make(map[string]*ndarray.Array, len(s.prog.Defaults)+len(req.Inputs))
	for name, a := range s.prog.Defaults {
		inputs[name] = a
	}
	for name, p := range req.Inputs {
		a, err := p.Array()
		if err != nil {
			return fail(err)
		}
		inputs[name] = a
	}

	m := s.sequential
	if req.Config.Parallel {
		var err error
		m, err = s.prog.Model(usecases.WithBackend(usecases.NewParallelBackend(req.Config.Workers)))
		if err != nil {
			return fail(err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, req.Config.Timeout)
	defer cancel()
	ctx = ctxlog.WithLogger(ctx, ctxlog.FromContext(ctx).With("execution_id", resp.ExecutionID))

	results, err := m.ComputeNamed(ctx, inputs)
	if err != nil {
		return fail(err)
	}

	resp.Outputs = make(map[string]serialization.ArrayPayload, len(results))
	for name, a := range results {
		resp.Outputs[name] = serialization.NewArrayPayload(a)
	}
	resp.Status = dto.ComputeStatusCompleted
	resp.Duration = time.Since(resp.StartTime)
	return resp
}

func codecFor(contentType string) serialization.Codec {
	if strings.Contains(contentType, "msgpack") {
		return serialization.NewMsgPackCodec()
	}
	return serialization.NewJSONCodec()
}

func contentTypeFor(c serialization.Codec) string {
	if c.Name() == "msgpack" {
		return "application/msgpack"
	}
	return "application/json"
}
