package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cbalona/reinsurance/internal/adapters/program"
	"github.com/cbalona/reinsurance/internal/app/usecases"
)

// The same reference structure expressed as an HCL program. The excess
// layers attach to the retained position, expressed as an intermediate
// "retained" output that later blocks use as their source.
const referenceProgram = `
input "losses" {
  default = [[100, 100, 100], [50, 50, 50], [20, 20, 20]]
}

layer "qs" {
  type    = "quota_share"
  source  = "losses"
  cession = 0.4
}

output "retained" {
  base   = "losses"
  deduct = ["qs.recovery"]
}

layer "xol1" {
  type           = "excess_of_loss"
  source         = "retained"
  attachment     = 25
  width          = 25
  rate_on_line   = 0.1
  reinstatements = 2
}

layer "xol2" {
  type           = "excess_of_loss"
  source         = "retained"
  attachment     = 50
  width          = 10
  rate_on_line   = 0.1
  reinstatements = 3
}

output "net" {
  base   = "retained"
  deduct = [
    "xol1.recovery",
    "xol1.reinstatement_premium",
    "xol2.recovery",
    "xol2.reinstatement_premium",
  ]
}
`

func TestProgramEndToEnd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reference.hcl")
	require.NoError(t, os.WriteFile(path, []byte(referenceProgram), 0o644))

	prog, err := program.NewLoader().Load(context.Background(), path)
	require.NoError(t, err)

	for name, opt := range map[string][]usecases.ModelOption{
		"sequential": nil,
		"parallel":   {usecases.WithBackend(usecases.NewParallelBackend(4))},
	} {
		t.Run(name, func(t *testing.T) {
			m, err := prog.Model(opt...)
			require.NoError(t, err)

			results, err := m.ComputeNamed(context.Background(), prog.Defaults)
			require.NoError(t, err)

			require.Contains(t, results, "net")
			assert.True(t, wantNet(t).AllClose(results["net"], 1e-9), "got %v", results["net"])
		})
	}
}
