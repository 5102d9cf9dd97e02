package layer

import (
	"github.com/cbalona/reinsurance/internal/core/graph"
)

// Derived-output selectors. Each exposes a named side channel of an upstream
// layer node as an ordinary single-channel node, so it can participate in
// arithmetic. Whether the upstream actually produces the channel is checked
// statically when the graph is resolved.

// Recovery selects the recovery channel of an upstream layer.
func Recovery(name string, upstream *graph.Node) *graph.Node {
	return graph.Select(name, KindRecovery, upstream, ChannelRecovery)
}

// Commission selects the commission channel of an upstream layer.
func Commission(name string, upstream *graph.Node) *graph.Node {
	return graph.Select(name, KindCommission, upstream, ChannelCommission)
}

// ReinstatementPremium selects the reinstatement_premium channel of an
// upstream layer.
func ReinstatementPremium(name string, upstream *graph.Node) *graph.Node {
	return graph.Select(name, KindReinstatementPremium, upstream, ChannelReinstatementPremium)
}
