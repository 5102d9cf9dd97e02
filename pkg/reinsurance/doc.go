// Package reinsurance provides the public façade for building reinsurance
// program structures as lazy computation graphs and evaluating them without
// importing internal packages. It re-exports the core node and array types
// and the layer constructors, and exposes Model for compute and
// visualization.
package reinsurance
