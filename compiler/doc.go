// Package compiler drives a compiler run: it validates a configuration,
// emits every artifact, bundles the hooks and records the outcome.
//
// Failures are isolated per artifact. A run attempts every artifact and
// hook and reports all failures together in the Report.
package compiler
