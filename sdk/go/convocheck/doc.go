// Package convocheck embeds the suite runner in Go programs — CI jobs,
// deploy gates, or backend test binaries — without shelling out to the
// CLI. A Client runs builtin or file suites against a backend and
// returns the scored report.
//
// Usage:
//
//	cc, err := convocheck.New("https://staging.backend",
//	    convocheck.WithTimeout(10*time.Second))
//	rep, err := cc.RunSuite(ctx, "smoke")
//	if rep.Summary.SuccessRate < 100 { ... }
//
// The SDK links directly against internal packages for zero-subprocess
// overhead. External users import github.com/ppiankov/convocheck/sdk/go/convocheck.
package convocheck
