// Command convocheck runs heuristic integration suites against an AI
// companion backend.
package main

import "github.com/ppiankov/convocheck/internal/cli"

func main() {
	cli.Execute()
}
