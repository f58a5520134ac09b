// Command replay loads a recorded decision fixture and replays it through
// the gate and verify stages outside a live coordinator, printing a
// per-turn comparison against the fixture's expected outcomes.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/ardenlabs/playrunner/internal/gamestate"
	"github.com/ardenlabs/playrunner/internal/replay"
)

// #region main

func main() {
	fixturePath := flag.String("fixture", "", "path to fixture JSON")
	flag.Parse()

	if *fixturePath == "" {
		fmt.Fprintln(os.Stderr, "usage: replay --fixture path/to/fixture.json")
		os.Exit(2)
	}

	os.Exit(run(*fixturePath))
}

// #endregion main

// #region run

func run(fixturePath string) int {
	f, err := replay.LoadFixture(fixturePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		return 2
	}

	config := f.Config.ToReplayConfig()
	interactions := make([]replay.Interaction, len(f.Interactions))
	for i := range f.Interactions {
		interactions[i] = f.Interactions[i].ToInteraction()
	}

	results := replay.Replay(interactions, config)
	return printComparison(results, f.ExpectedResults)
}

// #endregion run

// #region output

func printComparison(results []replay.ReplayResult, expected []replay.FixtureExpectedResult) int {
	fmt.Printf("%-12s| %-20s| %-8s| %-8s| %s\n", "Turn", "Plan", "Vetoed", "Verify", "Match")
	fmt.Printf("%-12s+%-20s+%-8s+%-8s+%s\n",
		"------------", "--------------------", "--------", "--------", "------")

	matches := 0
	total := len(results)
	if len(expected) < total {
		total = len(expected)
	}

	for i := 0; i < total; i++ {
		r := results[i]
		exp := expected[i]

		match := "DIFF"
		if r.Vetoed == exp.Vetoed && r.VerifyResult.Passed == exp.VerifyPassed && planMatches(r.Plan, exp.Plan) {
			match = "OK"
			matches++
		}

		fmt.Printf("%-12s| %-20s| %-8v| %-8v| %s\n", r.TurnID, planString(r.Plan), r.Vetoed, r.VerifyResult.Passed, match)
	}

	diverge := total - matches
	fmt.Printf("\nSummary: %d total, %d match, %d diverge\n", total, matches, diverge)

	if diverge > 0 {
		return 1
	}
	return 0
}

func planMatches(plan []gamestate.Button, expected []string) bool {
	if len(plan) != len(expected) {
		return false
	}
	for i, button := range plan {
		if string(button) != expected[i] {
			return false
		}
	}
	return true
}

func planString(plan []gamestate.Button) string {
	buttons := make([]string, len(plan))
	for i, b := range plan {
		buttons[i] = string(b)
	}
	return strings.Join(buttons, ",")
}

// #endregion output
