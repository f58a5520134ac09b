// Command inspect prints an agent's durable decision audit trail, for
// post-hoc debugging of a live or completed run.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/ardenlabs/playrunner/internal/logging"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to the audit db")
	agentID := flag.String("agent", "", "agent ID to inspect")
	last := flag.Int("last", 20, "show N most recent entries")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" || *agentID == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/audit.db --agent agentId [--last N] [--json]")
		os.Exit(2)
	}

	if err := run(*dbPath, *agentID, *last, *jsonOut); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region run

func run(dbPath, agentID string, last int, jsonOut bool) error {
	db, err := logging.OpenAuditDB(dbPath)
	if err != nil {
		return fmt.Errorf("open audit db: %w", err)
	}
	defer db.Close()

	entries, err := logging.RecentEntries(db, agentID, last)
	if err != nil {
		return fmt.Errorf("recent entries: %w", err)
	}
	if len(entries) == 0 {
		fmt.Fprintf(os.Stderr, "no audit entries found for agent %s\n", agentID)
		return nil
	}

	if jsonOut {
		return printJSON(entries)
	}
	return printTable(entries)
}

// #endregion run

// #region output

func printTable(entries []logging.AuditEntry) error {
	fmt.Printf("%-8s  %-8s  %-6s  %-10s  %-6s  %-8s  %s\n",
		"Step", "Button", "Screen", "Confidence", "Fall", "Created", "Reasoning")
	fmt.Printf("%-8s  %-8s  %-6s  %-10s  %-6s  %-8s  %s\n",
		"--------", "--------", "------", "----------", "------", "--------", "---------")

	for _, e := range entries {
		fmt.Printf("%-8d  %-8s  %-6s  %-10.4f  %-6v  %-8s  %s\n",
			e.Step, e.Button, e.ScreenKind, e.Confidence, e.IsFallback,
			e.CreatedAt.Format("15:04:05"), truncate(e.Reasoning, 40))
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// #endregion output
