package cmd

import (
	"fmt"
	"sort"

	"github.com/snapscroll/snapscroll/internal/db"
)

// Report summarizes a decision recording made with `run --record`.
type Report struct {
	Path string `arg:"" help:"Recording database file" type:"existingfile"`
}

func (r *Report) Run() error {
	rec, err := db.Open(r.Path)
	if err != nil {
		return fmt.Errorf("open recording: %w", err)
	}
	defer rec.Close()

	sum, err := rec.Summarize()
	if err != nil {
		return fmt.Errorf("summarize: %w", err)
	}

	fmt.Printf("events:     %d\n", sum.Events)
	fmt.Printf("suppressed: %d\n", sum.Suppressed)

	directions := make([]string, 0, len(sum.ByDecision))
	for d := range sum.ByDecision {
		directions = append(directions, d)
	}
	sort.Strings(directions)
	for _, d := range directions {
		fmt.Printf("  %-8s %d\n", d, sum.ByDecision[d])
	}
	return nil
}
