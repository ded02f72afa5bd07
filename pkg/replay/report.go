package replay

import (
	"fmt"
	"strings"
	"text/tabwriter"
)

// Text renders the report as an aligned table followed by a summary line.
func (r *Report) Text() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "scenario %s (world %s, run %s)\n\n", r.Scenario, r.World, r.RunID)

	tw := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STEP\tACTION\tPOS\tBLOCK\tDECISION\tEXPECTED\tREASON")
	for _, s := range r.Steps {
		switch s.Action {
		case "event":
			mark := ""
			if s.Mismatch {
				mark = " !"
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s%s\t%s\t%s\n",
				s.Index, s.Kind, s.Pos, dash(s.BlockID), s.Decision, mark, dash(s.Expected), s.Reason)
		case "set":
			fmt.Fprintf(tw, "%d\tset\t%s\t%s\t-\t-\t-\n", s.Index, s.Pos, s.BlockID)
		default:
			fmt.Fprintf(tw, "%d\t%s\t-\t-\t-\t-\t-\n", s.Index, s.Action)
		}
	}
	_ = tw.Flush()

	fmt.Fprintf(&sb, "\n%d events: %d allowed, %d vetoed, %d faults, %d mismatches\n",
		r.Summary.Events, r.Summary.Allowed, r.Summary.Vetoed, r.Summary.Faults, r.Summary.Mismatches)
	return sb.String()
}

// Text renders a one-paragraph benchmark summary.
func (r *BenchResult) Text() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "run %s\n", r.RunID)
	fmt.Fprintf(&sb, "  workers:      %d across %d worlds\n", r.Workers, r.Worlds)
	fmt.Fprintf(&sb, "  events:       %d in %s\n", r.Events, r.Duration)
	fmt.Fprintf(&sb, "  throughput:   %.0f events/s\n", r.Throughput)
	fmt.Fprintf(&sb, "  vetoed:       %d\n", r.Vetoed)
	fmt.Fprintf(&sb, "  flag swaps:   %d\n", r.Swaps)
	fmt.Fprintf(&sb, "  faults:       %d\n", r.Faults)
	fmt.Fprintf(&sb, "  inconsistent: %d\n", r.Inconsistent)
	return sb.String()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
