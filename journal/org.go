package journal

import (
	"fmt"
	"strings"
	"time"
)

// FormatPositionOrg renders a position as an Org-mode entry. Facts go in
// the PROPERTIES drawer; Thesis/Execution/Review are left for notes.
func FormatPositionOrg(p PositionRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "** Position: %s %s (%s)\n", p.Record, p.Side, shortID(p.PositionID))
	b.WriteString(":PROPERTIES:\n")
	fmt.Fprintf(&b, ":ID: %s\n", p.PositionID)
	fmt.Fprintf(&b, ":RECORD: %s\n", p.Record)
	fmt.Fprintf(&b, ":SIDE: %s\n", p.Side)
	fmt.Fprintf(&b, ":AMOUNT: %s\n", p.Amount)
	fmt.Fprintf(&b, ":ENTRY: %d @ %s\n", p.EntryIndex, p.EntryPrice)
	fmt.Fprintf(&b, ":EXIT: %d @ %s\n", p.ExitIndex, p.ExitPrice)
	if !p.EntryTime.IsZero() {
		fmt.Fprintf(&b, ":ENTRY_TIME: %s\n", p.EntryTime.UTC().Format(time.RFC3339))
	}
	if !p.ExitTime.IsZero() {
		fmt.Fprintf(&b, ":EXIT_TIME: %s\n", p.ExitTime.UTC().Format(time.RFC3339))
	}
	fmt.Fprintf(&b, ":FEES: %s\n", p.EntryFee.Add(p.ExitFee))
	fmt.Fprintf(&b, ":GROSS_PROFIT: %s\n", p.GrossProfit)
	fmt.Fprintf(&b, ":NET_PROFIT: %s\n", p.NetProfit)
	b.WriteString(":END:\n")
	b.WriteString("\n")
	b.WriteString("*** Thesis\n- \n\n")
	b.WriteString("*** Execution\n- \n\n")
	b.WriteString("*** Review\n- \n")
	return b.String()
}

// FormatPositionsOrg renders multiple positions separated by blank lines.
func FormatPositionsOrg(positions []PositionRecord) string {
	var b strings.Builder
	for i, p := range positions {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(FormatPositionOrg(p))
	}
	return b.String()
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[:8]
}
