package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/gesthub/gesthub/internal/model"
	"github.com/gesthub/gesthub/internal/tracking"
)

var (
	criticalColor  = color.New(color.FgRed, color.Bold)
	warningColor   = color.New(color.FgYellow)
	okColor        = color.New(color.FgGreen)
	collectedColor = color.New(color.FgHiBlack)
)

func colorize(b tracking.Badge) string {
	switch {
	case b.Collected:
		return collectedColor.Sprint(b.Label)
	case b.Urgency == tracking.UrgencyCritical:
		return criticalColor.Sprint(b.Label)
	case b.Urgency == tracking.UrgencyWarning:
		return warningColor.Sprint(b.Label)
	case b.Urgency == tracking.UrgencyOK:
		return okColor.Sprint(b.Label)
	}
	return b.Label
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(tracking.DateLayout)
}

// printNotas writes one row per notice in the order given.
func printNotas(w io.Writer, notas []*model.Nota, now time.Time) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCOMPANY\tINVOICE\tSENT\tFIRST\tCOUNT\tSTATUS")
	for _, n := range notas {
		first := "-"
		if tracking.ShowsFirstMessage(n) {
			first = formatDate(n.FirstMessageAt)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			n.ID,
			n.CompanyName,
			n.InvoiceNumber,
			formatDate(n.MessageSentAt),
			first,
			tracking.MessageCountLabel(n),
			colorize(tracking.Evaluate(n, now)),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "%d notas\n", len(notas))
	return nil
}
