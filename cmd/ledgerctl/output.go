package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/viper"

	"moneyflow/internal/chart"
	"moneyflow/internal/core"
	"moneyflow/internal/ledger"
)

type report struct {
	SessionID    string             `json:"session_id,omitempty"`
	Transactions []core.Transaction `json:"transactions"`
	Income       string             `json:"income"`
	Expense      string             `json:"expense"`
	Balance      string             `json:"balance"`
	Chart        chart.ChartSeries  `json:"chart"`
	Rejected     []rejectedRow      `json:"rejected,omitempty"`
}

func buildReport(sessionID string, l *ledger.Ledger, rejected []rejectedRow) report {
	totals := l.Totals()
	txs := l.Filter(core.All)
	if txs == nil {
		txs = []core.Transaction{}
	}
	return report{
		SessionID:    sessionID,
		Transactions: txs,
		Income:       core.FormatAmount(totals.Income),
		Expense:      core.FormatAmount(totals.Expense),
		Balance:      core.FormatAmount(l.Balance()),
		Chart:        chart.Build(l.Income(), l.Expenses(), l.Balance()),
		Rejected:     rejected,
	}
}

func outputFormat() (string, error) {
	format := strings.ToLower(viper.GetString("output"))
	switch format {
	case "", "table":
		return "table", nil
	case "json":
		return "json", nil
	default:
		return "", fmt.Errorf("invalid output format %q: must be table or json", format)
	}
}

func render(out io.Writer, format string, r report) error {
	if format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if r.SessionID != "" {
		fmt.Fprintf(w, "Session:\t%s\n", r.SessionID)
	}
	fmt.Fprintf(w, "Income:\t%s\n", r.Income)
	fmt.Fprintf(w, "Expense:\t%s\n", r.Expense)
	fmt.Fprintf(w, "Balance:\t%s\n", r.Balance)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "#\tLABEL\tINCOME\tEXPENSE")
	for i, label := range r.Chart.Labels {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i+1, label,
			formatPoint(r.Chart.Income()[i]),
			formatPoint(r.Chart.Expense()[i]))
	}

	if len(r.Rejected) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "REJECTED LINE\tREASON")
		for _, row := range r.Rejected {
			fmt.Fprintf(w, "%d\t%s\n", row.Line, row.Error)
		}
	}
	return w.Flush()
}

func formatPoint(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
