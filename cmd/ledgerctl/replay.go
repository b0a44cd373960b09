package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"moneyflow/internal/core"
	"moneyflow/internal/ledger"
	applog "moneyflow/internal/log"
)

type rejectedRow struct {
	Line  int    `json:"line"`
	Error string `json:"error"`
}

func replayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <file.csv>",
		Short: "Feed a CSV of transactions through a fresh ledger",
		Long: `Reads rows of category,description,amount (a header row is optional),
adds each one to an empty ledger and prints totals and the chart series.
Rows the ledger rejects are reported and skipped. Use - to read stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat()
			if err != nil {
				return err
			}

			var in io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("failed to open %s: %w", args[0], err)
				}
				defer f.Close()
				in = f
			}

			l := ledger.New(ledger.WithIDGenerator(ledger.NewSequenceGenerator(viper.GetString("replay.id_prefix"))))
			rejected, err := replayCSV(in, l)
			if err != nil {
				return err
			}

			logger.Info("Replay finished",
				applog.FieldOperation, applog.OpAppend,
				"accepted", l.Len(),
				"rejected", len(rejected))

			return render(cmd.OutOrStdout(), format, buildReport("", l, rejected))
		},
	}

	cmd.Flags().String("id-prefix", "tx", "prefix of the generated transaction ids")
	_ = viper.BindPFlag("replay.id_prefix", cmd.Flags().Lookup("id-prefix"))

	return cmd
}

// replayCSV adds every row of r to l and returns the rows l refused.
// Only malformed CSV aborts the replay.
func replayCSV(r io.Reader, l *ledger.Ledger) ([]rejectedRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	var rejected []rejectedRow
	first := true
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		line, _ := reader.FieldPos(0)

		if first {
			first = false
			if isHeader(record) {
				continue
			}
		}
		if len(record) != 3 {
			rejected = append(rejected, rejectedRow{Line: line, Error: fmt.Sprintf("expected 3 fields, got %d", len(record))})
			continue
		}

		category, err := core.ParseCategory(record[0])
		if err != nil {
			rejected = append(rejected, rejectedRow{Line: line, Error: err.Error()})
			continue
		}
		if _, err := l.Add(record[1], record[2], category); err != nil {
			rejected = append(rejected, rejectedRow{Line: line, Error: err.Error()})
		}
	}
	return rejected, nil
}

func isHeader(record []string) bool {
	return len(record) > 0 && strings.EqualFold(strings.TrimSpace(record[0]), "category")
}
