package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func sessionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List sessions recorded in the journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := outputFormat()
			if err != nil {
				return err
			}

			repo, err := openJournal()
			if err != nil {
				return err
			}
			defer repo.Close()

			sessions, err := repo.ListSessions(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if format == "json" {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(sessions)
			}

			if len(sessions) == 0 {
				fmt.Fprintln(out, "No journaled sessions.")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "SESSION\tENTRIES\tLAST RECORDED")
			for _, s := range sessions {
				fmt.Fprintf(w, "%s\t%d\t%s\n", s.SessionID, s.Entries, s.LastRecorded.Format(time.RFC3339))
			}
			return w.Flush()
		},
	}
}
