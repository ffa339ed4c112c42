package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/bnema/inputkit/internal/config"
	"github.com/bnema/inputkit/internal/journal"
	"github.com/bnema/inputkit/internal/ui"
)

var (
	historyFilter   journal.Filter
	historySessions bool
	historyPrune    time.Duration
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show events recorded in the journal",
	Long: `Show events recorded by listen, monitor or serve with --record, newest
first. --sessions lists recording sessions instead, and --prune deletes
events older than the given age.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.Get().Journal.Path
		db, err := journal.Open(path)
		if err != nil {
			return err
		}
		defer db.Close()

		out := cmd.OutOrStdout()

		if historyPrune > 0 {
			removed, err := db.Prune(time.Now().Add(-historyPrune))
			if err != nil {
				return err
			}
			fmt.Fprintln(out, ui.FormatResult(true, fmt.Sprintf("Removed %d event(s) older than %s", removed, historyPrune)))
			return nil
		}

		if historySessions {
			sessions, err := db.Sessions()
			if err != nil {
				return err
			}
			if len(sessions) == 0 {
				fmt.Fprintln(out, "No sessions recorded")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "Session\tFirst\tLast\tEvents")
			for _, s := range sessions {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", s.ID, s.First.Format(time.DateTime), s.Last.Format(time.DateTime), s.Count)
			}
			return w.Flush()
		}

		entries, err := db.Entries(historyFilter)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Fprintln(out, "No events recorded")
			return nil
		}
		for _, e := range entries {
			fmt.Fprintln(out, ui.FormatEntry(e))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().StringVar(&historyFilter.Session, "session", "", "only show events of this session")
	historyCmd.Flags().StringVar(&historyFilter.Device, "device", "", "only show pointer or keyboard events")
	historyCmd.Flags().IntVarP(&historyFilter.Limit, "limit", "n", 100, "maximum number of events")
	historyCmd.Flags().BoolVar(&historySessions, "sessions", false, "list recording sessions")
	historyCmd.Flags().DurationVar(&historyPrune, "prune", 0, "delete events older than this age, e.g. 720h")
}
