// Command leaderboard prints the standings stored in a Ten SQLite database,
// one table per server, without starting the game server.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/tengame/game/leaderboard"
	"github.com/wricardo/tengame/storage/sqlite"
)

func main() {
	cmd := &cli.Command{
		Name:  "leaderboard",
		Usage: "Print Ten leaderboard standings",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "db", Usage: "SQLite leaderboard file", Value: "ten.db", Sources: cli.EnvVars("TEN_DB_PATH")},
			&cli.StringFlag{Name: "server", Usage: "Only print this server"},
			&cli.IntFlag{Name: "limit", Usage: "Entries per server", Value: leaderboard.DefaultLimit},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			store, err := sqlite.Open(cmd.String("db"))
			if err != nil {
				return err
			}
			defer store.Close()

			return printStandings(ctx, os.Stdout, store, cmd.String("server"), int(cmd.Int("limit")))
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// printStandings writes the standings of one server, or of every server
// when serverID is empty.
func printStandings(ctx context.Context, w io.Writer, store *sqlite.Store, serverID string, limit int) error {
	servers := []string{serverID}
	if serverID == "" {
		var err error
		servers, err = store.Servers(ctx)
		if err != nil {
			return err
		}
		if len(servers) == 0 {
			fmt.Fprintln(w, "No scores recorded yet.")
			return nil
		}
	}

	for _, id := range servers {
		entries, err := store.Top(ctx, id, limit)
		if err != nil {
			return err
		}
		printServer(w, id, entries)
	}
	return nil
}

func printServer(w io.Writer, serverID string, entries []leaderboard.Entry) {
	title := serverID
	if len(entries) > 0 && entries[0].ServerLabel != "" {
		title = fmt.Sprintf("%s (%s)", entries[0].ServerLabel, serverID)
	}
	fmt.Fprintf(w, "\n=== %s ===\n", title)

	if len(entries) == 0 {
		fmt.Fprintln(w, "No scores recorded yet.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tPLAYER\tSCORE\tTURNS\tRECORDED")
	for i, e := range entries {
		name := e.PlayerLabel
		if name == "" {
			name = e.PlayerID
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%s\n", i+1, name, e.Score, e.Turns, e.RecordedAt.Format("2006-01-02 15:04"))
	}
	tw.Flush()
}
