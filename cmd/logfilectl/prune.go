package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/griffinplus/go-logfile/internal/logstore"
)

var (
	pruneMaxCount int64
	pruneMinAge   string
)

var pruneCmd = &cobra.Command{
	Use:   "prune <path>",
	Short: "Remove the oldest contiguous prefix of messages, by count and/or age",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		minTimestamp := logstore.MinTimestamp()
		if pruneMinAge != "" {
			t, err := time.Parse(time.RFC3339, pruneMinAge)
			if err != nil {
				return fmt.Errorf("parsing --min-age as RFC3339: %w", err)
			}
			minTimestamp = t
		}

		lf, err := logstore.Open(context.Background(), args[0], resolveWriteMode())
		if err != nil {
			return err
		}
		defer func() { _ = lf.Close(context.Background()) }()

		n, err := lf.Prune(context.Background(), pruneMaxCount, minTimestamp)
		if err != nil {
			return err
		}
		fmt.Printf("removed %d message(s)\n", n)
		return nil
	},
}

func init() {
	pruneCmd.Flags().Int64Var(&pruneMaxCount, "max-count", -1, "maximum number of messages to retain (-1: no count cap)")
	pruneCmd.Flags().StringVar(&pruneMinAge, "min-age", "", "remove messages older than this RFC3339 timestamp (default: no age cap)")
	rootCmd.AddCommand(pruneCmd)
}
