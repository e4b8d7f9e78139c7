package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/griffinplus/go-logfile/internal/logstore"
	"github.com/griffinplus/go-logfile/internal/sessionlock"
)

var compactCmd = &cobra.Command{
	Use:   "compact <path>",
	Short: "Rebuild a log file in place to reclaim free pages (VACUUM)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lock, err := sessionlock.TryAcquire(args[0])
		if err != nil {
			return err
		}
		if lock == nil {
			return fmt.Errorf("another logfilectl invocation holds the session lock for %s", args[0])
		}
		defer func() { _ = lock.Release() }()

		lf, err := logstore.Open(context.Background(), args[0], resolveWriteMode())
		if err != nil {
			return err
		}
		defer func() { _ = lf.Close(context.Background()) }()

		if err := lf.Compact(context.Background()); err != nil {
			return err
		}
		fmt.Println("compacted")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(compactCmd)
}
