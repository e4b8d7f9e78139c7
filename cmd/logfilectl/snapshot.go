package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/griffinplus/go-logfile/internal/logstore"
	"github.com/griffinplus/go-logfile/internal/sessionlock"
)

var snapshotProgress bool

var snapshotCmd = &cobra.Command{
	Use:   "snapshot <path> <dest>",
	Short: "Write a consistent copy of a log file to dest",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		lf, err := logstore.OpenReadOnly(context.Background(), args[0])
		if err != nil {
			return err
		}
		defer func() { _ = lf.Close(context.Background()) }()

		if !snapshotProgress {
			if err := lf.SaveSnapshot(context.Background(), args[1]); err != nil {
				return err
			}
			fmt.Printf("wrote snapshot to %s\n", args[1])
			return nil
		}

		lock, err := sessionlock.TryAcquire(args[0])
		if err != nil {
			return err
		}
		if lock == nil {
			return fmt.Errorf("another logfilectl invocation holds the session lock for %s", args[0])
		}
		defer func() { _ = lock.Release() }()

		err = lf.SaveSnapshotWithProgress(context.Background(), args[1], 250*time.Millisecond, func(progress float64, cancelled bool) bool {
			if cancelled {
				fmt.Printf("\rsnapshot cancelled at %5.1f%%", progress*100)
				return false
			}
			fmt.Printf("\rsnapshot progress: %5.1f%%", progress*100)
			return true
		})
		fmt.Println()
		if err != nil {
			return err
		}
		fmt.Printf("wrote snapshot to %s\n", args[1])
		return nil
	},
}

func init() {
	snapshotCmd.Flags().BoolVar(&snapshotProgress, "progress", false, "report incremental progress instead of using VACUUM INTO directly")
	rootCmd.AddCommand(snapshotCmd)
}
