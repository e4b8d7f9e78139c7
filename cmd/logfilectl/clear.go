package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/griffinplus/go-logfile/internal/logstore"
)

var clearMessagesOnly bool

var clearCmd = &cobra.Command{
	Use:   "clear <path>",
	Short: "Remove all messages from a log file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lf, err := logstore.Open(context.Background(), args[0], resolveWriteMode())
		if err != nil {
			return err
		}
		defer func() { _ = lf.Close(context.Background()) }()

		if err := lf.Clear(context.Background(), clearMessagesOnly); err != nil {
			return err
		}
		fmt.Println("cleared")
		return nil
	},
}

func init() {
	clearCmd.Flags().BoolVar(&clearMessagesOnly, "messages-only", false, "preserve dictionary tables (processes/applications/writers/levels/tags)")
	rootCmd.AddCommand(clearCmd)
}
