package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/griffinplus/go-logfile/internal/logstore"
)

var (
	readFrom  int64
	readCount int64
)

var readCmd = &cobra.Command{
	Use:   "read <path>",
	Short: "Read messages from a log file by id range",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lf, err := logstore.OpenReadOnly(context.Background(), args[0])
		if err != nil {
			return err
		}
		defer func() { _ = lf.Close(context.Background()) }()

		from := readFrom
		if from < 0 {
			from = lf.OldestID()
			if from < 0 {
				from = 0
			}
		}

		_, err = lf.Read(context.Background(), from, readCount, func(m *logstore.Message) bool {
			fmt.Printf("%d\t%s\t%s/%s/%s/%s\t%s\n",
				m.ID, m.Timestamp.Format("2006-01-02T15:04:05.000000"),
				m.ProcessName, m.ApplicationName, m.LogWriterName, m.LogLevelName, m.Text)
			return true
		})
		return err
	},
}

func init() {
	readCmd.Flags().Int64Var(&readFrom, "from", -1, "starting message id (default: OldestId)")
	readCmd.Flags().Int64Var(&readCount, "count", 100, "maximum number of messages to read")
	rootCmd.AddCommand(readCmd)
}
