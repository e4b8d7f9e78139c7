package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/griffinplus/go-logfile/internal/logstore"
)

var (
	appendProcessID int
	appendProcess   string
	appendApp       string
	appendWriter    string
	appendLevel     string
	appendTags      []string
)

var appendCmd = &cobra.Command{
	Use:   "append <path> <text>",
	Short: "Append one message to an existing log file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		lf, err := logstore.Open(context.Background(), args[0], resolveWriteMode())
		if err != nil {
			return err
		}
		defer func() { _ = lf.Close(context.Background()) }()

		m := &logstore.Message{
			Timestamp:       time.Now(),
			ProcessID:       int32(appendProcessID),
			ProcessName:     appendProcess,
			ApplicationName: appendApp,
			LogWriterName:   appendWriter,
			LogLevelName:    appendLevel,
			Text:            args[1],
			Tags:            logstore.NewTagSet(appendTags...),
		}

		if err := lf.Write(context.Background(), m); err != nil {
			return err
		}
		fmt.Printf("appended message %d\n", m.ID)
		return nil
	},
}

func init() {
	appendCmd.Flags().IntVar(&appendProcessID, "pid", 0, "process id")
	appendCmd.Flags().StringVar(&appendProcess, "process", "", "process name")
	appendCmd.Flags().StringVar(&appendApp, "app", "", "application name")
	appendCmd.Flags().StringVar(&appendWriter, "writer", "", "log writer name")
	appendCmd.Flags().StringVar(&appendLevel, "level", "", "log level name")
	appendCmd.Flags().StringSliceVar(&appendTags, "tag", nil, "tag name (repeatable)")
	rootCmd.AddCommand(appendCmd)
}
