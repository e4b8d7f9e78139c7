package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/griffinplus/go-logfile/internal/logstore"
)

var createPurpose string

var createCmd = &cobra.Command{
	Use:   "create <path>",
	Short: "Create a new log file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		purpose, err := parsePurpose(createPurpose)
		if err != nil {
			return err
		}

		lf, err := logstore.Create(context.Background(), args[0], purpose, resolveWriteMode())
		if err != nil {
			return err
		}
		defer func() { _ = lf.Close(context.Background()) }()

		fmt.Printf("created %s (purpose=%s, mode=%s)\n", args[0], purpose, resolveWriteMode())
		return nil
	},
}

func parsePurpose(s string) (logstore.Purpose, error) {
	switch strings.ToLower(s) {
	case "recording", "":
		return logstore.PurposeRecording, nil
	case "analysis":
		return logstore.PurposeAnalysis, nil
	default:
		return logstore.PurposeNotSpecified, fmt.Errorf("unknown purpose %q (want recording or analysis)", s)
	}
}

func init() {
	createCmd.Flags().StringVar(&createPurpose, "purpose", "recording", "schema purpose: recording or analysis")
	rootCmd.AddCommand(createCmd)
}
