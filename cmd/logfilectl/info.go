package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/griffinplus/go-logfile/internal/logstore"
)

var (
	infoLabelStyle = lipgloss.NewStyle().Bold(true).Width(16)
	infoValueStyle = lipgloss.NewStyle()
)

var infoCmd = &cobra.Command{
	Use:   "info <path>",
	Short: "Show a log file's purpose, id range, and dictionary contents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lf, err := logstore.OpenReadOnly(context.Background(), args[0])
		if err != nil {
			return err
		}
		defer func() { _ = lf.Close(context.Background()) }()

		printField("path", args[0])
		printField("purpose", lf.Purpose().String())
		printField("oldest id", fmt.Sprintf("%d", lf.OldestID()))
		printField("newest id", fmt.Sprintf("%d", lf.NewestID()))
		printField("message count", fmt.Sprintf("%d", lf.MessageCount()))

		dictTables := []struct {
			label string
			t     logstore.DictTable
		}{
			{"processes", logstore.TableProcesses},
			{"applications", logstore.TableApplications},
			{"writers", logstore.TableWriters},
			{"levels", logstore.TableLevels},
		}
		for _, dt := range dictTables {
			names, err := lf.ListAllNames(context.Background(), dt.t)
			if err != nil {
				return err
			}
			printField(dt.label, fmt.Sprintf("%d (%v)", len(names), names))
		}
		return nil
	},
}

func printField(label, value string) {
	fmt.Println(infoLabelStyle.Render(label+":") + " " + infoValueStyle.Render(value))
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
