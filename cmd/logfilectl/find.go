package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/griffinplus/go-logfile/internal/registry"
)

var findNearest bool

var findCmd = &cobra.Command{
	Use:   "find [dir]",
	Short: "Locate log files under or above a directory",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}

		if findNearest {
			path, ok := registry.FindNearest(dir)
			if !ok {
				return fmt.Errorf("no %s file found at or above %s", registry.Extension, dir)
			}
			fmt.Println(path)
			return nil
		}

		paths, err := registry.FindLogFiles(dir)
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Println(p)
		}
		return nil
	},
}

func init() {
	findCmd.Flags().BoolVar(&findNearest, "nearest", false, "find the single nearest log file by walking up from dir instead of walking down")
	rootCmd.AddCommand(findCmd)
}
