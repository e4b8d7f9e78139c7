package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/griffinplus/go-logfile/internal/corelog"
	"github.com/griffinplus/go-logfile/internal/logstore"
	"github.com/griffinplus/go-logfile/internal/watch"
)

var watchLogFile string

var watchCmd = &cobra.Command{
	Use:   "watch <path>",
	Short: "Follow a log file, printing newly appended messages as they arrive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if watchLogFile != "" {
			log = corelog.NewRotatingFile(watchLogFile, 10, 3, 28, corelog.LevelInfo)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-sig
			cancel()
		}()

		var mu sync.Mutex
		nextID := int64(0)

		printNew := func() {
			mu.Lock()
			defer mu.Unlock()
			lf, err := logstore.OpenReadOnly(ctx, args[0])
			if err != nil {
				log.Warnf("reopening %s: %v", args[0], err)
				return
			}
			defer func() { _ = lf.Close(ctx) }()

			if lf.NewestID() < nextID {
				return
			}
			_, _ = lf.Read(ctx, nextID, lf.NewestID()-nextID+1, func(m *logstore.Message) bool {
				fmt.Printf("%d\t%s\t%s/%s/%s/%s\t%s\n",
					m.ID, m.Timestamp.Format("2006-01-02T15:04:05.000000"),
					m.ProcessName, m.ApplicationName, m.LogWriterName, m.LogLevelName, m.Text)
				nextID = m.ID + 1
				return true
			})
		}

		if _, err := os.Stat(args[0]); err == nil {
			printNew()
		}

		log.Infof("watching %s", args[0])
		w, err := watch.New(args[0], printNew)
		if err != nil {
			return err
		}
		defer func() { _ = w.Close() }()

		w.Start(ctx)
		<-ctx.Done()
		log.Infof("stopped watching %s", args[0])
		return nil
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchLogFile, "log-file", "", "write operational log messages to a rotating file instead of stderr")
	rootCmd.AddCommand(watchCmd)
}
