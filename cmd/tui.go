// ABOUTME: TUI command that launches the interactive interface
// ABOUTME: Logs to debug.log in the config directory so output stays off the screen

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/EdwinJoye/cda31-dev3-frontend/internal/logger"
	"github.com/EdwinJoye/cda31-dev3-frontend/internal/notify"
	"github.com/EdwinJoye/cda31-dev3-frontend/internal/storage"
	"github.com/EdwinJoye/cda31-dev3-frontend/internal/tui"
	"github.com/EdwinJoye/cda31-dev3-frontend/internal/tui/recentlogins"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive interface",
	Run: func(cmd *cobra.Command, args []string) {
		runTUICommand()
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

// runTUICommand builds the runtime with a toast queue and runs the TUI
func runTUICommand() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitFailure)
	}

	var logOut io.Writer = io.Discard
	if f, err := logger.OpenFile(cfg.ConfigDir); err == nil {
		defer f.Close()
		logOut = f
	} else {
		fmt.Fprintf(os.Stderr, "Warning: debug log disabled: %v\n", err)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat, logOut)

	store, err := storage.Open(cfg.Storage, cfg.ConfigDir, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: open session storage: %v\n", err)
		os.Exit(exitFailure)
	}

	queue := notify.NewQueue()
	e := buildEnv(cfg, log, store, notify.Multi(queue, notify.Log(log)))
	defer e.Close()

	log.Info("Starting TUI", "api_url", cfg.APIURL, "storage", cfg.Storage)
	err = tui.Run(ctx, tui.Deps{
		Session:   e.session,
		Directory: e.directory,
		Toasts:    queue,
		Recent:    recentlogins.New(store),
		APIURL:    cfg.APIURL,
	})
	if err != nil && ctx.Err() == nil {
		log.Error("TUI exited with error", "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		e.Close()
		os.Exit(exitFailure)
	}
}
