package main

import (
	"context"
	"fmt"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jask/patterndeck/internal/catalog"
	"github.com/jask/patterndeck/internal/deck"
	"github.com/jask/patterndeck/internal/tui"
)

var rootCmd = &cobra.Command{
	Use:   "patterndeck",
	Short: "Swipe through startup patterns and record how your team responds",
	Long: `patterndeck presents one pattern card at a time. Swipe or press
right to keep it, left to pass, then pick a follow-up. Responses are stored
for the current startup.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		rt, err := openRuntime(ctx)
		if err != nil {
			return err
		}
		// Deferred in reverse: stop background work, wait for it, then close.
		defer rt.Close()

		coord := deck.NewCoordinator(rt.store, rt.identity,
			deck.WithTimeout(rt.cfg.Submit.Timeout),
			deck.WithLogger(rt.log.Named("submit")),
		)
		app := tui.New(ctx, rt.cfg.UI, tui.Deps{
			Patterns:    rt.patterns,
			Identity:    rt.identity,
			Coordinator: coord,
			Log:         rt.log.Named("tui"),
		})
		p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))

		wait := watchCatalog(ctx, rt, p.Send)
		defer wait()
		defer cancel()

		_, err = p.Run()
		return err
	},
}

// watchCatalog reloads the catalog into the database on every change when
// catalog.watch is set. The returned func blocks until the watcher has
// stopped, which happens once ctx is done.
func watchCatalog(ctx context.Context, rt *runtime, send func(tea.Msg)) func() {
	if !rt.cfg.Catalog.Watch || rt.cfg.Catalog.Path == "" {
		return func() {}
	}
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		err := catalog.Watch(ctx, rt.cfg.Catalog.Path, rt.log.Named("catalog"), func(ctx context.Context, c catalog.Catalog) error {
			n, err := rt.patterns.Import(ctx, c)
			if err != nil {
				send(tui.StatusMsg{Text: err.Error(), IsErr: true})
				return err
			}
			send(tui.StatusMsg{Text: fmt.Sprintf("catalog reloaded: %d patterns", n)})
			return nil
		})
		if err != nil {
			rt.log.Warn("catalog watch stopped", zap.Error(err))
		}
	}()
	return wg.Wait
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(importCmd, responsesCmd, useStartupCmd, showCmd, resetCmd, initConfigCmd)
}
