package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skilltrack/skilltrack/internal/app"
	"github.com/skilltrack/skilltrack/internal/dashboard"
	"github.com/skilltrack/skilltrack/internal/screen"
	"github.com/skilltrack/skilltrack/internal/session"
)

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	ctx := cmd.Context()
	rt, err := setup(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	verifier, err := rt.verifier(ctx)
	if err != nil {
		return err
	}

	current, err := rt.current(ctx)
	if err != nil && !errors.Is(err, session.ErrNoSession) {
		return fmt.Errorf("resume session: %w", err)
	}

	return app.Run(app.Options{
		Session: current,
		Env: &screen.Env{
			Store:     rt.store,
			Sessions:  rt.sessions,
			Dashboard: dashboard.New(rt.store),
			Verifier:  verifier,
			Logger:    rt.logger,
			OnLogin:   rt.saveCurrent,
		},
	})
}
