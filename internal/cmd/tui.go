package cmd

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/matthieukhl/quotedesk/internal/tui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive terminal UI",
	Long: `Open the terminal UI: type or paste a job description, let the backend 
extract the line items, then edit the quotation, export it as a PDF or 
manage the inventory.

Logs would corrupt the screen, so they are discarded unless logger.file 
is set.`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.close()

	if a.cfg.Logger.File == "" {
		a.log = zap.NewNop()
	}

	inv, err := a.inventory()
	if err != nil {
		return fmt.Errorf("failed to create inventory client: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := tui.New(ctx, tui.Deps{
		Extractor:  a.backend,
		Controller: a.controller(),
		Handoff:    a.handoff(),
		Inventory:  inv,
		Exporter:   a.exporter(),
		Log:        a.log,
	})

	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("terminal UI failed: %w", err)
	}
	return nil
}
