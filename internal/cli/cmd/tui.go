package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/muxpanel/omnibar/internal/cli/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Interactive omnibar demo",
	Long: `Run the omnibar interactively in the terminal. Keystrokes flow through
the same pipeline the browser uses: ranked suggestions, ghost-text
completion, and the two-stage Escape. Enter prints the committed URL.`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	app := GetApp()

	m := tui.NewModel(app.Ctx(), app.Controller(nil), app.Config().SearchURL)

	p := tea.NewProgram(m, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("run tui: %w", err)
	}

	if model, ok := final.(*tui.Model); ok && model.Result() != "" {
		fmt.Println(model.Result())
	}
	return nil
}
