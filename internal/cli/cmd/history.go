package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	historyJSON  bool
	historyMax   int
	addTitle     string
	addTyped     bool
	clearConfirm bool
)

const defaultHistoryMax = 50

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse and manage navigation history",
	Long:  `List, add, and remove entries from the frecency-ranked history store.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List history entries, most recent first",
	RunE:  runHistoryList,
}

var historyAddCmd = &cobra.Command{
	Use:   "add <url>",
	Short: "Record a visit",
	Long: `Record a visit to a URL. With --typed the visit also counts as a typed
navigation, which is a stronger ranking signal than a plain visit.`,
	Args: cobra.ExactArgs(1),
	RunE: runHistoryAdd,
}

var historySearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search history with frecency ranking",
	Long: `Rank history entries against a query the way the address bar would:
prefix matches on the host beat substring matches, tokenized queries must
match across URL and title, and typed navigations outrank plain visits.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runHistorySearch,
}

var historyRmCmd = &cobra.Command{
	Use:   "rm <url>",
	Short: "Remove an entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryRm,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all history",
	RunE:  runHistoryClear,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd, historySearchCmd, historyAddCmd, historyRmCmd, historyClearCmd)

	historyListCmd.Flags().BoolVar(&historyJSON, "json", false, "output as JSON")
	historyListCmd.Flags().IntVar(&historyMax, "max", defaultHistoryMax, "maximum entries to show")

	historySearchCmd.Flags().BoolVar(&historyJSON, "json", false, "output as JSON")
	historySearchCmd.Flags().IntVar(&historyMax, "max", defaultHistoryMax, "maximum entries to show")

	historyAddCmd.Flags().StringVar(&addTitle, "title", "", "page title")
	historyAddCmd.Flags().BoolVar(&addTyped, "typed", false, "count as a typed navigation")

	historyClearCmd.Flags().BoolVar(&clearConfirm, "yes", false, "skip confirmation")
}

var (
	urlStyle   = lipgloss.NewStyle().Bold(true)
	titleStyle = lipgloss.NewStyle().Faint(true)
	metaStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
)

func runHistoryList(_ *cobra.Command, _ []string) error {
	app := GetApp()
	entries := app.Store.All(app.Ctx())
	if historyMax > 0 && len(entries) > historyMax {
		entries = entries[:historyMax]
	}

	if historyJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	for _, e := range entries {
		line := urlStyle.Render(e.URL)
		if e.Title != "" {
			line += "  " + titleStyle.Render(e.Title)
		}
		meta := fmt.Sprintf("visits %d", e.VisitCount)
		if e.TypedCount > 0 {
			meta += fmt.Sprintf(", typed %d", e.TypedCount)
		}
		meta += ", last " + e.LastVisited.Format("2006-01-02 15:04")
		fmt.Printf("%s\n  %s\n", line, metaStyle.Render(meta))
	}
	return nil
}

func runHistorySearch(_ *cobra.Command, args []string) error {
	app := GetApp()
	query := strings.Join(args, " ")

	entries := app.Store.Suggestions(app.Ctx(), query, historyMax)
	if historyJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	for _, e := range entries {
		line := urlStyle.Render(e.URL)
		if e.Title != "" {
			line += "  " + titleStyle.Render(e.Title)
		}
		fmt.Println(line)
	}
	return nil
}

func runHistoryAdd(_ *cobra.Command, args []string) error {
	app := GetApp()
	url := args[0]

	if err := app.Store.RecordVisit(app.Ctx(), url, addTitle); err != nil {
		return fmt.Errorf("record visit: %w", err)
	}
	if addTyped {
		if err := app.Store.RecordTypedNavigation(app.Ctx(), url); err != nil {
			return fmt.Errorf("record typed navigation: %w", err)
		}
	}
	return nil
}

func runHistoryRm(_ *cobra.Command, args []string) error {
	app := GetApp()
	if !app.Store.RemoveEntry(app.Ctx(), args[0]) {
		return fmt.Errorf("no history entry matches %q", args[0])
	}
	return nil
}

func runHistoryClear(_ *cobra.Command, _ []string) error {
	app := GetApp()
	if !clearConfirm {
		fmt.Print("Delete all history? [y/N] ")
		var answer string
		if _, err := fmt.Scanln(&answer); err != nil || (answer != "y" && answer != "Y") {
			fmt.Println("aborted")
			return nil
		}
	}
	app.Store.Clear(app.Ctx())
	fmt.Println("history cleared")
	return nil
}
