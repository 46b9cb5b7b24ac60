package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/muxpanel/omnibar/internal/domain/autocomplete"
	"github.com/muxpanel/omnibar/internal/domain/entity"
	domurl "github.com/muxpanel/omnibar/internal/domain/url"
	"github.com/muxpanel/omnibar/internal/suggest"
)

var (
	suggestJSON   bool
	suggestEngine string
	suggestLocal  bool
)

var suggestCmd = &cobra.Command{
	Use:   "suggest <query>",
	Short: "Print ranked suggestions for a query",
	Long: `Run the full suggestion pipeline once for a query: history matches,
direct navigation, search, and remote autocomplete, merged and ranked the
way the address bar would show them.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSuggest,
}

func init() {
	rootCmd.AddCommand(suggestCmd)

	suggestCmd.Flags().BoolVar(&suggestJSON, "json", false, "output as JSON")
	suggestCmd.Flags().StringVar(&suggestEngine, "engine", "", "suggestion engine (overrides config)")
	suggestCmd.Flags().BoolVar(&suggestLocal, "local", false, "skip remote autocomplete")
}

func runSuggest(_ *cobra.Command, args []string) error {
	app := GetApp()
	ctx := app.Ctx()
	query := strings.TrimSpace(strings.Join(args, " "))

	cfg := app.Config()

	engine := cfg.Suggest.Engine
	if suggestEngine != "" {
		engine = suggestEngine
	}

	var remoteQueries []string
	if !suggestLocal && cfg.Suggest.Enabled {
		remoteQueries = app.Fetcher.Fetch(ctx, engine, query)
	}

	var resolved string
	if url, ok := domurl.DefaultResolver(query); ok {
		resolved = url
	}

	suggestions := suggest.Build(suggest.Input{
		Query:         query,
		Engine:        engine,
		History:       app.Store.Suggestions(ctx, query, cfg.Suggest.Limit),
		RemoteQueries: remoteQueries,
		ResolvedURL:   resolved,
		Limit:         cfg.Suggest.Limit,
	})

	if suggestJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(suggestions)
	}

	printSuggestions(query, suggestions)
	return nil
}

var (
	badgeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	ghostStyle    = lipgloss.NewStyle().Faint(true)
	selectedStyle = lipgloss.NewStyle().Bold(true)
)

func printSuggestions(query string, suggestions []entity.Suggestion) {
	preferred := suggest.PreferredIndex(query, suggestions)

	if ghost := autocomplete.Compute(query, suggestions, true,
		autocomplete.SelectionRange{Loc: len(query)}, false); ghost != nil {
		suffix := ghost.DisplayText[len(ghost.TypedText):]
		fmt.Printf("%s%s\n\n", query, ghostStyle.Render(suffix))
	}

	for i, s := range suggestions {
		marker := "  "
		line := s.Display()
		if i == preferred {
			marker = "> "
			line = selectedStyle.Render(line)
		}
		if badge := s.Badge(); badge != "" {
			line += "  " + badgeStyle.Render("["+badge+"]")
		}
		fmt.Printf("%s%s\n", marker, line)
	}
}
