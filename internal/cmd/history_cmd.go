package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/runger/seek/internal/storage"
	"github.com/runger/seek/internal/tui"
)

var (
	historyLimit   int
	historySession string
	historyJSON    bool
)

var historyCmd = &cobra.Command{
	Use:     "history [query]",
	Short:   "Show search history",
	GroupID: groupCore,
	Long: `Show search history from the seek database.

Without arguments, shows the most recent searches.
With a query argument, filters searches containing the text.

The history is stored in the local SQLite database and includes
searches from all sessions by default. Use --session to filter
to a specific session.

Examples:
  seek history                  # Show last 20 searches
  seek history --limit=50       # Show last 50 searches
  seek history golang           # Show searches containing "golang"
  seek history --json           # Output as JSON`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of searches to show")
	historyCmd.Flags().StringVar(&historySession, "session", "", "Filter by session ID")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Output as JSON")
	historyCmd.Flags().StringVar(&colorMode, "color", "auto", "color output: auto, always, or never")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	applyColorMode()

	cfg, paths, err := loadConfig()
	if err != nil {
		return err
	}

	// Stat before opening so a read-only command does not create the
	// database and its directories.
	dbPath := cfg.DatabasePath(paths)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Printf("No history available. Database not found at: %s\n", dbPath)
		return nil
	}

	store, err := storage.NewSQLiteStore(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer store.Close()

	// Build query
	query := storage.SearchQuery{
		Limit: historyLimit,
	}

	if len(args) > 0 {
		query.Substring = args[0]
	}

	if historySession != "" {
		query.SessionID = &historySession
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	searches, err := store.QuerySearches(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to query history: %w", err)
	}

	if historyJSON {
		return writeHistoryJSON(searches)
	}

	if len(searches) == 0 {
		if len(args) > 0 {
			fmt.Printf("No searches found matching %q\n", args[0])
		} else if historySession != "" {
			fmt.Println("No searches recorded in this session yet.")
		} else {
			fmt.Println("No search history available.")
		}
		return nil
	}

	// Queries come back newest first; reverse so the oldest is at the top,
	// which reads naturally in a scrolling terminal.
	queryWidth := termWidth() - 45
	if queryWidth < 20 {
		queryWidth = 20
	}
	for i := len(searches) - 1; i >= 0; i-- {
		fmt.Println(formatSearchLine(searches[i], queryWidth))
	}

	fmt.Println()
	fmt.Printf("%sShowing %d search(es)%s\n", colorDim, len(searches), colorReset)

	return nil
}

// formatSearchLine renders one history row for terminal output.
func formatSearchLine(s storage.Search, queryWidth int) string {
	t := time.UnixMilli(s.SearchedAtUnixMs)
	timestamp := t.Format("2006-01-02 15:04:05")

	query := tui.Truncate(tui.CleanLine(s.Query), queryWidth)

	line := fmt.Sprintf("%s%s%s  %s", colorDim, timestamp, colorReset, query)
	if s.Page > 0 {
		line += fmt.Sprintf("  %s[page %d]%s", colorDim, s.Page+1, colorReset)
	}
	line += fmt.Sprintf("  %s(%d shown, %d hidden)%s", colorDim, s.ResultCount, s.HiddenCount, colorReset)
	if s.Altered != "" {
		line += fmt.Sprintf("  %s(spellchecked to: %s)%s", colorYellow, s.Altered, colorReset)
	}

	return line
}

type historyOutput struct {
	Query     string `json:"query"`
	Page      int    `json:"page"`
	Results   int    `json:"results"`
	Hidden    int    `json:"hidden"`
	Altered   string `json:"altered,omitempty"`
	SessionID string `json:"session_id"`
	Ts        int64  `json:"ts_unix_ms"`
}

type historyResponse struct {
	Searches  []historyOutput `json:"searches"`
	Total     int             `json:"total"`
	Truncated bool            `json:"truncated"`
}

func writeHistoryJSON(searches []storage.Search) error {
	output := make([]historyOutput, len(searches))
	for i, s := range searches {
		output[i] = historyOutput{
			Query:     s.Query,
			Page:      s.Page,
			Results:   s.ResultCount,
			Hidden:    s.HiddenCount,
			Altered:   s.Altered,
			SessionID: s.SessionID,
			Ts:        s.SearchedAtUnixMs,
		}
	}

	resp := historyResponse{
		Searches:  output,
		Total:     len(output),
		Truncated: len(output) >= historyLimit,
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	return enc.Encode(resp)
}
