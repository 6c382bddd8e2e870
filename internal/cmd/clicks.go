package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/runger/seek/internal/clickstore"
	"github.com/runger/seek/internal/logging"
	"github.com/runger/seek/internal/query"
)

var clicksJSON bool

var clicksCmd = &cobra.Command{
	Use:     "clicks [query]",
	Short:   "Show opened results per query",
	GroupID: groupCore,
	Long: `Show which results have been opened, per query.

Without arguments, lists the stored queries and how many opened
results each one has. With a query argument, lists the opened URLs
for that query. Queries match in normalized form, so case and extra
spaces do not matter.

Examples:
  seek clicks                   # List queries with opened results
  seek clicks "golang tui"      # List opened URLs for one query
  seek clicks --json            # Output as JSON`,
	Args: cobra.MaximumNArgs(1),
	RunE: runClicks,
}

func init() {
	clicksCmd.Flags().BoolVar(&clicksJSON, "json", false, "Output as JSON")
	clicksCmd.Flags().StringVar(&colorMode, "color", "auto", "color output: auto, always, or never")

	rootCmd.AddCommand(clicksCmd)
}

func runClicks(cmd *cobra.Command, args []string) error {
	applyColorMode()

	cfg, paths, err := loadConfig()
	if err != nil {
		return err
	}

	store := clickstore.Load(cfg.ClickStorePath(paths), logging.Discard())

	if len(args) == 0 {
		return listClickKeys(store)
	}
	return listClickURLs(store, args[0])
}

func listClickKeys(store *clickstore.Store) error {
	keys := store.Keys()

	if clicksJSON {
		output := make([]clickKeyOutput, len(keys))
		for i, k := range keys {
			output[i] = clickKeyOutput{Query: k, Opened: len(store.URLs(k))}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetEscapeHTML(false)
		return enc.Encode(clickKeysResponse{Queries: output, Total: len(output)})
	}

	if len(keys) == 0 {
		fmt.Println("No opened results recorded yet.")
		return nil
	}

	for _, k := range keys {
		n := len(store.URLs(k))
		fmt.Printf("  %s%s%s  %s(%d opened)%s\n", colorCyan, k, colorReset, colorDim, n, colorReset)
	}

	fmt.Println()
	fmt.Printf("Click store: %s\n", store.Path())

	return nil
}

func listClickURLs(store *clickstore.Store, rawQuery string) error {
	key := query.Normalize(rawQuery)
	urls := store.URLs(key)
	if urls == nil {
		urls = []string{}
	}

	if clicksJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetEscapeHTML(false)
		return enc.Encode(clickURLsResponse{Query: key, URLs: urls, Total: len(urls)})
	}

	if len(urls) == 0 {
		fmt.Printf("No opened results for %q\n", key)
		return nil
	}

	for _, u := range urls {
		fmt.Println(u)
	}

	return nil
}

type clickKeyOutput struct {
	Query  string `json:"query"`
	Opened int    `json:"opened"`
}

type clickKeysResponse struct {
	Queries []clickKeyOutput `json:"queries"`
	Total   int              `json:"total"`
}

type clickURLsResponse struct {
	Query string   `json:"query"`
	URLs  []string `json:"urls"`
	Total int      `json:"total"`
}
