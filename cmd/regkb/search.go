package regkb

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/openregulatory/regkb/pkg/config"
)

var searchK int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the indexed rules",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().IntVar(&searchK, "k", 5, "number of results")
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := buildLogger(cfg)
	kb, err := buildKnowledgeBase(cfg, log, false)
	if err != nil {
		return fmt.Errorf("failed to initialize knowledge base: %w", err)
	}
	defer kb.Close()

	if _, err := kb.ProcessDocuments(cmd.Context(), false); err != nil {
		return fmt.Errorf("failed to prepare index: %w", err)
	}

	query := strings.Join(args, " ")
	results, err := kb.Search(cmd.Context(), query, searchK)
	if err != nil {
		return err
	}

	for i, result := range results {
		fmt.Printf("%d. [%s] %s (score %.3f, page %d)\n",
			i+1, result.Rule.Source, result.Rule.RuleNumber, result.Score, result.Rule.Page)
		fmt.Printf("   %s\n", result.Rule.Text)
		if len(result.Categories) > 0 {
			fmt.Printf("   categories: %s\n", strings.Join(result.Categories, ", "))
		}
	}
	return nil
}
