package regkb

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/openregulatory/regkb/pkg/config"
	"github.com/openregulatory/regkb/pkg/types"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print knowledge base statistics",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
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

	stats, err := kb.GetStatistics(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("Total rules: %d\n", stats.TotalRules)
	fmt.Println("By source:")
	sources := make([]string, 0, len(stats.RulesBySource))
	for source := range stats.RulesBySource {
		sources = append(sources, string(source))
	}
	sort.Strings(sources)
	for _, source := range sources {
		fmt.Printf("  %-10s %d\n", source, stats.RulesBySource[types.Source(source)])
	}

	fmt.Println("By category (non-exclusive):")
	categories := make([]string, 0, len(stats.RulesByCategory))
	for name := range stats.RulesByCategory {
		categories = append(categories, name)
	}
	sort.Strings(categories)
	for _, name := range categories {
		fmt.Printf("  %-15s %d\n", name, stats.RulesByCategory[name])
	}
	return nil
}
