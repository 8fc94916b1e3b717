package regkb

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openregulatory/regkb/pkg/config"
)

var processForce bool

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Extract rules from the data directory and build the index",
	Long: `Process every PDF in the data directory: extract numbered rules,
validate them, embed them, and persist the index artifacts. When artifacts
already exist the command loads them instead unless --force is given.`,
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)
	processCmd.Flags().BoolVar(&processForce, "force", false, "rebuild even when persisted artifacts exist")
}

func runProcess(cmd *cobra.Command, args []string) error {
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

	stats, err := kb.ProcessDocuments(cmd.Context(), processForce)
	if err != nil {
		return err
	}

	fmt.Printf("Documents processed: %d (failed: %d)\n", stats.Documents, stats.FailedDocuments)
	fmt.Printf("Rules indexed:       %d\n", stats.Processed)
	fmt.Printf("Candidates skipped:  %d\n", stats.Skipped)
	return nil
}
