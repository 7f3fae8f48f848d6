package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tasktag/tasktag/internal/graph"
	"github.com/tasktag/tasktag/models"
	"github.com/tasktag/tasktag/store"
)

var validateTagFlag string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check dependency graph integrity",
	Long: `Validate reports structural violations in one tag or the whole store:
duplicate ids, dangling dependency references, self dependencies, malformed
subtask ids, and dependency cycles. Nothing is modified; use 'fix' to repair.`,
	Run: func(cmd *cobra.Command, args []string) {
		_, tm, err := loadStore()
		if err != nil {
			HandleFatalError("Failed to load the tag store", err)
		}

		results, err := graph.ValidateTags(tm, validateTagFlag)
		if err != nil {
			HandleFatalError("Validation failed", err)
		}
		renderValidation(results)
	},
}

func init() {
	validateCmd.Flags().StringVarP(&validateTagFlag, "tag", "t", "", "tag to validate (default: all tags)")
	rootCmd.AddCommand(validateCmd)
}

// loadStore initializes the store and loads the current snapshot.
func loadStore() (store.TagStore, models.TagMap, error) {
	s, err := GetStore()
	if err != nil {
		return nil, nil, err
	}
	tm, err := s.Load()
	if err != nil {
		return nil, nil, err
	}
	return s, tm, nil
}
