package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tasktag/tasktag/internal/graph"
)

var (
	fixTagFlag string
	fixDryRun  bool
)

var fixCmd = &cobra.Command{
	Use:   "fix",
	Short: "Repair dependency graph violations",
	Long: `Fix drops dangling and self-referential dependency edges and breaks
dependency cycles, then reports every edit. Tasks are never deleted, only
dependency edges. Use --dry-run to preview without saving.`,
	Run: func(cmd *cobra.Command, args []string) {
		s, tm, err := loadStore()
		if err != nil {
			HandleFatalError("Failed to load the tag store", err)
		}

		tagName := fixTagFlag
		if tagName == "" {
			tagName = CurrentTag()
		}

		out, err := graph.FixDependencies(tm, tagName)
		if err != nil {
			HandleFatalError("Fix failed", err)
		}
		renderFix(tagName, out)

		if fixDryRun || !out.Changed() {
			return
		}
		if err := s.Save(tm); err != nil {
			HandleFatalError("Failed to save the tag store", err)
		}
	},
}

func init() {
	fixCmd.Flags().StringVarP(&fixTagFlag, "tag", "t", "", "tag to repair (default: current tag)")
	fixCmd.Flags().BoolVar(&fixDryRun, "dry-run", false, "report changes without saving")
	rootCmd.AddCommand(fixCmd)
}
