package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tasktag/tasktag/internal/move"
)

var promoteTagFlag string

var promoteCmd = &cobra.Command{
	Use:   "promote <parentId.subtaskId>",
	Short: "Convert a subtask into a top-level task",
	Long: `Promote lifts a subtask out of its parent: it receives the next free
task id in the tag, dependencies on siblings are rewritten, and the former
parent is recorded on the new task. Bare subtasks cannot be moved or
relabeled; promotion is the way out.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		s, tm, err := loadStore()
		if err != nil {
			HandleFatalError("Failed to load the tag store", err)
		}
		tagName := promoteTagFlag
		if tagName == "" {
			tagName = CurrentTag()
		}
		res, err := move.PromoteSubtask(tm, tagName, args[0])
		if err != nil {
			HandleFatalError("Promotion failed", err)
		}
		renderMove(res)
		if err := s.Save(tm); err != nil {
			HandleFatalError("Failed to save the tag store", err)
		}
	},
}

func init() {
	promoteCmd.Flags().StringVarP(&promoteTagFlag, "tag", "t", "", "tag the subtask lives in (default: current tag)")
	rootCmd.AddCommand(promoteCmd)
}
