package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tasktag/tasktag/internal/move"
)

var removeTagFlag string

var removeCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a task or subtask",
	Long: `Remove destroys a task (or a subtask, addressed as parent.sub). The
removal cascades: any other task that depended on the removed id loses that
dependency entry, and each dropped edge is reported.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		s, tm, err := loadStore()
		if err != nil {
			HandleFatalError("Failed to load the tag store", err)
		}
		tagName := removeTagFlag
		if tagName == "" {
			tagName = CurrentTag()
		}
		res, err := move.RemoveTask(tm, tagName, args[0])
		if err != nil {
			HandleFatalError("Removal failed", err)
		}
		renderMove(res)
		if err := s.Save(tm); err != nil {
			HandleFatalError("Failed to save the tag store", err)
		}
	},
}

func init() {
	removeCmd.Flags().StringVarP(&removeTagFlag, "tag", "t", "", "tag the task lives in (default: current tag)")
	rootCmd.AddCommand(removeCmd)
}
