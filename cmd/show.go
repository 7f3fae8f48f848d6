package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tasktag/tasktag/types"
)

var showTagFlag string

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the tasks in a tag",
	Run: func(cmd *cobra.Command, args []string) {
		_, tm, err := loadStore()
		if err != nil {
			HandleFatalError("Failed to load the tag store", err)
		}
		tagName := showTagFlag
		if tagName == "" {
			tagName = CurrentTag()
		}
		tg, ok := tm[tagName]
		if !ok {
			HandleFatalError("Tag not found", types.NewTaskErrorf(types.CodeTagNotFound, "tag %q not found", tagName))
		}
		renderTasks(tagName, tg)
	},
}

func init() {
	showCmd.Flags().StringVarP(&showTagFlag, "tag", "t", "", "tag to show (default: current tag)")
	rootCmd.AddCommand(showCmd)
}
