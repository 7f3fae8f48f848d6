package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/tasktag/tasktag/store"
)

var (
	tagDescription string
	tagCopyFrom    string
	tagDeleteYes   bool
)

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "Manage tag partitions",
	Run: func(cmd *cobra.Command, args []string) {
		listTags()
	},
}

var tagsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tags with task counts",
	Run: func(cmd *cobra.Command, args []string) {
		listTags()
	},
}

func listTags() {
	_, tm, err := loadStore()
	if err != nil {
		HandleFatalError("Failed to load the tag store", err)
	}
	names := tm.TagNames()
	sort.Strings(names)
	current := CurrentTag()
	for _, name := range names {
		marker := " "
		if name == current {
			marker = "*"
		}
		tg := tm[name]
		line := fmt.Sprintf("%s %s (%d task(s))", marker, name, len(tg.Tasks))
		if tg.Metadata.Description != "" {
			line += " - " + tg.Metadata.Description
		}
		fmt.Println(line)
	}
}

var tagsAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a tag, optionally copying tasks from another",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		s, tm, err := loadStore()
		if err != nil {
			HandleFatalError("Failed to load the tag store", err)
		}
		res, err := store.CreateTag(tm, args[0], store.CreateTagOptions{
			CopyFromTag: tagCopyFrom,
			Description: tagDescription,
		})
		if err != nil {
			HandleFatalError("Failed to create tag", err)
		}
		if err := s.Save(tm); err != nil {
			HandleFatalError("Failed to save the tag store", err)
		}
		fmt.Println(okStyle().Render(res.Message))
	},
}

var tagsRenameCmd = &cobra.Command{
	Use:   "rename <old> <new>",
	Short: "Rename a tag",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		s, tm, err := loadStore()
		if err != nil {
			HandleFatalError("Failed to load the tag store", err)
		}
		res, err := store.RenameTag(tm, args[0], args[1])
		if err != nil {
			HandleFatalError("Failed to rename tag", err)
		}
		if err := s.Save(tm); err != nil {
			HandleFatalError("Failed to save the tag store", err)
		}
		fmt.Println(okStyle().Render(res.Message))
	},
}

var tagsCopyCmd = &cobra.Command{
	Use:   "copy <source> <target>",
	Short: "Deep-copy a tag under a new name",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		s, tm, err := loadStore()
		if err != nil {
			HandleFatalError("Failed to load the tag store", err)
		}
		res, err := store.CopyTag(tm, args[0], args[1], store.CopyTagOptions{Description: tagDescription})
		if err != nil {
			HandleFatalError("Failed to copy tag", err)
		}
		if err := s.Save(tm); err != nil {
			HandleFatalError("Failed to save the tag store", err)
		}
		fmt.Println(okStyle().Render(res.Message))
	},
}

var tagsDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a tag and every task it contains",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if !tagDeleteYes {
			HandleFatalError("Deleting a tag discards all of its tasks irreversibly; pass --yes to confirm", nil)
		}
		s, tm, err := loadStore()
		if err != nil {
			HandleFatalError("Failed to load the tag store", err)
		}
		res, err := store.DeleteTag(tm, args[0])
		if err != nil {
			HandleFatalError("Failed to delete tag", err)
		}
		if err := s.Save(tm); err != nil {
			HandleFatalError("Failed to save the tag store", err)
		}
		fmt.Println(okStyle().Render(res.Message))
	},
}

func init() {
	tagsAddCmd.Flags().StringVarP(&tagDescription, "description", "d", "", "tag description")
	tagsAddCmd.Flags().StringVar(&tagCopyFrom, "copy-from", "", "existing tag to copy tasks from")
	tagsCopyCmd.Flags().StringVarP(&tagDescription, "description", "d", "", "description for the copy")
	tagsDeleteCmd.Flags().BoolVarP(&tagDeleteYes, "yes", "y", false, "confirm the irreversible delete")

	tagsCmd.AddCommand(tagsListCmd, tagsAddCmd, tagsRenameCmd, tagsCopyCmd, tagsDeleteCmd)
	rootCmd.AddCommand(tagsCmd)
}
