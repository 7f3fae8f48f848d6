package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tasktag/tasktag/internal/move"
)

var (
	moveTagFlag     string
	moveFromFlag    string
	moveToFlag      string
	moveFromTagFlag string
	moveToTagFlag   string
	moveIDsFlag     string
	moveWithDeps    bool
	moveIgnoreDeps  bool
)

var moveCmd = &cobra.Command{
	Use:   "move",
	Short: "Move or reorder tasks",
	Long: `Move relabels task ids within a tag, or relocates tasks to another tag.

Within a tag, --from/--to accept single ids or comma-separated lists of
equal length; when the destination id exists the two tasks swap ids, and
every dependency reference follows. Batch moves apply pair by pair: a
failing pair is reported and the rest still run.

Across tags (--from-tag/--to-tag/--ids), dependency edges that would span
the two partitions abort the move unless --with-dependencies moves the
dependency closure along, or --ignore-dependencies severs the edges.`,
	Run: func(cmd *cobra.Command, args []string) {
		crossTag := moveFromTagFlag != "" || moveToTagFlag != ""
		if crossTag {
			runCrossTagMove()
			return
		}
		runWithinTagMove()
	},
}

func runWithinTagMove() {
	if moveFromFlag == "" || moveToFlag == "" {
		HandleFatalError("Both --from and --to are required for a within-tag move", nil)
	}

	s, tm, err := loadStore()
	if err != nil {
		HandleFatalError("Failed to load the tag store", err)
	}

	tagName := moveTagFlag
	if tagName == "" {
		tagName = CurrentTag()
	}

	fromIDs := splitIDList(moveFromFlag)
	toIDs := splitIDList(moveToFlag)

	if len(fromIDs) == 1 && len(toIDs) == 1 {
		res, err := move.WithinTag(tm, tagName, fromIDs[0], toIDs[0])
		if err != nil {
			HandleFatalError("Move failed", err)
		}
		renderMove(res)
	} else {
		res := move.Batch(tm, tagName, fromIDs, toIDs)
		for _, id := range res.Moved {
			fmt.Println(okStyle().Render("Moved: " + id))
		}
		for _, tip := range res.Tips {
			fmt.Println(warnStyle().Render("  tip: " + tip))
		}
		for _, f := range res.Failures {
			PrintError(fmt.Sprintf("Failed to move %s -> %s", f.From, f.To), f.Err)
		}
		if len(res.Moved) == 0 {
			return
		}
	}

	if err := s.Save(tm); err != nil {
		HandleFatalError("Failed to save the tag store", err)
	}
}

func runCrossTagMove() {
	if moveFromTagFlag == "" || moveToTagFlag == "" || moveIDsFlag == "" {
		HandleFatalError("Cross-tag moves require --from-tag, --to-tag and --ids", nil)
	}

	s, tm, err := loadStore()
	if err != nil {
		HandleFatalError("Failed to load the tag store", err)
	}

	res, err := move.CrossTag(tm, moveFromTagFlag, moveToTagFlag, splitIDList(moveIDsFlag), move.CrossTagOptions{
		WithDependencies:   moveWithDeps,
		IgnoreDependencies: moveIgnoreDeps,
	})
	if err != nil {
		HandleFatalError("Cross-tag move failed", err)
	}
	renderMove(res)

	if err := s.Save(tm); err != nil {
		HandleFatalError("Failed to save the tag store", err)
	}
}

func splitIDList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func init() {
	moveCmd.Flags().StringVarP(&moveTagFlag, "tag", "t", "", "tag to move within (default: current tag)")
	moveCmd.Flags().StringVar(&moveFromFlag, "from", "", "source task id(s), comma-separated for batches")
	moveCmd.Flags().StringVar(&moveToFlag, "to", "", "destination task id(s), matching --from")
	moveCmd.Flags().StringVar(&moveFromTagFlag, "from-tag", "", "source tag for a cross-tag move")
	moveCmd.Flags().StringVar(&moveToTagFlag, "to-tag", "", "destination tag for a cross-tag move")
	moveCmd.Flags().StringVar(&moveIDsFlag, "ids", "", "task ids to move across tags, comma-separated")
	moveCmd.Flags().BoolVar(&moveWithDeps, "with-dependencies", false, "move the dependency closure along")
	moveCmd.Flags().BoolVar(&moveIgnoreDeps, "ignore-dependencies", false, "sever cross-tag dependency edges")
	rootCmd.AddCommand(moveCmd)
}
