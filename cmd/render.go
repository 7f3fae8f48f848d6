package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/tasktag/tasktag/internal/graph"
	"github.com/tasktag/tasktag/internal/move"
	"github.com/tasktag/tasktag/models"
)

// styledOutput reports whether stdout is a terminal; piping disables color.
func styledOutput() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func errorStyle() lipgloss.Style {
	if !styledOutput() {
		return lipgloss.NewStyle()
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
}

func warnStyle() lipgloss.Style {
	if !styledOutput() {
		return lipgloss.NewStyle()
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
}

func okStyle() lipgloss.Style {
	if !styledOutput() {
		return lipgloss.NewStyle()
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
}

func headerStyle() lipgloss.Style {
	if !styledOutput() {
		return lipgloss.NewStyle()
	}
	return lipgloss.NewStyle().Bold(true).Underline(true)
}

// renderValidation prints per-tag validation results, clean tags first.
func renderValidation(results map[string]graph.Result) {
	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		res := results[name]
		if res.Valid {
			fmt.Println(okStyle().Render(fmt.Sprintf("✓ %s: no violations", name)))
			continue
		}
		fmt.Println(headerStyle().Render(fmt.Sprintf("✗ %s: %d violation(s)", name, len(res.Violations))))
		for _, v := range res.Violations {
			fmt.Printf("  [%s] %s: %s\n", v.Kind, v.Path, v.Message)
		}
	}
}

// renderFix prints the fixer's change report.
func renderFix(tagName string, out *graph.FixOutcome) {
	if !out.Changed() {
		fmt.Println(okStyle().Render(fmt.Sprintf("✓ %s: nothing to fix", tagName)))
		return
	}
	fmt.Println(headerStyle().Render(fmt.Sprintf("%s: %d change(s)", tagName, len(out.Changes))))
	for _, c := range out.Changes {
		fmt.Printf("  %s %s: removed dependency %d (%s)\n", c.Type, c.Path, c.Removed, c.Reason)
	}
	for _, loop := range out.UnfixableCycles {
		ids := make([]string, len(loop))
		for i, id := range loop {
			ids[i] = fmt.Sprintf("%d", id)
		}
		fmt.Println(warnStyle().Render("  unfixable cycle: " + strings.Join(ids, " -> ")))
	}
}

// renderMove prints a move result with any tips.
func renderMove(res *move.Result) {
	fmt.Println(okStyle().Render("Moved: " + strings.Join(res.Moved, ", ")))
	for _, tip := range res.Tips {
		fmt.Println(warnStyle().Render("  tip: " + tip))
	}
}

// renderTasks prints a tag's tasks in id order.
func renderTasks(tagName string, tg *models.Tag) {
	fmt.Println(headerStyle().Render(fmt.Sprintf("%s (%d task(s))", tagName, len(tg.Tasks))))
	tasks := append([]models.Task(nil), tg.Tasks...)
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	for _, t := range tasks {
		deps := ""
		if len(t.Dependencies) > 0 {
			parts := make([]string, len(t.Dependencies))
			for i, d := range t.Dependencies {
				parts[i] = fmt.Sprintf("%d", d)
			}
			deps = " deps: " + strings.Join(parts, ",")
		}
		fmt.Printf("  %3d [%s/%s] %s%s\n", t.ID, t.Status, t.Priority, t.Title, deps)
		for _, st := range t.Subtasks {
			fmt.Printf("      %d.%d [%s] %s\n", t.ID, st.ID, st.Status, st.Title)
		}
	}
}
