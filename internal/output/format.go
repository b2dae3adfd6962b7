// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"tasksession/internal/priority"
	"tasksession/internal/service"
)

// FormatTask formats a task line.
// Format: "{ID:>4}  {LEVEL:<6} {SCORE:.2f}  {TITLE}\n", followed by
// "{10 spaces}{DESCRIPTION}\n" when the task has a description.
func FormatTask(w io.Writer, task service.Task) {
	level := priority.Classify(task.PriorityScore)
	fmt.Fprintf(w, "%4d  %-6s %.2f  %s\n", task.ID, level, task.PriorityScore, normalizeTitle(task.Title))
	if task.HasDescription() && strings.TrimSpace(*task.Description) != "" {
		fmt.Fprintf(w, "%s%s\n", strings.Repeat(" ", descriptionIndent), flatten(*task.Description))
	}
}

// FormatTasks formats every task, or "no tasks found" when there are none
// and quiet is false.
func FormatTasks(w io.Writer, tasks []service.Task, quiet bool) {
	if len(tasks) == 0 {
		if !quiet {
			fmt.Fprintln(w, "no tasks found")
		}
		return
	}
	for _, task := range tasks {
		FormatTask(w, task)
	}
}

// descriptionIndent lines descriptions up under the level column.
const descriptionIndent = 6

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = flatten(title)
	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}

func flatten(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.ReplaceAll(s, "\n", " ")
}
