package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#50C878"))
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	noteStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#444444")).Padding(0, 1)
)

// Render 生成终端中显示的批量摘要
func Render(r *Report) string {
	lines := []string{
		titleStyle.Render(fmt.Sprintf("%s  %s", r.Project, r.Summary())),
	}
	if r.OutputDir != "" {
		lines = append(lines, noteStyle.Render(r.OutputDir))
	}
	if r.Err != "" {
		lines = append(lines, failStyle.Render("✗ "+r.Err))
	}

	for _, d := range r.Outcomes() {
		if d.Success {
			line := okStyle.Render("✓ " + d.Name)
			if d.Substitutions > 0 {
				line += noteStyle.Render(fmt.Sprintf("  (%d)", d.Substitutions))
			}
			lines = append(lines, line)
			continue
		}
		lines = append(lines, failStyle.Render("✗ "+d.Name)+noteStyle.Render("  "+d.Error))
	}

	if unresolved := r.Unresolved(); len(unresolved) > 0 {
		lines = append(lines, "", noteStyle.Render("未替换: "+strings.Join(unresolved, ", ")))
	}

	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
