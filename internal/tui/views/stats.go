package views

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/f3rmion/suiwen/internal/practice"
	"github.com/f3rmion/suiwen/internal/session"
	"github.com/f3rmion/suiwen/internal/stats"
)

// Stats view styles
var (
	statsTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	statsHeadingStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#4ecdc4"))

	statsLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a8dadc")).
			Width(12)

	statsNumberStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#ffe66d")).
				Bold(true)

	statsMasteredStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#a8e6cf"))

	statsLockedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// StatsModel shows learning progress and achievements. It holds no state of
// its own and reads the session and generator on every render.
type StatsModel struct {
	sess *session.Session
	gen  *practice.Generator

	width  int
	height int
}

// NewStatsModel creates the stats view.
func NewStatsModel(sess *session.Session, gen *practice.Generator) StatsModel {
	return StatsModel{sess: sess, gen: gen}
}

// SetSize updates the view dimensions.
func (m *StatsModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Report returns the current summary.
func (m StatsModel) Report() stats.Report {
	return stats.Build(m.sess, m.gen)
}

// Update handles messages.
func (m StatsModel) Update(msg tea.Msg) (StatsModel, tea.Cmd) {
	return m, nil
}

// View renders the stats view.
func (m StatsModel) View() string {
	r := m.Report()
	var b strings.Builder

	row := func(label, value string) {
		b.WriteString(statsLabelStyle.Render(label) + statsNumberStyle.Render(value) + "\n")
	}

	b.WriteString(statsTitleStyle.Render("学习统计"))
	b.WriteString("\n")

	b.WriteString(statsHeadingStyle.Render("学习总览") + "\n")
	row("总学习字数", fmt.Sprint(r.Progress.Total))
	row("已掌握字数", fmt.Sprint(r.Progress.Mastered))
	b.WriteString(ProgressBar(r.Progress.Mastered, r.Progress.Total, max(min(m.width-4, 40), 10)) + "\n\n")

	b.WriteString(statsHeadingStyle.Render("练习统计") + "\n")
	row("总练习次数", fmt.Sprint(r.Answered))
	row("正确率", fmt.Sprintf("%.0f%%", r.Accuracy*100))
	b.WriteString("\n")

	b.WriteString(statsHeadingStyle.Render("难度分布") + "\n")
	for _, l := range r.Levels {
		row(l.Label, fmt.Sprintf("%d 字", len(l.Chars)))
		if len(l.Chars) > 0 {
			b.WriteString("  " + m.renderChars(l.Chars) + "\n")
		}
	}
	b.WriteString("\n")

	b.WriteString(statsHeadingStyle.Render("学习成就") + "\n")
	for _, a := range r.Achievements {
		if a.Unlocked {
			b.WriteString(statsMasteredStyle.Render("★ "+a.Name) + "  " + a.Detail + "\n")
		} else {
			b.WriteString(statsLockedStyle.Render("☆ "+a.Name+"  "+a.Detail) + "\n")
		}
	}

	return b.String()
}

func (m StatsModel) renderChars(chars []string) string {
	out := make([]string, len(chars))
	for i, c := range chars {
		if m.sess.IsMastered(c) {
			out[i] = statsMasteredStyle.Render(c + "✓")
		} else {
			out[i] = c
		}
	}
	return strings.Join(out, " ")
}

// ProgressBar draws done/total as a bar width cells wide.
func ProgressBar(done, total, width int) string {
	if total == 0 || width <= 0 {
		return ""
	}
	filled := min(done, total) * width / total
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
