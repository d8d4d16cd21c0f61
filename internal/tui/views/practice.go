package views

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/f3rmion/suiwen/internal/detail"
	"github.com/f3rmion/suiwen/internal/hanzi"
	"github.com/f3rmion/suiwen/internal/pinyin"
	"github.com/f3rmion/suiwen/internal/practice"
	"github.com/f3rmion/suiwen/internal/session"
)

// Practice view styles
var (
	practiceBigCharStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#ffe66d")).
				Background(lipgloss.Color("#1a1a2e")).
				Padding(1, 6).
				Align(lipgloss.Center)

	practiceModeStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#4ecdc4")).
				Bold(true)

	practiceModeActiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#1a1a2e")).
				Background(lipgloss.Color("#4ecdc4")).
				Bold(true).
				Padding(0, 1)

	practiceOptionStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#f1faee")).
				Padding(0, 2)

	practiceOptionActiveStyle = lipgloss.NewStyle().
					Foreground(lipgloss.Color("#ffe66d")).
					Background(lipgloss.Color("#2d3436")).
					Bold(true).
					Padding(0, 2)

	practiceCorrectStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#a8e6cf")).
				Bold(true)

	practiceWrongStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#ff6b6b")).
				Bold(true)

	practiceScoreStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#888888"))

	practiceCardStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("#3d5a80")).
				Padding(1, 3)
)

var practiceModes = []hanzi.PracticeMode{hanzi.ModeQuiz, hanzi.ModeWrite, hanzi.ModeListen}

type feedback struct {
	correct  bool
	expected string
	answer   string
}

// PracticeModel quizzes the reader on the characters of the current text.
type PracticeModel struct {
	sess      *session.Session
	gen       *practice.Generator
	presenter *detail.Presenter

	mode     hanzi.PracticeMode
	question *practice.Question
	option   int
	input    textinput.Model
	result   *feedback
	err      error

	width  int
	height int
}

// NewPracticeModel creates the practice view.
func NewPracticeModel(sess *session.Session, gen *practice.Generator, presenter *detail.Presenter) PracticeModel {
	ti := textinput.New()
	ti.CharLimit = 32
	ti.Width = 24

	return PracticeModel{
		sess:      sess,
		gen:       gen,
		presenter: presenter,
		mode:      hanzi.ModeQuiz,
		input:     ti,
	}
}

// SetSize updates the view dimensions.
func (m *PracticeModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Capturing reports whether keys go to the answer field.
func (m PracticeModel) Capturing() bool {
	return m.input.Focused()
}

// Mode returns the selected practice mode.
func (m PracticeModel) Mode() hanzi.PracticeMode {
	return m.mode
}

// Update handles messages.
func (m PracticeModel) Update(msg tea.Msg) (PracticeModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.input.Focused() {
		return m.updateInput(key)
	}

	switch key.String() {
	case "m":
		m.mode = nextMode(m.mode)
		m.question = nil
		m.result = nil
		return m, nil
	case "n", "enter":
		if key.String() == "enter" && m.question != nil && m.result == nil && len(m.question.Options) > 0 {
			return m.submit(m.question.Options[m.option])
		}
		return m.next()
	case "up", "k":
		if m.option > 0 {
			m.option--
		}
	case "down", "j":
		if m.question != nil && m.option < len(m.question.Options)-1 {
			m.option++
		}
	case "a", "b", "c", "d":
		if m.question != nil && m.result == nil && len(m.question.Options) > 0 {
			i := int(key.String()[0] - 'a')
			if i < len(m.question.Options) {
				return m.submit(m.question.Options[i])
			}
		}
	case "p":
		if m.question != nil {
			m.presenter.SpeakOnce(m.question.Char)
		}
	case "i":
		if m.question != nil && m.mode == hanzi.ModeWrite && m.result == nil {
			return m, m.input.Focus()
		}
	case "R":
		m.gen.Reset()
		m.question = nil
		m.result = nil
	}
	return m, nil
}

func nextMode(mode hanzi.PracticeMode) hanzi.PracticeMode {
	for i, pm := range practiceModes {
		if pm == mode {
			return practiceModes[(i+1)%len(practiceModes)]
		}
	}
	return hanzi.ModeQuiz
}

// next asks a new question in the current mode.
func (m PracticeModel) next() (PracticeModel, tea.Cmd) {
	q, err := m.gen.NextQuestion(m.sess.Glyphs(), m.mode)
	m.result = nil
	m.option = 0
	if err != nil {
		m.question = nil
		m.err = err
		return m, nil
	}
	m.err = nil
	m.question = &q

	if m.mode == hanzi.ModeListen {
		m.presenter.SpeakOnce(q.Char)
	}
	if m.mode == hanzi.ModeWrite {
		m.input.SetValue("")
		return m, m.input.Focus()
	}
	return m, nil
}

// updateInput edits the pinyin answer. A digit 1-5 marks the syllable before
// the cursor with that tone.
func (m PracticeModel) updateInput(key tea.KeyMsg) (PracticeModel, tea.Cmd) {
	switch key.String() {
	case "esc":
		m.input.Blur()
		return m, nil
	case "enter":
		m.input.Blur()
		return m.submit(pinyin.FromNumbered(m.input.Value()))
	case "1", "2", "3", "4", "5":
		tone := pinyin.Tone(key.String()[0] - '0')
		if out, ok := pinyin.ApplyTone(m.input.Value(), m.input.Position(), tone); ok {
			pos := m.input.Position()
			m.input.SetValue(out)
			m.input.SetCursor(pos)
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(key)
	return m, cmd
}

func (m PracticeModel) submit(answer string) (PracticeModel, tea.Cmd) {
	if m.question == nil {
		return m, nil
	}
	q := *m.question
	expected := m.gen.Expected(q)
	correct := m.gen.Answer(q, strings.TrimSpace(answer))
	m.result = &feedback{correct: correct, expected: expected, answer: answer}
	if !correct {
		m.presenter.SpeakOnce(q.Char)
	}
	return m, nil
}

// View renders the practice view.
func (m PracticeModel) View() string {
	var b strings.Builder

	var tabs []string
	for _, pm := range practiceModes {
		if pm == m.mode {
			tabs = append(tabs, practiceModeActiveStyle.Render(pm.Label()))
		} else {
			tabs = append(tabs, practiceModeStyle.Render(pm.Label()))
		}
	}
	b.WriteString(strings.Join(tabs, "  "))
	b.WriteString("\n\n")

	right, total := m.gen.Score()
	b.WriteString(practiceScoreStyle.Render(fmt.Sprintf("得分 %d/%d · 正确率 %.0f%%", right, total, m.gen.Accuracy()*100)))
	b.WriteString("\n\n")

	switch {
	case errors.Is(m.err, practice.ErrNoQuestion):
		b.WriteString(practiceWrongStyle.Render("当前文本中没有可练习的汉字"))
		b.WriteString("\n")
	case m.err != nil:
		b.WriteString(practiceWrongStyle.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
	case m.question == nil:
		b.WriteString(practiceScoreStyle.Render("按 n 开始练习"))
		b.WriteString("\n")
	default:
		b.WriteString(practiceCardStyle.Render(m.renderQuestion()))
		b.WriteString("\n")
	}

	if m.result != nil {
		b.WriteString("\n")
		if m.result.correct {
			b.WriteString(practiceCorrectStyle.Render("✓ 回答正确"))
		} else {
			b.WriteString(practiceWrongStyle.Render(fmt.Sprintf("✗ 回答错误，正确答案：%s", m.result.expected)))
		}
		b.WriteString("\n")
	}

	if history := m.gen.History(); len(history) > 0 {
		b.WriteString("\n")
		b.WriteString(practiceScoreStyle.Render("最近练习"))
		b.WriteString("\n")
		for _, rec := range history {
			mark := practiceCorrectStyle.Render("✓")
			if !rec.Correct {
				mark = practiceWrongStyle.Render("✗")
			}
			b.WriteString(fmt.Sprintf("  %s %s  %s  %s\n", mark, rec.Char, rec.Answer,
				practiceScoreStyle.Render(rec.Timestamp.Format("15:04:05"))))
		}
	}

	b.WriteString("\n")
	b.WriteString(practiceScoreStyle.Render(m.help()))
	return b.String()
}

func (m PracticeModel) renderQuestion() string {
	q := m.question
	var lines []string

	switch q.Mode {
	case hanzi.ModeQuiz:
		if e := m.sess.Dictionary().Lookup(q.Char); e != nil {
			lines = append(lines, practiceBigCharStyle.Render(e.Pinyin), practiceScoreStyle.Render(truncate(e.Meaning, 40)))
		}
		lines = append(lines, "", "请选择正确的汉字：")
	case hanzi.ModeListen:
		lines = append(lines, practiceBigCharStyle.Render("🔊"), "", "听读音，选出正确的汉字：")
	case hanzi.ModeWrite:
		e := m.sess.Dictionary().Lookup(q.Char)
		lines = append(lines, practiceBigCharStyle.Render(q.Char), "")
		if e != nil {
			lines = append(lines, practiceScoreStyle.Render(truncate(e.Meaning, 40)))
		}
		lines = append(lines, "输入拼音（数字标调，如 xue2）：", m.input.View())
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for i, opt := range q.Options {
		label := fmt.Sprintf("%c. %s", 'A'+i, opt)
		if i == m.option {
			lines = append(lines, practiceOptionActiveStyle.Render(label))
		} else {
			lines = append(lines, practiceOptionStyle.Render(label))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m PracticeModel) help() string {
	if m.input.Focused() {
		return "enter: 提交 • 1-5: 标调 • esc: 取消"
	}
	return "n: 下一题 • m: 切换模式 • a-d/enter: 作答 • p: 播放读音 • i: 输入 • R: 重置"
}
