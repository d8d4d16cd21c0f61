package views

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/f3rmion/suiwen/internal/anki"
	"github.com/f3rmion/suiwen/internal/detail"
	"github.com/f3rmion/suiwen/internal/fileio"
	"github.com/f3rmion/suiwen/internal/hanzi"
	"github.com/f3rmion/suiwen/internal/session"
)

// Vocab view styles
var (
	vocabTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	vocabCharStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffe66d")).
			Bold(true)

	vocabPinyinStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#4ecdc4")).
				Width(8)

	vocabMeaningStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#f1faee"))

	vocabSelectedStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("#2d3436"))

	vocabMutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	vocabStatusStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#a8e6cf")).
				Italic(true)

	vocabErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff6b6b")).
			Bold(true)
)

// ExportedMsg reports the result of a notebook export.
type ExportedMsg struct {
	Path string
	Err  error
}

// VocabModel lists the vocabulary notebook.
type VocabModel struct {
	sess      *session.Session
	presenter *detail.Presenter
	history   func() []hanzi.PracticeRecord

	filter   textinput.Model
	selected int
	offset   int

	exportDir string
	status    string
	err       error

	width  int
	height int
}

// NewVocabModel creates the notebook view. Exports are written to exportDir;
// history supplies the practice records saved with the learning data.
func NewVocabModel(sess *session.Session, presenter *detail.Presenter, exportDir string, history func() []hanzi.PracticeRecord) VocabModel {
	ti := textinput.New()
	ti.Placeholder = "筛选：汉字、拼音或释义"
	ti.Prompt = "/ "
	ti.Width = 30

	return VocabModel{
		sess:      sess,
		presenter: presenter,
		history:   history,
		filter:    ti,
		exportDir: exportDir,
	}
}

// SetSize updates the view dimensions.
func (m *VocabModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Capturing reports whether keys go to the filter field.
func (m VocabModel) Capturing() bool {
	return m.filter.Focused()
}

func (m VocabModel) items() []hanzi.VocabItem {
	return m.sess.FilterVocab(m.filter.Value())
}

// Update handles messages.
func (m VocabModel) Update(msg tea.Msg) (VocabModel, tea.Cmd) {
	switch msg := msg.(type) {
	case ExportedMsg:
		m.err = msg.Err
		if msg.Err == nil {
			m.status = "已导出到 " + msg.Path
		}
		return m, nil

	case tea.KeyMsg:
		if m.filter.Focused() {
			switch msg.String() {
			case "esc", "enter":
				m.filter.Blur()
				return m, nil
			}
			var cmd tea.Cmd
			m.filter, cmd = m.filter.Update(msg)
			m.selected = 0
			m.offset = 0
			return m, cmd
		}

		items := m.items()
		switch msg.String() {
		case "/":
			return m, m.filter.Focus()
		case "j", "down":
			if m.selected < len(items)-1 {
				m.selected++
				m.adjustScroll()
			}
		case "k", "up":
			if m.selected > 0 {
				m.selected--
				m.adjustScroll()
			}
		case "s", "enter":
			if m.selected < len(items) {
				m.presenter.SpeakOnce(items[m.selected].Char)
			}
		case "x", "d":
			if m.selected < len(items) {
				char := items[m.selected].Char
				m.sess.RemoveFromVocab(char)
				m.status = char + " 已从生字本移除"
				if m.selected > 0 && m.selected >= len(items)-1 {
					m.selected--
				}
			}
		case "A":
			return m, m.exportAnki()
		case "E":
			return m, m.exportData()
		}
	}
	return m, nil
}

func (m *VocabModel) visibleHeight() int {
	return max(m.height-10, 5)
}

func (m *VocabModel) adjustScroll() {
	h := m.visibleHeight()
	if m.selected < m.offset {
		m.offset = m.selected
	}
	if m.selected >= m.offset+h {
		m.offset = m.selected - h + 1
	}
}

// exportAnki writes the notebook as an Anki deck.
func (m VocabModel) exportAnki() tea.Cmd {
	items := m.sess.Vocab()
	dir := m.exportDir
	return func() tea.Msg {
		if len(items) == 0 {
			return ExportedMsg{Err: fmt.Errorf("生字本为空")}
		}
		name := "生字本_" + time.Now().Format("2006-01-02") + ".apkg"
		path := filepath.Join(dir, name)
		err := anki.WriteVocabDeck(path, "随文识字::生字本", items)
		return ExportedMsg{Path: path, Err: err}
	}
}

// exportData writes the learning data JSON.
func (m VocabModel) exportData() tea.Cmd {
	snap := m.sess.Snapshot(m.history())
	dir := m.exportDir
	return func() tea.Msg {
		path := filepath.Join(dir, fileio.DataFileName(snap.ExportDate))
		f, err := os.Create(path)
		if err != nil {
			return ExportedMsg{Err: err}
		}
		if err := fileio.WriteSnapshot(f, snap); err != nil {
			f.Close()
			return ExportedMsg{Err: err}
		}
		return ExportedMsg{Path: path, Err: f.Close()}
	}
}

// View renders the notebook.
func (m VocabModel) View() string {
	var b strings.Builder

	items := m.items()
	b.WriteString(vocabTitleStyle.Render(fmt.Sprintf("生字本 (%d)", len(m.sess.Vocab()))))
	b.WriteString("\n")

	if m.filter.Focused() || m.filter.Value() != "" {
		b.WriteString(m.filter.View())
		b.WriteString("\n\n")
	}

	if len(items) == 0 {
		if m.filter.Value() != "" {
			b.WriteString(vocabMutedStyle.Render("没有匹配的生字"))
		} else {
			b.WriteString(vocabMutedStyle.Render("生字本是空的。在阅读页按 v 把选中的字加入生字本。"))
		}
		b.WriteString("\n")
	}

	end := min(m.offset+m.visibleHeight(), len(items))
	meaningWidth := max(m.width-24, 20)
	for i := m.offset; i < end; i++ {
		item := items[i]
		meaning := strings.SplitN(wordWrap(item.Meaning, meaningWidth), "\n", 2)[0]
		line := fmt.Sprintf("%s  %s %s  %s",
			vocabCharStyle.Render(item.Char),
			vocabPinyinStyle.Render(item.Pinyin),
			vocabMeaningStyle.Render(meaning),
			vocabMutedStyle.Render(item.AddedAt.Format("01-02")))
		if i == m.selected {
			b.WriteString("> " + vocabSelectedStyle.Render(line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	if m.err != nil {
		b.WriteString("\n" + vocabErrorStyle.Render("Error: "+m.err.Error()) + "\n")
	} else if m.status != "" {
		b.WriteString("\n" + vocabStatusStyle.Render(m.status) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(vocabMutedStyle.Render("j/k: 移动 • s: 朗读 • x: 移除 • /: 筛选 • A: 导出 Anki • E: 导出学习数据"))
	return b.String()
}
