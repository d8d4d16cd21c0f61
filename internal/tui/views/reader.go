package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/f3rmion/suiwen/internal/annotate"
	"github.com/f3rmion/suiwen/internal/clipboard"
	"github.com/f3rmion/suiwen/internal/detail"
	"github.com/f3rmion/suiwen/internal/hanzi"
	"github.com/f3rmion/suiwen/internal/session"
	"github.com/f3rmion/suiwen/internal/stroke"
	"github.com/f3rmion/suiwen/internal/tui/bigchar"
)

// Reader view styles
var (
	readerTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#FF6B6B")).
				MarginBottom(1)

	readerTextStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f1faee"))

	readerMarkedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#ffe66d")).
				Bold(true)

	readerMasteredStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#a8e6cf"))

	readerCursorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#1a1a2e")).
				Background(lipgloss.Color("#ffe66d")).
				Bold(true)

	readerSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#ff6b6b")).
				Bold(true).
				Underline(true)

	readerPanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("#3d5a80")).
				Padding(0, 2)

	readerGlyphStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#ffe66d")).
				Background(lipgloss.Color("#2d3436")).
				Padding(1, 4)

	readerPinyinStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#4ecdc4")).
				Bold(true)

	readerLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#a8dadc")).
				Bold(true).
				Width(8)

	readerValueStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#f1faee"))

	readerMutedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#666666"))

	readerStatusStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#a8e6cf")).
				Italic(true)

	readerHelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			MarginTop(1)
)

// strokeTickMsg advances the stroke animation of run gen.
type strokeTickMsg struct {
	gen int
}

func strokeTick(gen int, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return strokeTickMsg{gen: gen}
	})
}

type readerMode int

const (
	readerBrowse readerMode = iota
	readerEditing
	readerSearching
)

// ReaderModel shows the annotated text with a detail panel for the
// selected character.
type ReaderModel struct {
	sess      *session.Session
	presenter *detail.Presenter
	glyphs    *bigchar.Renderer
	clip      *clipboard.Copier

	mode   readerMode
	editor textarea.Model
	search textinput.Model

	// cursor indexes the marked tokens of the text.
	cursor int

	anim    *stroke.Animation
	animGen int

	status string
	width  int
	height int
}

// NewReaderModel creates the reader view. glyphs may be nil when no CJK font
// is available.
func NewReaderModel(sess *session.Session, presenter *detail.Presenter, glyphs *bigchar.Renderer) ReaderModel {
	ed := textarea.New()
	ed.Placeholder = "在这里输入或粘贴文本…"
	ed.ShowLineNumbers = false
	ed.CharLimit = 0

	ti := textinput.New()
	ti.Placeholder = "查找汉字"
	ti.CharLimit = 8
	ti.Width = 20

	return ReaderModel{
		sess:      sess,
		presenter: presenter,
		glyphs:    glyphs,
		clip:      clipboard.New(),
		editor:    ed,
		search:    ti,
	}
}

// SetSize updates the view dimensions.
func (m *ReaderModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.editor.SetWidth(max(width-4, 10))
	m.editor.SetHeight(max(height/3, 3))
}

// Capturing reports whether keys go to a text field.
func (m ReaderModel) Capturing() bool {
	return m.mode != readerBrowse
}

// SetText replaces the text being read.
func (m *ReaderModel) SetText(text string) {
	m.sess.SetText(text)
	m.cursor = 0
	m.anim = nil
	m.animGen++
}

// Status returns the last status line.
func (m ReaderModel) Status() string {
	return m.status
}

// cursorGlyph returns the marked glyph under the cursor.
func (m ReaderModel) cursorGlyph() (string, bool) {
	tokens := m.sess.Tokens()
	marks := markedIndexes(tokens)
	if len(marks) == 0 {
		return "", false
	}
	return tokens[marks[min(m.cursor, len(marks)-1)]].Glyph, true
}

// Update handles messages.
func (m ReaderModel) Update(msg tea.Msg) (ReaderModel, tea.Cmd) {
	switch msg := msg.(type) {
	case strokeTickMsg:
		return m.stepStroke(msg)
	case tea.KeyMsg:
		switch m.mode {
		case readerEditing:
			return m.updateEditor(msg)
		case readerSearching:
			return m.updateSearch(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m ReaderModel) updateBrowse(msg tea.KeyMsg) (ReaderModel, tea.Cmd) {
	marks := markedIndexes(m.sess.Tokens())

	switch msg.String() {
	case "right", "l":
		if m.cursor < len(marks)-1 {
			m.cursor++
		}
	case "left", "h":
		if m.cursor > 0 {
			m.cursor--
		}
	case "home":
		m.cursor = 0
	case "end":
		m.cursor = max(len(marks)-1, 0)
	case "enter", " ":
		if glyph, ok := m.cursorGlyph(); ok {
			return m.activate(glyph)
		}
	case "s":
		m.speak(detail.SpeakModeOnce)
	case "r":
		m.speak(detail.SpeakModeRepeat)
	case "w":
		m.speak(detail.SpeakModeSlow)
	case "x":
		m.presenter.Stop()
		m.status = "已停止朗读"
	case "t":
		m.presenter.SpeakText(m.sess.Text())
		m.status = "朗读全文"
	case "m":
		if glyph, ok := m.sess.Selected(); ok {
			if m.sess.ToggleMastered(glyph) {
				m.status = glyph + " 已标记为掌握"
			} else {
				m.status = glyph + " 取消掌握标记"
			}
		}
	case "v":
		if glyph, ok := m.sess.Selected(); ok {
			if m.sess.InVocab(glyph) {
				m.sess.RemoveFromVocab(glyph)
				m.status = glyph + " 已从生字本移除"
			} else {
				m.sess.AddToVocab(glyph)
				m.status = glyph + " 已加入生字本"
			}
		}
	case "a":
		if glyph, ok := m.sess.Selected(); ok {
			return m.startStrokes(glyph)
		}
	case "y":
		if e := m.sess.SelectedEntry(); e != nil {
			m.copy(fmt.Sprintf("%s %s %s", e.Character, e.Pinyin, e.Meaning), e.Character)
		}
	case "Y":
		m.copy(m.sess.Text(), "全文")
	case "e":
		m.mode = readerEditing
		m.editor.SetValue(m.sess.Text())
		return m, m.editor.Focus()
	case "/":
		m.mode = readerSearching
		m.search.SetValue("")
		return m, m.search.Focus()
	case "c":
		m.sess.ClearSelection()
		m.anim = nil
		m.animGen++
	}
	return m, nil
}

// activate dispatches a char event: select, read aloud and draw strokes.
func (m ReaderModel) activate(glyph string) (ReaderModel, tea.Cmd) {
	if _, ok := m.presenter.Dispatch(m.sess, annotate.Event{Kind: annotate.EventChar, Glyph: glyph}); !ok {
		return m, nil
	}
	m.status = ""
	return m.startStrokes(glyph)
}

func (m *ReaderModel) speak(mode detail.SpeechMode) {
	glyph, ok := m.sess.Selected()
	if !ok {
		glyph, ok = m.cursorGlyph()
	}
	if !ok {
		return
	}
	if _, ok := m.presenter.Speak(mode, glyph); ok {
		m.status = fmt.Sprintf("朗读 %s (%s)", glyph, mode)
	}
}

func (m *ReaderModel) copy(text, what string) {
	if err := m.clip.Write(text); err != nil {
		m.status = "复制失败: " + err.Error()
		return
	}
	m.status = what + " 已复制"
}

func (m ReaderModel) startStrokes(glyph string) (ReaderModel, tea.Cmd) {
	view, ok := m.presenter.Present(glyph)
	if !ok {
		return m, nil
	}
	m.animGen++
	m.anim = stroke.NewAnimation(glyph, view.Strokes)
	return m, strokeTick(m.animGen, view.Style.DelayBetweenStrokes)
}

func (m ReaderModel) stepStroke(msg strokeTickMsg) (ReaderModel, tea.Cmd) {
	if m.anim == nil || msg.gen != m.animGen {
		return m, nil
	}
	if _, _, ok := m.anim.Step(); !ok || m.anim.Done() {
		return m, nil
	}
	view, _ := m.presenter.Present(m.anim.Glyph)
	return m, strokeTick(m.animGen, view.Style.DelayBetweenStrokes)
}

func (m ReaderModel) updateEditor(msg tea.KeyMsg) (ReaderModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = readerBrowse
		m.editor.Blur()
		return m, nil
	case "ctrl+s":
		m.mode = readerBrowse
		m.editor.Blur()
		m.SetText(m.editor.Value())
		m.status = "文本已更新"
		return m, nil
	}
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

func (m ReaderModel) updateSearch(msg tea.KeyMsg) (ReaderModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = readerBrowse
		m.search.Blur()
		return m, nil
	case "enter":
		m.mode = readerBrowse
		m.search.Blur()
		query := m.search.Value()
		if _, ok := m.sess.Search(query); !ok {
			m.status = fmt.Sprintf("字典中没有 %q", strings.TrimSpace(query))
			return m, nil
		}
		glyph, _ := m.sess.Selected()
		m.status = "找到 " + glyph
		return m.startStrokes(glyph)
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

// View renders the reader.
func (m ReaderModel) View() string {
	var b strings.Builder

	p := m.sess.Progress()
	b.WriteString(readerTitleStyle.Render(fmt.Sprintf("随文识字  已掌握 %d/%d · 本文 %d 字 · 生字本 %d",
		p.Mastered, p.Total, p.InText, p.InVocab)))
	b.WriteString("\n")

	if m.mode == readerEditing {
		b.WriteString(m.editor.View())
		b.WriteString("\n")
		b.WriteString(readerHelpStyle.Render("ctrl+s: 确定 • esc: 取消"))
		return b.String()
	}

	textWidth := m.width - 4
	panel := m.renderDetail()
	if panel != "" && m.width >= 80 {
		textWidth = m.width - lipgloss.Width(panel) - 6
	}

	text := m.renderText(textWidth)
	if panel != "" {
		if m.width >= 80 {
			b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, text, "  ", panel))
		} else {
			b.WriteString(text + "\n\n" + panel)
		}
	} else {
		b.WriteString(text)
	}
	b.WriteString("\n")

	if m.mode == readerSearching {
		b.WriteString("\n" + m.search.View() + "\n")
	}
	if m.status != "" {
		b.WriteString("\n" + readerStatusStyle.Render(m.status) + "\n")
	}

	b.WriteString(readerHelpStyle.Render(
		"←/→: 移动 • enter: 选字 • s/r/w: 朗读/重复/慢读 • x: 停止 • a: 笔顺 • m: 掌握 • v: 生字本 • y: 复制 • e: 编辑 • /: 查找"))

	return b.String()
}

func (m ReaderModel) renderText(width int) string {
	tokens := m.sess.Tokens()
	marks := markedIndexes(tokens)
	cursorToken := -1
	if len(marks) > 0 {
		cursorToken = marks[min(m.cursor, len(marks)-1)]
	}
	selected, _ := m.sess.Selected()

	return wrapTokens(tokens, width, readerTextStyle, func(i int) lipgloss.Style {
		switch {
		case i == cursorToken:
			return readerCursorStyle
		case tokens[i].Glyph == selected:
			return readerSelectedStyle
		case m.sess.IsMastered(tokens[i].Glyph):
			return readerMasteredStyle
		}
		return readerMarkedStyle
	})
}

func (m ReaderModel) renderDetail() string {
	entry := m.sess.SelectedEntry()
	if entry == nil {
		return ""
	}

	var lines []string

	if art := m.glyphs.Render(entry.Character, 20, 10); art != "" {
		lines = append(lines, readerMarkedStyle.Render(art))
	} else {
		lines = append(lines, readerGlyphStyle.Render(entry.Character))
	}
	lines = append(lines, readerPinyinStyle.Render(entry.Pinyin)+"  "+readerMutedStyle.Render("🔊 s"))

	row := func(label, value string) {
		if value != "" {
			lines = append(lines, readerLabelStyle.Render(label)+readerValueStyle.Render(value))
		}
	}
	row("释义", truncate(entry.Meaning, 40))
	row("级别", entry.Level.Label()+" · "+entry.Difficulty.Label())
	row("部首", entry.Radical)
	row("结构", entry.Structure)
	row("笔画", fmt.Sprintf("%d", len(entry.Strokes)))
	lines = append(lines, m.renderStrokes(entry))
	if len(entry.Examples) > 0 {
		row("组词", strings.Join(entry.Examples, "  "))
	}
	row("例句", entry.Sentence)

	var flags []string
	if m.sess.IsMastered(entry.Character) {
		flags = append(flags, "✓ 已掌握")
	}
	if m.sess.InVocab(entry.Character) {
		flags = append(flags, "★ 生字本")
	}
	if len(flags) > 0 {
		lines = append(lines, readerStatusStyle.Render(strings.Join(flags, "  ")))
	}

	return readerPanelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// renderStrokes lists the stroke order, coloring the strokes the animation
// has drawn.
func (m ReaderModel) renderStrokes(entry *hanzi.DictionaryEntry) string {
	view, _ := m.presenter.Present(entry.Character)
	drawnStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(view.Style.StrokeColor)).Bold(true)

	drawn := len(entry.Strokes)
	progress := ""
	if m.anim != nil && m.anim.Glyph == entry.Character {
		drawn = m.anim.Current
		progress = " " + readerMutedStyle.Render(m.anim.Progress())
	}

	const perLine = 6
	var lines []string
	var parts []string
	for i, s := range entry.Strokes {
		if i < drawn {
			parts = append(parts, drawnStyle.Render(s))
		} else {
			parts = append(parts, readerMutedStyle.Render(s))
		}
		if len(parts) == perLine || i == len(entry.Strokes)-1 {
			lines = append(lines, strings.Join(parts, " "))
			parts = parts[:0]
		}
	}
	indent := strings.Repeat(" ", readerLabelStyle.GetWidth())
	return readerLabelStyle.Render("笔顺") + strings.Join(lines, "\n"+indent) + progress
}
