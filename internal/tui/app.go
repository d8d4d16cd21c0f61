package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/f3rmion/suiwen/internal/config"
	"github.com/f3rmion/suiwen/internal/detail"
	"github.com/f3rmion/suiwen/internal/dict"
	"github.com/f3rmion/suiwen/internal/fileio"
	"github.com/f3rmion/suiwen/internal/practice"
	"github.com/f3rmion/suiwen/internal/session"
	"github.com/f3rmion/suiwen/internal/speech"
	"github.com/f3rmion/suiwen/internal/stroke"
	"github.com/f3rmion/suiwen/internal/tui/bigchar"
	"github.com/f3rmion/suiwen/internal/tui/views"
	"go.uber.org/zap"
)

// ViewType represents the current active view
type ViewType int

const (
	ViewReader ViewType = iota
	ViewPractice
	ViewVocab
	ViewFilePicker
	ViewStats
)

// MenuItem represents a sidebar menu entry
type MenuItem struct {
	Label    string
	Icon     string
	View     ViewType
	Shortcut string
}

// ViewSwitchMsg requests a view change
type ViewSwitchMsg struct {
	View ViewType
}

// TextLoadedMsg is sent when an imported file has been read
type TextLoadedMsg struct {
	Path string
	Text string
	Err  error
}

// Options holds the dependencies of the app. Only Dict is required.
type Options struct {
	Dict     *dict.Dictionary
	Config   *config.Config
	Player   *speech.Player
	Session  *session.Session
	Renderer *bigchar.Renderer
	Log      *zap.Logger
}

// AppModel is the main TUI model
type AppModel struct {
	// Core dependencies
	sess      *session.Session
	presenter *detail.Presenter
	gen       *practice.Generator
	log       *zap.Logger

	// Layout state
	width        int
	height       int
	sidebarWidth int
	ready        bool

	// Navigation
	currentView   ViewType
	menuItems     []MenuItem
	selectedMenu  int
	sidebarActive bool

	// Sub-models (views)
	readerView     views.ReaderModel
	practiceView   views.PracticeModel
	vocabView      views.VocabModel
	filePickerView views.FilePickerModel
	statsView      views.StatsModel

	// Last import error
	importErr error

	// Help overlay
	showHelp bool
}

// NewApp creates the TUI application
func NewApp(opts Options) AppModel {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	sess := opts.Session
	if sess == nil {
		var sopts []session.Option
		if cfg.Reader.DefaultText != "" {
			sopts = append(sopts, session.WithText(cfg.Reader.DefaultText))
		}
		sess = session.New(opts.Dict, sopts...)
	}

	presenter := detail.NewPresenter(opts.Dict, opts.Player, stroke.Animator{})
	style := stroke.DefaultStyle()
	if cfg.Stroke.StrokeColor != "" {
		style.StrokeColor = cfg.Stroke.StrokeColor
	}
	if cfg.Stroke.RadicalColor != "" {
		style.RadicalColor = cfg.Stroke.RadicalColor
	}
	if cfg.Stroke.Delay > 0 {
		style.DelayBetweenStrokes = cfg.Stroke.Delay
	}
	presenter.SetStyle(style)

	gen := practice.NewGenerator(opts.Dict)

	menuItems := []MenuItem{
		{Label: "阅读", Icon: "读", View: ViewReader, Shortcut: "1"},
		{Label: "练习", Icon: "练", View: ViewPractice, Shortcut: "2"},
		{Label: "生字本", Icon: "本", View: ViewVocab, Shortcut: "3"},
		{Label: "打开文件", Icon: "开", View: ViewFilePicker, Shortcut: "4"},
		{Label: "统计", Icon: "统", View: ViewStats, Shortcut: "5"},
	}

	return AppModel{
		sess:         sess,
		presenter:    presenter,
		gen:          gen,
		log:          log,
		sidebarWidth: 18,
		currentView:  ViewReader,
		menuItems:    menuItems,

		readerView:     views.NewReaderModel(sess, presenter, opts.Renderer),
		practiceView:   views.NewPracticeModel(sess, gen, presenter),
		vocabView:      views.NewVocabModel(sess, presenter, cfg.Reader.FileDir, gen.History),
		filePickerView: views.NewFilePickerModel(cfg.Reader.FileDir, fileio.ImportExtensions),
		statsView:      views.NewStatsModel(sess, gen),
	}
}

// Session returns the reading session driven by the app.
func (m AppModel) Session() *session.Session {
	return m.sess
}

// Practice returns the practice generator driven by the app.
func (m AppModel) Practice() *practice.Generator {
	return m.gen
}

// Init initializes the model
func (m AppModel) Init() tea.Cmd {
	return textinput.Blink
}

// capturing reports whether the active view is reading text input, in which
// case global keys other than ctrl+c go to the view.
func (m AppModel) capturing() bool {
	if m.sidebarActive {
		return false
	}
	switch m.currentView {
	case ViewReader:
		return m.readerView.Capturing()
	case ViewPractice:
		return m.practiceView.Capturing()
	case ViewVocab:
		return m.vocabView.Capturing()
	}
	return false
}

func (m *AppModel) switchTo(v ViewType) {
	m.currentView = v
	for i, item := range m.menuItems {
		if item.View == v {
			m.selectedMenu = i
			break
		}
	}
	m.sidebarActive = false
}

// Update handles messages
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.presenter.Stop()
			return m, tea.Quit
		}

		// Help overlay - any key closes it
		if m.showHelp {
			m.showHelp = false
			return m, nil
		}

		if m.capturing() {
			break
		}

		// Global keys
		switch msg.String() {
		case "q":
			m.presenter.Stop()
			return m, tea.Quit
		case "?":
			m.showHelp = true
			return m, nil
		case "esc":
			// Esc goes back to sidebar or quits
			if m.sidebarActive {
				m.presenter.Stop()
				return m, tea.Quit
			}
			m.sidebarActive = true
			return m, nil
		case "1":
			m.switchTo(ViewReader)
			return m, nil
		case "2":
			m.switchTo(ViewPractice)
			return m, nil
		case "3":
			m.switchTo(ViewVocab)
			return m, nil
		case "4":
			m.switchTo(ViewFilePicker)
			return m, nil
		case "5":
			m.switchTo(ViewStats)
			return m, nil
		case "tab":
			m.sidebarActive = !m.sidebarActive
			return m, nil
		}

		// Sidebar navigation when active
		if m.sidebarActive {
			switch msg.String() {
			case "j", "down":
				if m.selectedMenu < len(m.menuItems)-1 {
					m.selectedMenu++
				}
				return m, nil
			case "k", "up":
				if m.selectedMenu > 0 {
					m.selectedMenu--
				}
				return m, nil
			case "enter", "l", "right":
				m.switchTo(m.menuItems[m.selectedMenu].View)
				return m, nil
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		contentWidth := m.width - m.sidebarWidth - 4
		contentHeight := m.height - 2

		m.readerView.SetSize(contentWidth, contentHeight)
		m.practiceView.SetSize(contentWidth, contentHeight)
		m.vocabView.SetSize(contentWidth, contentHeight)
		m.filePickerView.SetSize(contentWidth, contentHeight)
		m.statsView.SetSize(contentWidth, contentHeight)

		return m, nil

	case ViewSwitchMsg:
		m.switchTo(msg.View)
		return m, nil

	case views.FileSelectedMsg:
		return m, m.importFile(msg.Path)

	case TextLoadedMsg:
		m.importErr = msg.Err
		if msg.Err != nil {
			m.log.Warn("import failed", zap.String("path", msg.Path), zap.Error(msg.Err))
			return m, nil
		}
		m.log.Info("text imported", zap.String("path", msg.Path), zap.Int("runes", len([]rune(msg.Text))))
		m.readerView.SetText(msg.Text)
		m.switchTo(ViewReader)
		return m, nil

	case views.ExportedMsg:
		if msg.Err != nil {
			m.log.Warn("export failed", zap.Error(msg.Err))
		} else {
			m.log.Info("exported", zap.String("path", msg.Path))
		}
		var cmd tea.Cmd
		m.vocabView, cmd = m.vocabView.Update(msg)
		return m, cmd
	}

	// Delegate to active view if not in sidebar mode
	_, isKey := msg.(tea.KeyMsg)
	if isKey && m.sidebarActive {
		return m, nil
	}

	var cmd tea.Cmd
	switch m.currentView {
	case ViewReader:
		m.readerView, cmd = m.readerView.Update(msg)
	case ViewPractice:
		m.practiceView, cmd = m.practiceView.Update(msg)
	case ViewVocab:
		m.vocabView, cmd = m.vocabView.Update(msg)
	case ViewFilePicker:
		m.filePickerView, cmd = m.filePickerView.Update(msg)
	case ViewStats:
		m.statsView, cmd = m.statsView.Update(msg)
	}
	cmds = append(cmds, cmd)

	// Stroke animation ticks keep running while another view is shown.
	if !isKey && m.currentView != ViewReader {
		m.readerView, cmd = m.readerView.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// importFile reads a text file asynchronously
func (m AppModel) importFile(path string) tea.Cmd {
	return func() tea.Msg {
		text, err := fileio.Import(path)
		return TextLoadedMsg{Path: path, Text: text, Err: err}
	}
}

// View renders the UI
func (m AppModel) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	sidebar := m.renderSidebar()

	var content string
	switch m.currentView {
	case ViewReader:
		content = m.readerView.View()
	case ViewPractice:
		content = m.practiceView.View()
	case ViewVocab:
		content = m.vocabView.View()
	case ViewFilePicker:
		content = m.filePickerView.View()
		if m.importErr != nil {
			content += "\n" + ErrorStyle.Render("Import failed: "+m.importErr.Error())
		}
	case ViewStats:
		content = m.statsView.View()
	}

	contentWidth := m.width - m.sidebarWidth - 4
	mainContent := ContentStyle.
		Width(contentWidth).
		Height(m.height - 2).
		Render(content)

	return lipgloss.JoinHorizontal(lipgloss.Top, sidebar, mainContent)
}

// renderSidebar renders the sidebar navigation
func (m AppModel) renderSidebar() string {
	var items []string

	items = append(items, SidebarTitleStyle.Render(" 随文识字 "))
	items = append(items, "")

	for i, item := range m.menuItems {
		label := item.Shortcut + ". " + item.Icon + " " + item.Label

		var style lipgloss.Style
		if i == m.selectedMenu {
			if m.sidebarActive {
				style = SidebarItemActiveStyle
			} else {
				style = SidebarItemCurrentStyle
			}
		} else {
			style = SidebarItemStyle
		}

		items = append(items, style.Render(label))
	}

	p := m.sess.Progress()
	items = append(items, "",
		SidebarProgressStyle.Render(fmt.Sprintf("掌握 %d/%d", p.Mastered, p.Total)),
		SidebarProgressStyle.Render(views.ProgressBar(p.Mastered, p.Total, m.sidebarWidth-6)))

	usedHeight := len(items) + 4
	for i := 0; i < m.height-usedHeight-2; i++ {
		items = append(items, "")
	}

	items = append(items, SidebarHelpStyle.Render("? Help  q Quit"))

	content := lipgloss.JoinVertical(lipgloss.Left, items...)

	return SidebarStyle.
		Width(m.sidebarWidth).
		Height(m.height - 2).
		Render(content)
}

// renderHelp renders the help overlay
func (m AppModel) renderHelp() string {
	section := func(title string, rows ...[2]string) string {
		s := HelpSectionStyle.Render(title) + "\n"
		for _, r := range rows {
			s += HelpKeyStyle.Render(r[0]) + HelpDescStyle.Render(r[1]) + "\n"
		}
		return s
	}

	helpText := HelpTitleStyle.Render("随文识字") + "\n\n"
	helpText += section("Global Keys",
		[2]string{"1-5", "Switch views"},
		[2]string{"tab", "Toggle sidebar focus"},
		[2]string{"?", "Show this help"},
		[2]string{"q", "Quit"},
	)
	helpText += section("Reader",
		[2]string{"←/→", "Move between marked characters"},
		[2]string{"enter", "Select, read aloud, draw strokes"},
		[2]string{"s / r / w", "Read once / repeat / slowly"},
		[2]string{"x", "Stop reading"},
		[2]string{"m / v", "Toggle mastered / notebook"},
		[2]string{"y / Y", "Copy character / whole text"},
		[2]string{"e", "Edit text"},
		[2]string{"/", "Find a character"},
	)
	helpText += section("Practice",
		[2]string{"n", "Next question"},
		[2]string{"m", "Switch mode"},
		[2]string{"a-d", "Choose an option"},
		[2]string{"1-5", "Tone mark while typing pinyin"},
	)
	helpText += section("Notebook",
		[2]string{"/", "Filter"},
		[2]string{"x", "Remove"},
		[2]string{"A / E", "Export Anki deck / learning data"},
	)
	helpText += section("Open File",
		[2]string{"enter", "Open .txt .docx .xlsx / enter dir"},
		[2]string{"backspace", "Go to parent dir"},
	)

	helpText += "\n" + HelpFooterStyle.Render("Press any key to close")

	helpBox := HelpBoxStyle.Render(helpText)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, helpBox)
}
