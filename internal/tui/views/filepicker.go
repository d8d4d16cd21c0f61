package views

import (
	"cmp"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// FileSelectedMsg is sent when a file is chosen for import.
type FileSelectedMsg struct {
	Path string
}

// File picker styles
var (
	fpTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	fpPathStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			Italic(true)

	fpDirStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ecdc4")).
			Bold(true)

	fpFileStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f1faee"))

	fpKindStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a8dadc")).
			Width(6)

	fpSizeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			Width(9).
			Align(lipgloss.Right)

	fpCursorStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#2d3436"))

	fpHelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	fpErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff6b6b")).
			Bold(true)

	fpRuleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3d5a80"))
)

// fileKinds labels the importable formats.
var fileKinds = map[string]string{
	".txt":  "文本",
	".docx": "Word",
	".xlsx": "Excel",
}

// FileEntry is one row of the listing.
type FileEntry struct {
	Name  string
	Path  string
	IsDir bool
	Size  int64
}

// Kind returns the label of the entry's format.
func (e FileEntry) Kind() string {
	if e.IsDir {
		return "目录"
	}
	if k, ok := fileKinds[strings.ToLower(filepath.Ext(e.Name))]; ok {
		return k
	}
	return strings.TrimPrefix(filepath.Ext(e.Name), ".")
}

// FilePickerModel browses directories for a text to import.
type FilePickerModel struct {
	dir        string
	entries    []FileEntry
	cursor     int
	offset     int
	extensions []string
	showHidden bool
	err        error

	width  int
	height int
}

// NewFilePickerModel lists files with the given extensions, starting in
// startDir or the home directory when startDir is empty or missing.
func NewFilePickerModel(startDir string, extensions []string) FilePickerModel {
	if info, err := os.Stat(startDir); startDir == "" || err != nil || !info.IsDir() {
		startDir = homeDir()
	}

	m := FilePickerModel{dir: startDir, extensions: extensions}
	m.readDir()
	return m
}

func homeDir() string {
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return home
	}
	return string(filepath.Separator)
}

// Dir returns the directory being listed.
func (m FilePickerModel) Dir() string {
	return m.dir
}

// Entries returns the listing: the parent entry, directories, then files.
func (m FilePickerModel) Entries() []FileEntry {
	return m.entries
}

// SetSize updates the view dimensions.
func (m *FilePickerModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *FilePickerModel) chdir(dir string) {
	m.dir = dir
	m.readDir()
}

func (m *FilePickerModel) readDir() {
	m.entries = nil
	m.cursor, m.offset, m.err = 0, 0, nil

	dirents, err := os.ReadDir(m.dir)
	if err != nil {
		m.err = err
		return
	}

	if parent := filepath.Dir(m.dir); parent != m.dir {
		m.entries = append(m.entries, FileEntry{Name: "..", Path: parent, IsDir: true})
	}

	var listed []FileEntry
	for _, de := range dirents {
		name := de.Name()
		if !m.showHidden && strings.HasPrefix(name, ".") {
			continue
		}
		if !de.IsDir() && !m.importable(name) {
			continue
		}
		fe := FileEntry{Name: name, Path: filepath.Join(m.dir, name), IsDir: de.IsDir()}
		if info, err := de.Info(); err == nil && !fe.IsDir {
			fe.Size = info.Size()
		}
		listed = append(listed, fe)
	}

	slices.SortFunc(listed, func(a, b FileEntry) int {
		if a.IsDir != b.IsDir {
			if a.IsDir {
				return -1
			}
			return 1
		}
		return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	m.entries = append(m.entries, listed...)
}

func (m *FilePickerModel) importable(name string) bool {
	if len(m.extensions) == 0 {
		return true
	}
	ext := filepath.Ext(name)
	return slices.ContainsFunc(m.extensions, func(e string) bool {
		return strings.EqualFold(e, ext)
	})
}

// Update handles messages.
func (m FilePickerModel) Update(msg tea.Msg) (FilePickerModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	page := m.listHeight() / 2
	switch key.String() {
	case "j", "down":
		m.moveTo(m.cursor + 1)
	case "k", "up":
		m.moveTo(m.cursor - 1)
	case "ctrl+d", "pgdown":
		m.moveTo(m.cursor + page)
	case "ctrl+u", "pgup":
		m.moveTo(m.cursor - page)
	case "g", "home":
		m.moveTo(0)
	case "G", "end":
		m.moveTo(len(m.entries) - 1)
	case "enter", "l", "right":
		if m.cursor >= len(m.entries) {
			break
		}
		entry := m.entries[m.cursor]
		if entry.IsDir {
			m.chdir(entry.Path)
			break
		}
		return m, func() tea.Msg { return FileSelectedMsg{Path: entry.Path} }
	case "backspace", "h", "left":
		if parent := filepath.Dir(m.dir); parent != m.dir {
			m.chdir(parent)
		}
	case "~":
		m.chdir(homeDir())
	case ".":
		m.showHidden = !m.showHidden
		m.readDir()
	}
	return m, nil
}

// moveTo puts the cursor on row i, clamped, and scrolls it into view.
func (m *FilePickerModel) moveTo(i int) {
	m.cursor = max(min(i, len(m.entries)-1), 0)

	h := m.listHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
}

func (m FilePickerModel) listHeight() int {
	return max(m.height-9, 5)
}

// View renders the listing.
func (m FilePickerModel) View() string {
	var b strings.Builder

	formats := "*"
	if len(m.extensions) > 0 {
		formats = strings.Join(m.extensions, " ")
	}
	b.WriteString(fpTitleStyle.Render("打开文件 (" + formats + ")"))
	b.WriteString("\n")
	b.WriteString(fpPathStyle.Render(m.dir))
	b.WriteString("\n")

	rule := fpRuleStyle.Render(strings.Repeat("─", max(min(m.width-4, 60), 0)))
	b.WriteString(rule + "\n")

	if m.err != nil {
		b.WriteString(fpErrorStyle.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
	} else if len(m.entries) <= 1 {
		b.WriteString(fpHelpStyle.Render("  这里没有可导入的文件"))
		b.WriteString("\n")
	}

	end := min(m.offset+m.listHeight(), len(m.entries))
	for i := m.offset; i < end; i++ {
		b.WriteString(m.renderEntry(i))
		b.WriteString("\n")
	}
	if len(m.entries) > m.listHeight() {
		b.WriteString(fpHelpStyle.Render(fmt.Sprintf("%d-%d / %d ↕", m.offset+1, end, len(m.entries))))
		b.WriteString("\n")
	}

	b.WriteString(rule + "\n")
	hidden := "显示隐藏文件"
	if m.showHidden {
		hidden = "隐藏隐藏文件"
	}
	b.WriteString(fpHelpStyle.Render("enter: 打开 • backspace: 上一级 • ~: 主目录 • .: " + hidden + " • esc: 返回"))

	return b.String()
}

func (m FilePickerModel) renderEntry(i int) string {
	e := m.entries[i]

	name, size := fpFileStyle.Render(e.Name), ""
	if e.IsDir {
		name = fpDirStyle.Render(e.Name + string(filepath.Separator))
	} else {
		size = humanize.Bytes(uint64(e.Size))
	}
	line := fpKindStyle.Render(e.Kind()) + " " + name + " " + fpSizeStyle.Render(size)

	if i == m.cursor {
		return "> " + fpCursorStyle.Render(line)
	}
	return "  " + line
}
