package tui

import (
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/f3rmion/suiwen/internal/dict"
	"github.com/f3rmion/suiwen/internal/tui/views"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) AppModel {
	t.Helper()
	d, err := dict.Builtin()
	require.NoError(t, err)
	app := NewApp(Options{Dict: d})
	model, _ := app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return model.(AppModel)
}

func press(t *testing.T, m AppModel, key tea.KeyMsg) (AppModel, tea.Cmd) {
	t.Helper()
	model, cmd := m.Update(key)
	return model.(AppModel), cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestAppSwitchViews(t *testing.T) {
	m := newTestApp(t)
	assert.Equal(t, ViewReader, m.currentView)
	assert.Contains(t, m.View(), "随文识字")

	m, _ = press(t, m, runes("2"))
	assert.Equal(t, ViewPractice, m.currentView)
	assert.Contains(t, m.View(), "按 n 开始练习")

	m, _ = press(t, m, runes("3"))
	assert.Equal(t, ViewVocab, m.currentView)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.True(t, m.sidebarActive)
	m, _ = press(t, m, runes("k"))
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, ViewPractice, m.currentView)
	assert.False(t, m.sidebarActive)
}

func TestAppQuit(t *testing.T) {
	m := newTestApp(t)
	_, cmd := press(t, m, runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestAppHelpOverlay(t *testing.T) {
	m := newTestApp(t)
	m, _ = press(t, m, runes("?"))
	assert.True(t, m.showHelp)

	m, cmd := press(t, m, runes("q"))
	assert.False(t, m.showHelp)
	assert.Nil(t, cmd)
}

func TestAppEditingCapturesGlobalKeys(t *testing.T) {
	m := newTestApp(t)
	m.Session().SetText("学")

	m, _ = press(t, m, runes("e"))
	m, _ = press(t, m, runes("q2"))
	assert.Equal(t, ViewReader, m.currentView)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Equal(t, "学q2", m.Session().Text())
}

func TestAppImportFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lesson.txt")
	require.NoError(t, os.WriteFile(path, []byte("我跟老师学唱戏"), 0644))

	m := newTestApp(t)
	m, _ = press(t, m, runes("4"))

	model, cmd := m.Update(views.FileSelectedMsg{Path: path})
	require.NotNil(t, cmd)
	msg := cmd()
	require.IsType(t, TextLoadedMsg{}, msg)

	model, _ = model.Update(msg)
	m = model.(AppModel)
	assert.Equal(t, ViewReader, m.currentView)
	assert.Equal(t, "我跟老师学唱戏", m.Session().Text())
	assert.NoError(t, m.importErr)
}

func TestAppImportFailureKeepsText(t *testing.T) {
	m := newTestApp(t)
	before := m.Session().Text()

	model, cmd := m.Update(views.FileSelectedMsg{Path: filepath.Join(t.TempDir(), "missing.txt")})
	model, _ = model.Update(cmd())
	m = model.(AppModel)

	assert.Error(t, m.importErr)
	assert.Equal(t, before, m.Session().Text())
}

func TestAppStatsView(t *testing.T) {
	m := newTestApp(t)
	m, _ = press(t, m, runes("5"))
	assert.Equal(t, ViewStats, m.currentView)
	assert.Contains(t, m.View(), "学习成就")
	assert.Contains(t, m.View(), "☆ 初学者")

	for _, c := range []string{"学", "京", "剧", "很", "好"} {
		m.Session().ToggleMastered(c)
	}
	m.Practice().SubmitAnswer("学", "学")

	r := m.statsView.Report()
	assert.Equal(t, 5, r.Progress.Mastered)
	assert.Equal(t, 1, r.Answered)
	assert.True(t, r.Achievements[0].Unlocked)
	assert.False(t, r.Achievements[1].Unlocked)
	assert.Contains(t, m.View(), "★ 初学者")
	assert.Contains(t, m.View(), "掌握 5/11")
}
