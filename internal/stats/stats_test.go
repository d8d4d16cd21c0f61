package stats

import (
	"testing"

	"github.com/f3rmion/suiwen/internal/dict"
	"github.com/f3rmion/suiwen/internal/hanzi"
	"github.com/f3rmion/suiwen/internal/practice"
	"github.com/f3rmion/suiwen/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unlockedIDs(all []Achievement) []string {
	var ids []string
	for _, a := range Unlocked(all) {
		ids = append(ids, a.ID)
	}
	return ids
}

func TestAchievementThresholds(t *testing.T) {
	tests := []struct {
		name     string
		mastered int
		correct  int
		want     []string
	}{
		{"none", 0, 0, nil},
		{"one short of beginner", 4, 19, nil},
		{"beginner", 5, 0, []string{"beginner"}},
		{"one short of advanced", 9, 0, []string{"beginner"}},
		{"advanced", 10, 0, []string{"beginner", "advanced"}},
		{"practice only", 0, 20, []string{"practice"}},
		{"all", 11, 25, []string{"beginner", "advanced", "practice"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			all := Achievements(tt.mastered, tt.correct)
			assert.Len(t, all, 3)
			assert.Equal(t, tt.want, unlockedIDs(all))
		})
	}
}

func TestBuild(t *testing.T) {
	d, err := dict.Builtin()
	require.NoError(t, err)
	sess := session.New(d)
	gen := practice.NewGenerator(d)

	r := Build(sess, nil)
	assert.Equal(t, 11, r.Progress.Total)
	assert.Zero(t, r.Answered)
	assert.Zero(t, r.Accuracy)
	assert.Empty(t, Unlocked(r.Achievements))

	require.Len(t, r.Levels, 3)
	assert.Equal(t, hanzi.LevelBasic, r.Levels[0].Level)
	assert.ElementsMatch(t, []string{"学", "京", "很", "好", "老"}, r.Levels[0].Chars)
	assert.Len(t, r.Levels[1].Chars, 5)
	assert.Equal(t, []string{"戏"}, r.Levels[2].Chars)

	for _, c := range []string{"学", "京", "剧", "很", "好"} {
		sess.ToggleMastered(c)
	}
	gen.SubmitAnswer("学", "学")
	gen.SubmitAnswer("京", "剧")

	r = Build(sess, gen)
	assert.Equal(t, 5, r.Progress.Mastered)
	assert.Equal(t, 2, r.Answered)
	assert.Equal(t, 1, r.Correct)
	assert.InDelta(t, 0.5, r.Accuracy, 1e-9)
	assert.Equal(t, []string{"beginner"}, unlockedIDs(r.Achievements))
}

func TestBuildLevelsOfText(t *testing.T) {
	d, err := dict.Builtin()
	require.NoError(t, err)
	sess := session.New(d, session.WithText("hello"))

	r := Build(sess, nil)
	require.Len(t, r.Levels, 3)
	for _, l := range r.Levels {
		assert.NotNil(t, l.Chars)
		assert.Empty(t, l.Chars)
	}
}
