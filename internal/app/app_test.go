package app

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/codedrill/internal/generator"
	"github.com/abhisek/codedrill/internal/learnpath"
	"github.com/abhisek/codedrill/internal/request"
	"github.com/abhisek/codedrill/internal/router"
	"github.com/abhisek/codedrill/internal/screens/practice"
	"github.com/abhisek/codedrill/internal/screens/problem"
	"github.com/abhisek/codedrill/internal/ui/layout"
)

func newTestModel() AppModel {
	return newAppModel(Options{
		Controller: request.New(generator.NewMockClient()),
		Endpoint:   "http://localhost:3001/generate-problems",
	})
}

func TestAppModel_StartsOnPractice(t *testing.T) {
	m := newTestModel()
	require.NotNil(t, m.router.Active())
	assert.Equal(t, "Practice", m.router.Active().Title())
	assert.Equal(t, 1, m.router.Depth())
}

func TestAppModel_AutoSubmitFromInit(t *testing.T) {
	ctrl := request.New(generator.NewMockClient())
	m := newAppModel(Options{
		Controller: ctrl,
		Practice: practice.Options{
			Initial:    request.Params{Topic: "heaps", Language: "go", Difficulty: request.Beginner},
			AutoSubmit: true,
		},
	})

	assert.NotNil(t, m.Init())
	assert.True(t, ctrl.Loading())
}

func TestAppModel_WindowSize(t *testing.T) {
	var model tea.Model = newTestModel()
	model, _ = model.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	m := model.(AppModel)
	assert.Equal(t, 100, m.width)
	assert.Equal(t, 40, m.height)
	assert.Contains(t, m.router.View(m.width, m.height), "Generate")
}

func TestHeaderShowsEndpoint(t *testing.T) {
	header := layout.RenderHeader("Practice", "http://localhost:3001/generate-problems", 120)
	assert.Contains(t, header, "codedrill")
	assert.Contains(t, header, "Practice")
	assert.Contains(t, header, "generate-problems")
}

func TestAppModel_CtrlCQuits(t *testing.T) {
	m := newTestModel()
	_, cmd := m.Update(tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}

func TestRunRequiresController(t *testing.T) {
	assert.Error(t, Run(Options{}))
}

func TestAppModel_ChromeFollowsActiveScreen(t *testing.T) {
	m := newTestModel()
	c := m.chrome()
	assert.Equal(t, "Practice", c.Title)
	assert.Equal(t, "http://localhost:3001/generate-problems", c.Info)
	assert.NotEmpty(t, c.Hints)

	detail := problem.New(learnpath.Problem{Title: "Two Sum", Level: 1}, nil)
	m.Update(router.PushScreenMsg{Screen: detail})
	assert.Equal(t, "Two Sum", m.chrome().Title)
	assert.Equal(t, "Esc", m.chrome().Hints[0].Key)

	m.Update(router.PopScreenMsg{})
	assert.Equal(t, "Practice", m.chrome().Title)
}
