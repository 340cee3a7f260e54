package handoff

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/codedrill/internal/learnpath"
	"github.com/abhisek/codedrill/internal/request"
)

func TestDerivePayload(t *testing.T) {
	hc := Context{Language: "python", Difficulty: request.Advanced}

	tests := []struct {
		name    string
		problem learnpath.Problem
		want    string
	}{
		{"title and concepts", learnpath.Problem{Title: "Two Sum", Concepts: []string{"hash maps", "arrays"}}, "Two Sum: hash maps, arrays"},
		{"title only", learnpath.Problem{Title: "Two Sum"}, "Two Sum"},
		{"blank concepts skipped", learnpath.Problem{Title: " Two Sum ", Concepts: []string{"", " arrays "}}, "Two Sum: arrays"},
		{"concepts only", learnpath.Problem{Concepts: []string{"graphs"}}, "graphs"},
		{"empty", learnpath.Problem{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DerivePayload(tt.problem, hc)
			assert.Equal(t, tt.want, got.Topic)
			assert.Equal(t, "python", got.Language)
			assert.Equal(t, request.Advanced, got.Difficulty)
		})
	}
}

func TestPayloadParams(t *testing.T) {
	p := Payload{Topic: "Two Sum: arrays", Language: "go", Difficulty: request.Beginner}
	params := p.Params()
	assert.NoError(t, params.Validate())
	assert.Equal(t, "Two Sum: arrays", params.Topic)
}

func TestPayloadEncoding(t *testing.T) {
	data, err := encodePayload(Payload{Topic: "t", Language: "go", Difficulty: request.Intermediate})
	require.NoError(t, err)
	assert.JSONEq(t, `{"topic":"t","language":"go","difficulty":"intermediate"}`, string(data))

	got, err := decodePayload(data)
	require.NoError(t, err)
	assert.Equal(t, request.Intermediate, got.Difficulty)

	_, err = decodePayload([]byte("not json"))
	assert.Error(t, err)
}

func TestBuildAndParseLocation(t *testing.T) {
	s, err := BuildLocation("codedrill://practice", "abc-123")
	require.NoError(t, err)

	loc, err := ParseLocation(s)
	require.NoError(t, err)
	assert.Equal(t, Location{AutoStart: true, Key: "abc-123"}, loc)
}

func TestBuildLocationKeepsExistingQuery(t *testing.T) {
	s, err := BuildLocation("http://localhost:3000/practice?theme=dark", "k")
	require.NoError(t, err)
	assert.Contains(t, s, "theme=dark")

	loc, err := ParseLocation(s)
	require.NoError(t, err)
	assert.Equal(t, "k", loc.Key)
}

func TestParseLocation(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Location
		wantErr bool
	}{
		{"plain", "codedrill://practice", Location{}, false},
		{"autostart false", "codedrill://practice?autostart=false&handoff=k", Location{Key: "k"}, false},
		{"autostart without key", "codedrill://practice?autostart=true", Location{}, true},
		{"bad flag", "codedrill://practice?autostart=maybe&handoff=k", Location{}, true},
		{"bad url", "://bad", Location{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLocation(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExecLauncherCommand(t *testing.T) {
	l := &ExecLauncher{Prefix: []string{"tmux", "new-window"}, Executable: "/usr/bin/codedrill"}
	argv, err := l.Command("codedrill://practice?autostart=true&handoff=k")
	require.NoError(t, err)
	assert.Equal(t, []string{"tmux", "new-window", "/usr/bin/codedrill", "open", "codedrill://practice?autostart=true&handoff=k"}, argv)

	l.Args = []string{"--db", "/tmp/c.db"}
	argv, err = l.Command("loc")
	require.NoError(t, err)
	assert.Equal(t, []string{"tmux", "new-window", "/usr/bin/codedrill", "open", "loc", "--db", "/tmp/c.db"}, argv)

	_, err = (&ExecLauncher{}).Command("x")
	assert.ErrorIs(t, err, ErrNoLauncher)
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("TMUX", "")
	t.Setenv("CODEDRILL_LAUNCH", "wezterm cli spawn --")
	t.Setenv("CODEDRILL_HANDOFF_TIMEOUT", "5s")
	t.Setenv("CODEDRILL_HANDOFF_POLL", "20ms")

	cfg := ConfigFromEnv()
	assert.Equal(t, []string{"wezterm", "cli", "spawn", "--"}, cfg.LaunchCommand)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, 20*time.Millisecond, cfg.PollInterval)
	assert.NoError(t, cfg.Validate())
}

func TestConfigDefaults(t *testing.T) {
	t.Setenv("TMUX", "")
	cfg := DefaultConfig()
	assert.Empty(t, cfg.LaunchCommand)
	assert.Equal(t, 30*time.Second, cfg.Timeout)

	t.Setenv("TMUX", "/tmp/tmux-1000/default,1,0")
	assert.Equal(t, []string{"tmux", "new-window"}, DefaultConfig().LaunchCommand)
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Timeout = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.PollInterval = -time.Second
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.BaseLocation = ""
	assert.Error(t, cfg.Validate())
}
