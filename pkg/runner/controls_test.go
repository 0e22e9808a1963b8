package runner_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/stepviz/pkg/player"
	"github.com/aretw0/stepviz/pkg/runner"
)

func collect(ch <-chan runner.Command) []runner.Command {
	var out []runner.Command
	for c := range ch {
		out = append(out, c)
	}
	return out
}

func TestReadCommands_DecodesKeysAndArrows(t *testing.T) {
	in := strings.NewReader(" \x1b[C\x1b[Dzq\x03")
	cmds := collect(runner.ReadCommands(context.Background(), in, runner.DefaultKeyMap))
	assert.Equal(t, []runner.Command{
		runner.CmdToggle,
		runner.CmdForward,
		runner.CmdBackward,
		runner.CmdQuit,
		runner.CmdQuit,
	}, cmds)
}

func TestReadCommands_CustomKeyMap(t *testing.T) {
	keys := runner.KeyMap{'x': runner.CmdRewind}
	cmds := collect(runner.ReadCommands(context.Background(), strings.NewReader("xq"), keys))
	assert.Equal(t, []runner.Command{runner.CmdRewind}, cmds)
}

func TestApply(t *testing.T) {
	p := loadedPlayer(t, 4, time.Hour)

	require.NoError(t, runner.Apply(p, runner.CmdForward))
	require.NoError(t, runner.Apply(p, runner.CmdForward))
	assert.Equal(t, 2, p.Index())
	assert.Equal(t, player.StatePaused, p.State())

	require.NoError(t, runner.Apply(p, runner.CmdBackward))
	assert.Equal(t, 1, p.Index())

	require.NoError(t, runner.Apply(p, runner.CmdReverse))
	assert.Equal(t, "backward", p.Frame().Direction)
	require.NoError(t, runner.Apply(p, runner.CmdReverse))
	assert.Equal(t, "forward", p.Frame().Direction)

	for i := 0; i < 10; i++ {
		require.NoError(t, runner.Apply(p, runner.CmdFaster))
	}
	assert.Equal(t, 16.0, p.Frame().Speed)
	for i := 0; i < 10; i++ {
		require.NoError(t, runner.Apply(p, runner.CmdSlower))
	}
	assert.Equal(t, 0.25, p.Frame().Speed)

	require.NoError(t, runner.Apply(p, runner.CmdRewind))
	assert.Equal(t, 0, p.Index())
	assert.Equal(t, player.StateReady, p.State())

	require.NoError(t, runner.Apply(p, runner.CmdToggle))
	assert.Equal(t, player.StatePlaying, p.State())
	require.NoError(t, runner.Apply(p, runner.CmdToggle))
	assert.Equal(t, player.StatePaused, p.State())
}

func TestApplyLive_Speed(t *testing.T) {
	live := player.NewLive(nil)
	require.NoError(t, runner.ApplyLive(live, runner.CmdFaster))
	assert.Equal(t, 2.0, live.Frame().Speed)
	require.NoError(t, runner.ApplyLive(live, runner.CmdToggle))
	assert.Equal(t, 2.0, live.Frame().Speed)
}
