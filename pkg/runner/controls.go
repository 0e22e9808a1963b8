package runner

import (
	"bufio"
	"context"
	"io"

	"github.com/aretw0/stepviz/pkg/player"
)

// Command is a playback action bound to a key.
type Command string

const (
	CmdToggle   Command = "toggle"
	CmdForward  Command = "forward"
	CmdBackward Command = "backward"
	CmdFaster   Command = "faster"
	CmdSlower   Command = "slower"
	CmdRewind   Command = "rewind"
	CmdReverse  Command = "reverse"
	CmdQuit     Command = "quit"
)

// KeyMap binds single bytes to commands.
type KeyMap map[byte]Command

// DefaultKeyMap is used when WithControls is given no map. Arrow keys are
// decoded separately.
var DefaultKeyMap = KeyMap{
	' ':  CmdToggle,
	'l':  CmdForward,
	'n':  CmdForward,
	'h':  CmdBackward,
	'p':  CmdBackward,
	'+':  CmdFaster,
	'=':  CmdFaster,
	'-':  CmdSlower,
	'r':  CmdRewind,
	'd':  CmdReverse,
	'q':  CmdQuit,
	0x03: CmdQuit, // Ctrl+C in raw mode
}

const (
	minSpeed = 0.25
	maxSpeed = 16
)

// ReadCommands decodes key presses from in until EOF or ctx is done. The
// channel is closed when reading stops.
func ReadCommands(ctx context.Context, in io.Reader, keys KeyMap) <-chan Command {
	out := make(chan Command)
	go func() {
		defer close(out)
		br := bufio.NewReader(in)
		for {
			b, err := br.ReadByte()
			if err != nil {
				return
			}
			cmd, ok := keys[b]
			if b == 0x1b {
				cmd, ok = readArrow(br)
			}
			if !ok {
				continue
			}
			select {
			case out <- cmd:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// readArrow decodes the tail of an ESC [ C or ESC [ D sequence.
func readArrow(br *bufio.Reader) (Command, bool) {
	if b, err := br.ReadByte(); err != nil || b != '[' {
		return "", false
	}
	b, err := br.ReadByte()
	if err != nil {
		return "", false
	}
	switch b {
	case 'C':
		return CmdForward, true
	case 'D':
		return CmdBackward, true
	}
	return "", false
}

// Apply executes cmd against p. CmdQuit is left to the caller.
func Apply(p *player.Player, cmd Command) error {
	switch cmd {
	case CmdToggle:
		return p.Toggle()
	case CmdForward:
		if err := p.Pause(); err != nil {
			return err
		}
		return p.StepForward()
	case CmdBackward:
		if err := p.Pause(); err != nil {
			return err
		}
		return p.StepBackward()
	case CmdFaster:
		return p.SetSpeed(nextSpeed(p.Frame().Speed, 2))
	case CmdSlower:
		return p.SetSpeed(nextSpeed(p.Frame().Speed, 0.5))
	case CmdRewind:
		return p.Rewind()
	case CmdReverse:
		if p.Frame().Direction == player.Backward.String() {
			return p.SetDirection(player.Forward)
		}
		return p.SetDirection(player.Backward)
	}
	return nil
}

// ApplyLive executes the speed commands against l. Other commands are ignored.
func ApplyLive(l *player.LivePlayer, cmd Command) error {
	switch cmd {
	case CmdFaster:
		return l.SetSpeed(nextSpeed(l.Frame().Speed, 2))
	case CmdSlower:
		return l.SetSpeed(nextSpeed(l.Frame().Speed, 0.5))
	}
	return nil
}

func nextSpeed(cur, factor float64) float64 {
	s := cur * factor
	switch {
	case s < minSpeed:
		return minSpeed
	case s > maxSpeed:
		return maxSpeed
	}
	return s
}
