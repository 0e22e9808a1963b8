package domain

import (
	"fmt"
	"strings"
	"time"
)

// Params is the plain option record accepted by producers, executors and players.
// Tags follow the recognized option names {delayMs, speed, size}.
type Params struct {
	Algorithm string  `json:"algorithm" mapstructure:"algorithm" yaml:"algorithm"`
	Size      int     `json:"size" mapstructure:"size" yaml:"size"`
	Values    []int   `json:"values,omitempty" mapstructure:"values" yaml:"values"`
	Target    int     `json:"target" mapstructure:"target" yaml:"target"`
	DelayMs   int     `json:"delayMs" mapstructure:"delayMs" yaml:"delay_ms"`
	Speed     float64 `json:"speed" mapstructure:"speed" yaml:"speed"`
}

// Delay returns DelayMs as a duration.
func (p Params) Delay() time.Duration {
	return time.Duration(p.DelayMs) * time.Millisecond
}

// Key identifies the inputs that fully determine a produced sequence.
// Pacing options are excluded because they never change the steps.
func (p Params) Key() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s:n=%d:t=%d:v=", strings.ToLower(p.Algorithm), p.Size, p.Target)
	for i, v := range p.Values {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%d", v)
	}
	return b.String()
}
