package domain

// RunStatus is how a live run terminated.
type RunStatus string

const (
	RunCompleted RunStatus = "completed"
	RunCancelled RunStatus = "cancelled" // Expected stop requested through a CancelToken
	RunFailed    RunStatus = "failed"
)

// RunOutcome describes a terminated live run. Values and Overlay are the
// frozen RunState at the moment the run stopped.
type RunOutcome struct {
	ID        string          `json:"id"`
	Algorithm string          `json:"algorithm"`
	Status    RunStatus       `json:"status"`
	Values    []int           `json:"values"`
	Overlay   []ElementStatus `json:"overlay"`
	Stats     Stats           `json:"stats"`
	// Found is the index reported by a search, or -1.
	Found int    `json:"found"`
	Error string `json:"error,omitempty"`
	Err   error  `json:"-"`
}
