package kernel

// Status is the lifecycle state of a Coroutine.
type Status uint8

const (
	// Suspended coroutines are skipped until Resume.
	Suspended Status = iota
	// Yielding coroutines run on the next tick.
	Yielding
	// Delaying coroutines run once their timer expires.
	Delaying
	// Running is only observable from inside the body.
	Running
	// Ending coroutines are converted to Terminated by the next tick.
	Ending
	// Terminated is absorbing.
	Terminated
)

var statusLabels = [...]string{
	Suspended:  "Suspended",
	Yielding:   "Yielding",
	Delaying:   "Delaying",
	Running:    "Running",
	Ending:     "Ending",
	Terminated: "Terminated",
}

func (s Status) String() string {
	if int(s) < len(statusLabels) {
		return statusLabels[s]
	}
	return "Unknown"
}
