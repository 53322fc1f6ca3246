package tui

// Outcome is how a duplicate group was resolved.
type Outcome int

const (
	OutcomeSkipped Outcome = iota
	OutcomeMerged
	OutcomeDismissed
)

// resolvedMsg reports that the current group was resolved.
type resolvedMsg struct {
	key     string
	outcome Outcome
}

// errorMsg reports a failed resolution; the group stays current.
type errorMsg struct {
	err error
}
