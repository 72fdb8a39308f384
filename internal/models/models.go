package models

// State is a booking listing filter. The set is closed: values are only
// produced by StateFromString.
type State int

const (
	StateAll State = iota
	StateCurrent
	StatePast
	StateFuture
	StateWaiting
	StateRejected
)

var stateTokens = [...]string{
	StateAll:      "ALL",
	StateCurrent:  "CURRENT",
	StatePast:     "PAST",
	StateFuture:   "FUTURE",
	StateWaiting:  "WAITING",
	StateRejected: "REJECTED",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateTokens) {
		return "UNKNOWN"
	}
	return stateTokens[s]
}

// StateFromString matches token case-sensitively against the known filters.
func StateFromString(token string) (State, bool) {
	for i, t := range stateTokens {
		if t == token {
			return State(i), true
		}
	}
	return 0, false
}

// Page is a validated page request. Size zero means unpaged.
type Page struct {
	Number int
	Size   int
}

// Offset returns the row offset of the first element of the page.
func (p Page) Offset() int {
	return p.Number * p.Size
}

// Unpaged returns everything.
var Unpaged = Page{}
