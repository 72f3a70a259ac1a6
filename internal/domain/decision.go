package domain

// DecisionKind is the per-request access decision produced by the filter.
type DecisionKind string

const (
	DecisionGrant     DecisionKind = "GRANT"
	DecisionChallenge DecisionKind = "CHALLENGE"
	DecisionReject    DecisionKind = "REJECT"
)

// Decision is recomputed for every request from the presented credential and
// the current session store state. It is never persisted.
type Decision struct {
	Kind    DecisionKind
	Session *Session // set only for GRANT
	Reason  string   // set for CHALLENGE/REJECT, never shown to the client
}

func Grant(s *Session) Decision {
	return Decision{Kind: DecisionGrant, Session: s}
}

func Challenge(reason string) Decision {
	return Decision{Kind: DecisionChallenge, Reason: reason}
}

func Reject(reason string) Decision {
	return Decision{Kind: DecisionReject, Reason: reason}
}
