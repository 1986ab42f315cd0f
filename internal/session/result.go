package session

// Outcome is the tagged result of a federated login. A degraded session is
// deliberately distinct from a full one so callers can show a limited
// functionality notice instead of inferring it from the token shape.
type Outcome int

const (
	// Rejected means the server refused the credentials; no session exists.
	Rejected Outcome = iota
	// Authenticated means the server issued a full session.
	Authenticated
	// AuthenticatedDegraded means the backend was unreachable and a local
	// session was synthesized from the identity claims.
	AuthenticatedDegraded
)

func (o Outcome) String() string {
	switch o {
	case Authenticated:
		return "authenticated"
	case AuthenticatedDegraded:
		return "authenticated (limited)"
	default:
		return "rejected"
	}
}
