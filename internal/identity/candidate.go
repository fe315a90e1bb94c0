// Package identity maps verified token claims onto a single canonical user.
//
// Extraction turns claims into an ordered list of lookup candidates; the
// Resolver walks that list against a Directory and stops at the first hit.
package identity

// Claim names consulted during extraction.
const (
	ClaimEmail     = "email"
	ClaimGivenName = "given_name"
	ClaimName      = "name"
)

// Kind selects which directory lookup a candidate is resolved with.
type Kind int

const (
	ByEmail Kind = iota + 1
	ByUsername
)

func (k Kind) String() string {
	switch k {
	case ByEmail:
		return "email"
	case ByUsername:
		return "username"
	default:
		return "unknown"
	}
}

// Candidate is a claim value that may identify a persisted user.
type Candidate struct {
	Claim string
	Kind  Kind
	Value string
}

// ClaimSource is read-only access to a verified claim set.
// Get reports false when the claim is absent.
type ClaimSource interface {
	Get(name string) (string, bool)
}

// MapClaims is a ClaimSource backed by a plain map.
type MapClaims map[string]string

func (m MapClaims) Get(name string) (string, bool) {
	v, ok := m[name]
	return v, ok
}

// precedence is the fixed order in which claims are tried.
var precedence = []struct {
	claim string
	kind  Kind
}{
	{ClaimEmail, ByEmail},
	{ClaimGivenName, ByUsername},
	{ClaimName, ByUsername},
}

// Extract returns the identity candidates present in claims, in precedence order.
// Empty values are skipped and a (kind, value) pair already emitted is not repeated.
// Values are passed through verbatim; whitespace is part of the lookup key.
// The result is empty, never nil, when nothing usable is present.
func Extract(claims ClaimSource) []Candidate {
	out := make([]Candidate, 0, len(precedence))
	if claims == nil {
		return out
	}

	for _, p := range precedence {
		v, ok := claims.Get(p.claim)
		if !ok || v == "" || seen(out, p.kind, v) {
			continue
		}
		out = append(out, Candidate{Claim: p.claim, Kind: p.kind, Value: v})
	}
	return out
}

func seen(cands []Candidate, kind Kind, value string) bool {
	for _, c := range cands {
		if c.Kind == kind && c.Value == value {
			return true
		}
	}
	return false
}
