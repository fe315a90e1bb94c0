package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"documite/internal/metrics"
)

// ErrUnknownKind is returned for a candidate with no matching lookup.
var ErrUnknownKind = errors.New("unknown candidate kind")

// User is the canonical internal identity of a caller.
type User struct {
	ID   int64
	Name string
}

// Directory looks users up by a single attribute.
// Both methods return matches in storage order and an empty slice when nothing matches.
type Directory interface {
	LookupByEmail(ctx context.Context, email string) ([]User, error)
	LookupByUsername(ctx context.Context, name string) ([]User, error)
}

// Result is the outcome of a resolution: either a user or NotFound.
type Result struct {
	user    User
	matched Candidate
	found   bool
}

// NotFound is the result for a caller that maps to no user.
var NotFound = Result{}

// Found wraps u as a resolved identity matched through c.
func Found(u User, c Candidate) Result {
	return Result{user: u, matched: c, found: true}
}

// User returns the resolved user and true, or a zero User and false for NotFound.
func (r Result) User() (User, bool) {
	return r.user, r.found
}

// MatchedBy returns the candidate that produced the match.
func (r Result) MatchedBy() (Candidate, bool) {
	return r.matched, r.found
}

// IsFound reports whether a user was resolved.
func (r Result) IsFound() bool {
	return r.found
}

// Resolver picks one canonical user for a list of candidates.
type Resolver struct {
	dir     Directory
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewResolver creates a resolver over dir. logger and m may be nil.
func NewResolver(dir Directory, logger *slog.Logger, m *metrics.Metrics) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{dir: dir, logger: logger, metrics: m}
}

// Resolve tries each candidate in order. The first lookup with any match wins and
// its first user is returned; later candidates are not consulted.
// Running out of candidates yields NotFound and a nil error. Only a failed
// lookup is reported as an error.
func (r *Resolver) Resolve(ctx context.Context, cands []Candidate) (Result, error) {
	for _, c := range cands {
		users, err := r.lookup(ctx, c)
		if err != nil {
			r.metrics.IncResolution(metrics.OutcomeError)
			return NotFound, fmt.Errorf("resolve identity by %s claim: %w", c.Claim, err)
		}
		if len(users) == 0 {
			r.logger.DebugContext(ctx, "identity candidate unmatched", "claim", c.Claim)
			continue
		}

		u := users[0]
		if len(users) > 1 {
			r.logger.WarnContext(ctx, "identity candidate matched several users, using first",
				"claim", c.Claim,
				"matches", len(users),
				"user_id", u.ID,
			)
		}
		r.metrics.IncResolution(c.Kind.String())
		return Found(u, c), nil
	}

	r.metrics.IncResolution(metrics.OutcomeNotFound)
	r.logger.DebugContext(ctx, "identity unresolved", "candidates", len(cands))
	return NotFound, nil
}

// ResolveClaims extracts candidates from claims and resolves them.
func (r *Resolver) ResolveClaims(ctx context.Context, claims ClaimSource) (Result, error) {
	return r.Resolve(ctx, Extract(claims))
}

func (r *Resolver) lookup(ctx context.Context, c Candidate) ([]User, error) {
	switch c.Kind {
	case ByEmail:
		return r.dir.LookupByEmail(ctx, c.Value)
	case ByUsername:
		return r.dir.LookupByUsername(ctx, c.Value)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, c.Kind)
	}
}
