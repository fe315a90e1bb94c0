package document

import (
	"context"
	"fmt"
	"log/slog"

	"documite/internal/identity"
	"documite/internal/metrics"
)

// Store is the read side of the documents table.
type Store interface {
	FindByOwner(ctx context.Context, ownerID int64) ([]*Record, error)
	FindByOwnerAndName(ctx context.Context, ownerID int64, name string) ([]*Record, error)
	FindByOwnerAndTypeIn(ctx context.Context, ownerID int64, types []string) ([]*Record, error)
}

// ClaimsResolver maps verified claims to a canonical user.
type ClaimsResolver interface {
	ResolveClaims(ctx context.Context, claims identity.ClaimSource) (identity.Result, error)
}

// Service scopes document queries to the resolved caller.
type Service struct {
	store    Store
	resolver ClaimsResolver
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// NewService creates a document service. logger and m may be nil.
func NewService(store Store, resolver ClaimsResolver, logger *slog.Logger, m *metrics.Metrics) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, resolver: resolver, logger: logger, metrics: m}
}

// FilterByType returns the documents owned by the resolved user, restricted by f.
// An unresolved caller gets an empty slice and no error.
func (s *Service) FilterByType(ctx context.Context, res identity.Result, f TypeFilter) ([]*Record, error) {
	u, ok := res.User()
	if !ok {
		return []*Record{}, nil
	}

	var (
		records []*Record
		err     error
	)
	switch {
	case f.MatchesAll():
		records, err = s.store.FindByOwner(ctx, u.ID)
	case len(f.Types()) == 0:
		return []*Record{}, nil
	default:
		records, err = s.store.FindByOwnerAndTypeIn(ctx, u.ID, f.Types())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find documents by type: %w", err)
	}

	return s.checkOwner(ctx, u, records)
}

// FilterByName returns the resolved user's documents named exactly name.
// An empty name or SentinelAll returns all of the user's documents.
func (s *Service) FilterByName(ctx context.Context, res identity.Result, name string) ([]*Record, error) {
	u, ok := res.User()
	if !ok {
		return []*Record{}, nil
	}

	var (
		records []*Record
		err     error
	)
	if name == "" || IsSentinel(name) {
		records, err = s.store.FindByOwner(ctx, u.ID)
	} else {
		records, err = s.store.FindByOwnerAndName(ctx, u.ID, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find documents by name: %w", err)
	}

	return s.checkOwner(ctx, u, records)
}

// GetDocumentsByType resolves the caller from claims and returns their documents of the given types.
func (s *Service) GetDocumentsByType(ctx context.Context, f TypeFilter, claims identity.ClaimSource) ([]View, error) {
	res, err := s.resolver.ResolveClaims(ctx, claims)
	if err != nil {
		return nil, err
	}

	records, err := s.FilterByType(ctx, res, f)
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveDocumentsServed(len(records))
	return ToViews(records), nil
}

// GetDocumentsByName resolves the caller from claims and returns their documents with the given name.
func (s *Service) GetDocumentsByName(ctx context.Context, name string, claims identity.ClaimSource) ([]View, error) {
	res, err := s.resolver.ResolveClaims(ctx, claims)
	if err != nil {
		return nil, err
	}

	records, err := s.FilterByName(ctx, res, name)
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveDocumentsServed(len(records))
	return ToViews(records), nil
}

// checkOwner fails the whole result if any record belongs to someone else.
func (s *Service) checkOwner(ctx context.Context, u identity.User, records []*Record) ([]*Record, error) {
	for _, r := range records {
		if r.OwnerID != u.ID {
			s.logger.ErrorContext(ctx, "document owner mismatch",
				"doc_id", r.ID,
				"owner_id", r.OwnerID,
				"user_id", u.ID,
			)
			return nil, fmt.Errorf("%w: document %d", ErrOwnerMismatch, r.ID)
		}
	}
	if records == nil {
		records = []*Record{}
	}
	return records, nil
}
