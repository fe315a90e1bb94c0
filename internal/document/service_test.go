package document

import (
	"context"
	"errors"
	"reflect"
	"slices"
	"testing"

	"documite/internal/identity"
	"documite/internal/logger"
	"documite/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// memStore filters an in-memory documents table the way the SQL queries do.
type memStore struct {
	docs  []*Record
	err   error
	calls int
}

func (m *memStore) filter(keep func(*Record) bool) ([]*Record, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	var out []*Record
	for _, d := range m.docs {
		if keep(d) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *memStore) FindByOwner(_ context.Context, ownerID int64) ([]*Record, error) {
	return m.filter(func(d *Record) bool { return d.OwnerID == ownerID })
}

func (m *memStore) FindByOwnerAndName(_ context.Context, ownerID int64, name string) ([]*Record, error) {
	return m.filter(func(d *Record) bool { return d.OwnerID == ownerID && d.Name == name })
}

func (m *memStore) FindByOwnerAndTypeIn(_ context.Context, ownerID int64, types []string) ([]*Record, error) {
	return m.filter(func(d *Record) bool { return d.OwnerID == ownerID && slices.Contains(types, d.Type) })
}

// leakyStore ignores the owner and returns everything.
type leakyStore struct{ memStore }

func (l *leakyStore) FindByOwner(context.Context, int64) ([]*Record, error) {
	return l.docs, nil
}

type mapDirectory struct {
	byEmail    map[string][]identity.User
	byUsername map[string][]identity.User
	err        error
}

func (d mapDirectory) LookupByEmail(_ context.Context, email string) ([]identity.User, error) {
	return d.byEmail[email], d.err
}

func (d mapDirectory) LookupByUsername(_ context.Context, name string) ([]identity.User, error) {
	return d.byUsername[name], d.err
}

func fixtureDocs() []*Record {
	return []*Record{
		{ID: 1, OwnerID: 7, Name: "passport", Location: "/d/1", Type: "PDF", Year: strPtr("2024")},
		{ID: 2, OwnerID: 7, Name: "lease", Location: "/d/2", Type: "DOCX"},
		{ID: 3, OwnerID: 3, Name: "passport", Location: "/d/3", Type: "PDF"},
		{ID: 4, OwnerID: 3, Name: "scan", Location: "/d/4", Type: "PNG"},
	}
}

func fixtureDirectory() mapDirectory {
	return mapDirectory{
		byEmail:    map[string][]identity.User{"a@x.com": {{ID: 7, Name: "ana"}}},
		byUsername: map[string][]identity.User{"alice": {{ID: 3, Name: "alice"}}},
	}
}

func newTestService(store Store, dir identity.Directory) (*Service, *metrics.Metrics) {
	m := metrics.New(prometheus.NewRegistry())
	log := logger.Discard()
	return NewService(store, identity.NewResolver(dir, log, m), log, m), m
}

func viewNames(views []View) []string {
	names := make([]string, 0, len(views))
	for _, v := range views {
		names = append(names, v.DocName+"/"+v.DocType)
	}
	return names
}

func TestGetDocumentsByType_Scenarios(t *testing.T) {
	tests := []struct {
		name   string
		claims identity.MapClaims
		filter TypeFilter
		want   []string
	}{
		{
			name:   "email resolves, all types",
			claims: identity.MapClaims{"email": "a@x.com"},
			filter: AllTypes(),
			want:   []string{"passport/PDF", "lease/DOCX"},
		},
		{
			name:   "given_name resolves, PDF only",
			claims: identity.MapClaims{"given_name": "alice"},
			filter: TypesOf("PDF"),
			want:   []string{"passport/PDF"},
		},
		{
			name:   "empty claims",
			claims: identity.MapClaims{},
			filter: AllTypes(),
			want:   []string{},
		},
		{
			name:   "unknown email without fallback",
			claims: identity.MapClaims{"email": "ghost@x.com"},
			filter: AllTypes(),
			want:   []string{},
		},
		{
			name:   "email wins over given_name",
			claims: identity.MapClaims{"email": "a@x.com", "given_name": "alice"},
			filter: AllTypes(),
			want:   []string{"passport/PDF", "lease/DOCX"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(&memStore{docs: fixtureDocs()}, fixtureDirectory())

			views, err := svc.GetDocumentsByType(context.Background(), tt.filter, tt.claims)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if views == nil {
				t.Fatal("expected non-nil slice")
			}
			if got := viewNames(views); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilterByType_NoCrossUserLeakage(t *testing.T) {
	store := &memStore{docs: fixtureDocs()}
	svc, _ := newTestService(store, fixtureDirectory())

	filters := []TypeFilter{AllTypes(), TypesOf("PDF"), TypesOf("PNG", "DOCX"), TypesOf("get all"), TypesOf()}
	for _, u := range []identity.User{{ID: 7}, {ID: 3}, {ID: 99}} {
		for _, f := range filters {
			records, err := svc.FilterByType(context.Background(), identity.Found(u, identity.Candidate{}), f)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for _, r := range records {
				if r.OwnerID != u.ID {
					t.Errorf("user %d received document %d owned by %d", u.ID, r.ID, r.OwnerID)
				}
			}
		}
	}
}

func TestFilterByType_NotFoundIsEmpty(t *testing.T) {
	store := &memStore{docs: fixtureDocs()}
	svc, _ := newTestService(store, fixtureDirectory())

	for _, f := range []TypeFilter{AllTypes(), TypesOf("PDF"), TypesOf("Get All")} {
		records, err := svc.FilterByType(context.Background(), identity.NotFound, f)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if records == nil || len(records) != 0 {
			t.Errorf("expected empty slice, got %#v", records)
		}
	}
	if store.calls != 0 {
		t.Errorf("NotFound must not query the store, got %d calls", store.calls)
	}
}

func TestFilterByType_SentinelCaseInsensitive(t *testing.T) {
	svc, _ := newTestService(&memStore{docs: fixtureDocs()}, fixtureDirectory())
	res := identity.Found(identity.User{ID: 7}, identity.Candidate{})

	absent, err := svc.FilterByType(context.Background(), res, AllTypes())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, f := range []TypeFilter{TypesOf("get all"), TypesOf("Get All"), TypesOf("GET ALL")} {
		got, err := svc.FilterByType(context.Background(), res, f)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(got, absent) {
			t.Errorf("sentinel %v differs from absent filter", f.types)
		}
	}
}

func TestFilterByType_TypeMatchIsCaseSensitive(t *testing.T) {
	svc, _ := newTestService(&memStore{docs: fixtureDocs()}, fixtureDirectory())

	records, err := svc.FilterByType(context.Background(), identity.Found(identity.User{ID: 7}, identity.Candidate{}), TypesOf("pdf"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no match for lowercase type, got %d", len(records))
	}
}

func TestFilterByType_EmptySetSkipsQuery(t *testing.T) {
	store := &memStore{docs: fixtureDocs()}
	svc, _ := newTestService(store, fixtureDirectory())

	records, err := svc.FilterByType(context.Background(), identity.Found(identity.User{ID: 7}, identity.Candidate{}), TypesOf())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 0 || store.calls != 0 {
		t.Errorf("expected no records and no query, got %d records, %d calls", len(records), store.calls)
	}
}

func TestFilterByName(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []int64
	}{
		{"exact name", "passport", []int64{1}},
		{"unknown name", "visa", []int64{}},
		{"empty name means all", "", []int64{1, 2}},
		{"whitespace name is matched literally", "  ", []int64{}},
		{"sentinel means all", "Get All", []int64{1, 2}},
		{"name match is case-sensitive", "Passport", []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(&memStore{docs: fixtureDocs()}, fixtureDirectory())

			records, err := svc.FilterByName(context.Background(), identity.Found(identity.User{ID: 7}, identity.Candidate{}), tt.query)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			ids := make([]int64, 0, len(records))
			for _, r := range records {
				ids = append(ids, r.ID)
			}
			if !reflect.DeepEqual(ids, tt.want) {
				t.Errorf("got ids %v, want %v", ids, tt.want)
			}
		})
	}
}

func TestGetDocumentsByName(t *testing.T) {
	svc, m := newTestService(&memStore{docs: fixtureDocs()}, fixtureDirectory())

	views, err := svc.GetDocumentsByName(context.Background(), "passport", identity.MapClaims{"name": "alice"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(views) != 1 || views[0].DocLocation != "/d/3" {
		t.Errorf("expected alice's passport, got %+v", views)
	}
	if got := testutil.CollectAndCount(m.DocumentsServed); got != 1 {
		t.Errorf("expected documents served to be observed, got %d series", got)
	}

	views, err = svc.GetDocumentsByName(context.Background(), "passport", identity.MapClaims{})
	if err != nil || len(views) != 0 {
		t.Errorf("unresolvable caller: got %v, %v", views, err)
	}
}

func TestGetDocuments_LookupFailureIsFault(t *testing.T) {
	boom := errors.New("users table unavailable")
	dir := fixtureDirectory()
	dir.err = boom
	svc, _ := newTestService(&memStore{docs: fixtureDocs()}, dir)

	if _, err := svc.GetDocumentsByType(context.Background(), AllTypes(), identity.MapClaims{"email": "a@x.com"}); !errors.Is(err, boom) {
		t.Errorf("GetDocumentsByType: expected lookup error, got %v", err)
	}
	if _, err := svc.GetDocumentsByName(context.Background(), "x", identity.MapClaims{"email": "a@x.com"}); !errors.Is(err, boom) {
		t.Errorf("GetDocumentsByName: expected lookup error, got %v", err)
	}
}

func TestGetDocuments_StoreFailureIsFault(t *testing.T) {
	boom := errors.New("documents table unavailable")
	svc, _ := newTestService(&memStore{err: boom}, fixtureDirectory())

	_, err := svc.GetDocumentsByType(context.Background(), TypesOf("PDF"), identity.MapClaims{"email": "a@x.com"})
	if !errors.Is(err, boom) {
		t.Errorf("expected store error, got %v", err)
	}
}

func TestFilter_OwnerMismatchIsFault(t *testing.T) {
	svc, _ := newTestService(&leakyStore{memStore{docs: fixtureDocs()}}, fixtureDirectory())

	_, err := svc.GetDocumentsByType(context.Background(), AllTypes(), identity.MapClaims{"email": "a@x.com"})
	if !errors.Is(err, ErrOwnerMismatch) {
		t.Errorf("expected ErrOwnerMismatch, got %v", err)
	}
}

func TestGetDocumentsByType_MappingTotal(t *testing.T) {
	docs := fixtureDocs()
	svc, _ := newTestService(&memStore{docs: docs}, fixtureDirectory())

	views, err := svc.GetDocumentsByType(context.Background(), AllTypes(), identity.MapClaims{"email": "a@x.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, v := range views {
		src := docs[i]
		if !reflect.DeepEqual(v, ToView(src)) {
			t.Errorf("view %d = %+v, want projection of %+v", i, v, src)
		}
	}
}
