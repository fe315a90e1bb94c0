package identity

import (
	"reflect"
	"testing"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name   string
		claims ClaimSource
		want   []Candidate
	}{
		{
			name:   "nil claims",
			claims: nil,
			want:   []Candidate{},
		},
		{
			name:   "empty claims",
			claims: MapClaims{},
			want:   []Candidate{},
		},
		{
			name:   "subject only",
			claims: MapClaims{"sub": "auth0|1"},
			want:   []Candidate{},
		},
		{
			name:   "email only",
			claims: MapClaims{"email": "a@x.com"},
			want:   []Candidate{{Claim: ClaimEmail, Kind: ByEmail, Value: "a@x.com"}},
		},
		{
			name:   "all claims in precedence order",
			claims: MapClaims{"name": "Alice A", "given_name": "alice", "email": "a@x.com"},
			want: []Candidate{
				{Claim: ClaimEmail, Kind: ByEmail, Value: "a@x.com"},
				{Claim: ClaimGivenName, Kind: ByUsername, Value: "alice"},
				{Claim: ClaimName, Kind: ByUsername, Value: "Alice A"},
			},
		},
		{
			name:   "name only",
			claims: MapClaims{"name": "bob"},
			want:   []Candidate{{Claim: ClaimName, Kind: ByUsername, Value: "bob"}},
		},
		{
			name:   "empty values skipped",
			claims: MapClaims{"email": "", "given_name": "alice"},
			want:   []Candidate{{Claim: ClaimGivenName, Kind: ByUsername, Value: "alice"}},
		},
		{
			name:   "values kept verbatim",
			claims: MapClaims{"email": " a@x.com ", "given_name": "  "},
			want: []Candidate{
				{Claim: ClaimEmail, Kind: ByEmail, Value: " a@x.com "},
				{Claim: ClaimGivenName, Kind: ByUsername, Value: "  "},
			},
		},
		{
			name:   "duplicate username dropped",
			claims: MapClaims{"given_name": "alice", "name": "alice"},
			want:   []Candidate{{Claim: ClaimGivenName, Kind: ByUsername, Value: "alice"}},
		},
		{
			name:   "same value under different kinds kept",
			claims: MapClaims{"email": "alice", "name": "alice"},
			want: []Candidate{
				{Claim: ClaimEmail, Kind: ByEmail, Value: "alice"},
				{Claim: ClaimName, Kind: ByUsername, Value: "alice"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.claims)
			if got == nil {
				t.Fatal("Extract() returned nil slice")
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Extract() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestKind_String(t *testing.T) {
	if ByEmail.String() != "email" || ByUsername.String() != "username" || Kind(0).String() != "unknown" {
		t.Error("unexpected Kind string values")
	}
}
