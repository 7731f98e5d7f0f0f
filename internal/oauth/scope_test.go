package oauth

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEffectiveScope(t *testing.T) {
	allowed := []string{"read", "write"}
	cases := []struct {
		name      string
		requested string
		want      []string
		wantErr   bool
	}{
		{name: "none requested grants all", requested: "", want: []string{"read", "write"}},
		{name: "narrowed", requested: "read update", want: []string{"read"}},
		{name: "requested order kept", requested: "write read", want: []string{"write", "read"}},
		{name: "duplicates collapsed", requested: "read read", want: []string{"read"}},
		{name: "disjoint", requested: "admin", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := EffectiveScope(tc.requested, allowed)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidScope) {
					t.Fatalf("want invalid scope, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("scope mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEffectiveScope_DoesNotAliasAllowed(t *testing.T) {
	allowed := []string{"read"}
	got, _ := EffectiveScope("", allowed)
	got[0] = "admin"
	if allowed[0] != "read" {
		t.Fatal("EffectiveScope returned the client's slice")
	}
}
