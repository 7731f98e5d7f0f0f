package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	var total float64
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func TestNormalizePath(t *testing.T) {
	cases := map[string]string{
		"":                          "/",
		"/":                         "/",
		"/oauth/authorize?x=1":      "/oauth/authorize",
		"/users/12345":              "/users/:param",
		"/t/0f8fad5b-d9cb-469f-a165": "/t/:param",
		"oauth//token":              "/oauth/token",
	}
	for in, want := range cases {
		if got := NormalizePath(in); got != want {
			t.Fatalf("NormalizePath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRegisterAndObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	h, err := Register(reg)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if h == nil {
		t.Fatal("nil handler")
	}

	before := counterValue(t, reg, "oauth_grants_total")
	ObserveGrant("token", "ok")
	if got := counterValue(t, reg, "oauth_grants_total"); got != before+1 {
		t.Fatalf("oauth_grants_total = %v, want %v", got, before+1)
	}

	// segundo Register sobre otro registry no debe fallar
	if _, err := Register(prometheus.NewRegistry()); err != nil {
		t.Fatalf("second Register: %v", err)
	}
}
