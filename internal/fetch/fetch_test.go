package fetch

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/hamed0406/scopeping/internal/api"
)

type fakeSource struct {
	groups    map[string][]api.Program
	groupErr  map[string]error
	scopes    map[api.ID][]api.Scope
	scopeErr  map[api.ID]error
	scopeHits []api.ID
}

func (f *fakeSource) GroupPrograms(_ context.Context, gid string) ([]api.Program, error) {
	if err := f.groupErr[gid]; err != nil {
		return nil, err
	}
	return f.groups[gid], nil
}

func (f *fakeSource) ProgramScopes(_ context.Context, id api.ID) ([]api.Scope, error) {
	f.scopeHits = append(f.scopeHits, id)
	if err := f.scopeErr[id]; err != nil {
		return nil, err
	}
	return f.scopes[id], nil
}

func notFound(path string) error {
	return &api.StatusError{Method: "GET", URL: path, Code: 404}
}

func TestFetch_FiltersInScopeAndFallsBackToTarget(t *testing.T) {
	src := &fakeSource{
		groups: map[string][]api.Program{"1": {{ID: "10", Name: "Acme"}}},
		scopes: map[api.ID][]api.Scope{"10": {
			{ScopeType: "in_scope", Domain: "a.example"},
			{ScopeType: "out_of_scope", Domain: "skip.example"},
			{ScopeType: "in_scope", Target: "b.example"},
			{ScopeType: "in_scope"},
		}},
	}
	f := &Fetcher{Src: src, Log: zap.NewNop()}

	res, err := f.Fetch(context.Background(), []string{"1"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(res.Targets) != 2 {
		t.Fatalf("want 2 targets, got %+v", res.Targets)
	}
	if res.Targets[0].Domain != "a.example" || res.Targets[1].Domain != "b.example" {
		t.Fatalf("unexpected order/domains: %+v", res.Targets)
	}
	if res.Targets[1].Program != "Acme" {
		t.Fatalf("program not attached: %+v", res.Targets[1])
	}
	if res.Skipped != nil {
		t.Fatalf("nothing should be skipped: %v", res.Skipped)
	}
}

func TestFetch_SkipsFailedGroupAndProgram(t *testing.T) {
	src := &fakeSource{
		groups: map[string][]api.Program{
			"2": {{ID: "20", Name: "Broken"}, {ID: "21", Name: "Fine"}},
		},
		groupErr: map[string]error{"1": notFound("/api/groups/1/programs/")},
		scopes: map[api.ID][]api.Scope{
			"21": {{ScopeType: "in_scope", Domain: "fine.example"}},
		},
		scopeErr: map[api.ID]error{"20": notFound("/api/programs/20/scopes/")},
	}
	f := &Fetcher{Src: src, Log: zap.NewNop()}

	res, err := f.Fetch(context.Background(), []string{"1", " ", "2"})
	if err != nil {
		t.Fatalf("status errors must not abort: %v", err)
	}
	if len(res.Targets) != 1 || res.Targets[0].Domain != "fine.example" {
		t.Fatalf("unexpected targets: %+v", res.Targets)
	}
	if n := len(multierr.Errors(res.Skipped)); n != 2 {
		t.Fatalf("want 2 skipped, got %d (%v)", n, res.Skipped)
	}
	if len(src.scopeHits) != 2 {
		t.Fatalf("both programs of group 2 should be queried: %v", src.scopeHits)
	}
}

func TestFetch_TransportErrorAborts(t *testing.T) {
	boom := errors.New("connection refused")
	src := &fakeSource{
		groups:   map[string][]api.Program{"1": {{ID: "10", Name: "Acme"}}},
		scopes:   map[api.ID][]api.Scope{"10": {{ScopeType: "in_scope", Domain: "a.example"}}},
		groupErr: map[string]error{"2": boom},
	}
	f := &Fetcher{Src: src, Log: zap.NewNop()}

	res, err := f.Fetch(context.Background(), []string{"1", "2"})
	if !errors.Is(err, boom) {
		t.Fatalf("want transport error, got %v", err)
	}
	if len(res.Targets) != 0 {
		t.Fatalf("aborted fetch must return no targets: %+v", res.Targets)
	}
}

func TestFetch_EmptyIsValid(t *testing.T) {
	f := &Fetcher{Src: &fakeSource{}, Log: zap.NewNop()}
	res, err := f.Fetch(context.Background(), []string{"9"})
	if err != nil || len(res.Targets) != 0 {
		t.Fatalf("want empty result, got %+v %v", res, err)
	}
}
