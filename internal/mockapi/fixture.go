package mockapi

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hamed0406/scopeping/internal/api"
)

// Fixture describes the groups, programs and scopes the mock API serves.
//
//	tokens: [dev-token]
//	groups:
//	  - id: "1"
//	    programs:
//	      - id: "10"
//	        name: Acme
//	        scopes:
//	          - {scope_type: in_scope, domain: example.com}
//
// A non-zero status on a group or program makes that endpoint fail with it.
// rate_limit: {per_minute: N, burst: M} throttles clients with 429 answers.
type Fixture struct {
	Tokens    []string       `yaml:"tokens"`
	RateLimit RateLimit      `yaml:"rate_limit"`
	Groups    []FixtureGroup `yaml:"groups"`
}

type FixtureGroup struct {
	ID       string           `yaml:"id"`
	Status   int              `yaml:"status"`
	Programs []FixtureProgram `yaml:"programs"`
}

type FixtureProgram struct {
	ID     string      `yaml:"id"`
	Name   string      `yaml:"name"`
	Status int         `yaml:"status"`
	Scopes []api.Scope `yaml:"scopes"`
}

func ParseFixture(b []byte) (Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(b, &f); err != nil {
		return Fixture{}, fmt.Errorf("parse fixture: %w", err)
	}
	seen := map[string]bool{}
	for _, g := range f.Groups {
		if g.ID == "" {
			return Fixture{}, fmt.Errorf("parse fixture: group without id")
		}
		for _, p := range g.Programs {
			if p.ID == "" {
				return Fixture{}, fmt.Errorf("parse fixture: program without id in group %s", g.ID)
			}
			if seen[p.ID] {
				return Fixture{}, fmt.Errorf("parse fixture: duplicate program id %s", p.ID)
			}
			seen[p.ID] = true
		}
	}
	return f, nil
}

func LoadFixture(path string) (Fixture, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Fixture{}, fmt.Errorf("read fixture: %w", err)
	}
	return ParseFixture(b)
}
