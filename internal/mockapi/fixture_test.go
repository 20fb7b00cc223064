package mockapi

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseFixture_Errors(t *testing.T) {
	cases := map[string]string{
		"bad yaml":       "groups: [",
		"group no id":    "groups:\n  - programs: []\n",
		"program no id":  "groups:\n  - id: \"1\"\n    programs:\n      - name: x\n",
		"duplicate prog": "groups:\n  - id: \"1\"\n    programs:\n      - {id: \"5\"}\n  - id: \"2\"\n    programs:\n      - {id: \"5\"}\n",
	}
	for name, body := range cases {
		if _, err := ParseFixture([]byte(body)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestLoadFixture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.yaml")
	if err := os.WriteFile(path, []byte(fixtureYAML), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	f, err := LoadFixture(path)
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	if len(f.Tokens) != 1 || len(f.Groups) != 2 || f.Groups[0].Programs[1].Status != 500 {
		t.Fatalf("unexpected fixture %+v", f)
	}
	if _, err := LoadFixture(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
