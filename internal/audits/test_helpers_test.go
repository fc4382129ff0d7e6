package audits

import (
	"encoding/json"
	"os"
	"testing"
)

func loadFixture(t *testing.T, path string) []byte {
	t.Helper()
	payload, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fixture %s: %v", path, err)
	}
	return payload
}

// mutateFixture decodes the valid fixture, applies fn and re-encodes it.
func mutateFixture(t *testing.T, fn func(m map[string]any)) string {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(loadFixture(t, "testdata/valid_result.json"), &m); err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	fn(m)
	out, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return string(out)
}

func categoriesOf(m map[string]any) map[string]any {
	return m["categories"].(map[string]any)
}
