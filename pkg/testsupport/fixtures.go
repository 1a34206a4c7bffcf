// Package testsupport seeds tests with campus datasets, either into a
// private SQLite database or into an in-memory fake of every service.
package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// FixturePath resolves a dataset file name inside the calling package's
// testdata directory.
func FixturePath(filename string) string {
	return filepath.Join("testdata", filename)
}

// LoadFixture reads a raw testdata file and fails the test when it is
// missing.
func LoadFixture(t testing.TB, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("testdata %s: %v", path, err)
	}
	return data
}

// LoadFixtureJSON decodes a testdata file into dest. Datasets and key
// scenario tables are both loaded this way.
func LoadFixtureJSON(t testing.TB, path string, dest any) {
	t.Helper()

	if err := json.Unmarshal(LoadFixture(t, path), dest); err != nil {
		t.Fatalf("testdata %s: decode: %v", path, err)
	}
}
