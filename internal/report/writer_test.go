package report

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteJSONCreatesDirectories(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "nested", "report.json")
	if err := WriteJSON(path, map[string]int{"violations": 2}); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), "\"violations\": 2") {
		t.Fatalf("unexpected content: %s", b)
	}
}

func TestWriteChecksumsIsSortedAndStable(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "report.json")
	htmlPath := filepath.Join(dir, "report.html")
	if err := os.WriteFile(jsonPath, []byte(`{"passed":true}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(htmlPath, []byte("<html></html>"), 0o644); err != nil {
		t.Fatal(err)
	}

	checksumsPath := filepath.Join(dir, "checksums.sha256")
	if err := WriteChecksums(checksumsPath, []string{jsonPath, htmlPath}); err != nil {
		t.Fatal(err)
	}
	first, err := os.ReadFile(checksumsPath)
	if err != nil {
		t.Fatal(err)
	}

	// Reversed input order must produce identical bytes.
	if err := WriteChecksums(checksumsPath, []string{htmlPath, jsonPath}); err != nil {
		t.Fatal(err)
	}
	second, err := os.ReadFile(checksumsPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(second) {
		t.Fatalf("checksum manifest not stable:\n%s\n%s", first, second)
	}

	lines := strings.Split(strings.TrimSuffix(string(first), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected two manifest lines, got %d", len(lines))
	}
	sum := sha256.Sum256([]byte(`{"passed":true}`))
	want := fmt.Sprintf("%s  report.json", hex.EncodeToString(sum[:]))
	found := false
	for _, line := range lines {
		if line == want {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected line %q in manifest:\n%s", want, first)
	}
}

func TestWriteChecksumsFailsOnMissingArtifact(t *testing.T) {
	dir := t.TempDir()
	err := WriteChecksums(filepath.Join(dir, "checksums.sha256"), []string{filepath.Join(dir, "absent.json")})
	if err == nil {
		t.Fatal("expected error for missing artifact")
	}
	if !strings.Contains(err.Error(), "checksum read failed") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDefaultPathsSitNextToReport(t *testing.T) {
	if got := DefaultChecksumsPath("/tmp/out/report.json"); got != "/tmp/out/checksums.sha256" {
		t.Fatalf("unexpected checksums path: %s", got)
	}
	if got := DefaultRunLogPath("/tmp/out/report.json"); got != "/tmp/out/security-gate.run.log" {
		t.Fatalf("unexpected run log path: %s", got)
	}
	if got := DefaultChecksumsPath(""); got != "checksums.sha256" {
		t.Fatalf("unexpected fallback checksums path: %s", got)
	}
}
