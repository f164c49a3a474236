package identity

import (
	"encoding/hex"
	"strings"
	"testing"
)

func TestNew_FormatAndDecode(t *testing.T) {
	got := New()

	// length
	if len(got) != 32 {
		t.Fatalf("length = %d, want 32 (got=%q)", len(got), got)
	}
	// lowercase hex only (no separators/prefixes)
	if !IsValid(got) {
		t.Fatalf("not 32-char lowercase hex: %q", got)
	}
	// decodes to exactly 16 bytes
	b, err := hex.DecodeString(got)
	if err != nil {
		t.Fatalf("hex.DecodeString error: %v", err)
	}
	if len(b) != 16 {
		t.Fatalf("decoded bytes = %d, want 16", len(b))
	}
}

func TestNew_Uniqueness(t *testing.T) {
	const n = 200
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		id := New()
		if _, ok := seen[id]; ok {
			t.Fatalf("duplicate identity after %d iterations: %q", i, id)
		}
		seen[id] = struct{}{}
	}
}

func TestIsValid(t *testing.T) {
	valid := []string{
		strings.Repeat("a", 32),
		"3f9a6a1b3d544fbe8b3a6b3e8d6b2c88",
	}
	for _, s := range valid {
		if !IsValid(s) {
			t.Fatalf("IsValid should accept %q", s)
		}
	}

	invalid := []string{
		"",                                  // empty
		strings.Repeat("A", 32),             // uppercase
		"deadbeef",                          // too short
		strings.Repeat("g", 32),             // non-hex char
		"3f9a6a1b3d544fbe8b3a6b3e8d6b2c8",   // 31 chars
		"3f9a6a1b3d544fbe8b3a6b3e8d6b2c88x", // 33 with extra
		"3f9a6a1b-3d54-4fbe-8b3a6b3e8d6b2c", // separators
	}
	for _, s := range invalid {
		if IsValid(s) {
			t.Fatalf("IsValid should reject %q", s)
		}
	}
}
