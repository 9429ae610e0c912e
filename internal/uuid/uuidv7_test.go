package uuid

import (
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	id := New()
	if !IsValid(id) {
		t.Fatalf("New() returned invalid uuid %q", id)
	}
	// version nibble is the first character of the third group
	if groups := strings.Split(id, "-"); groups[2][0] != '7' {
		t.Errorf("expected version 7, got %q", id)
	}
}

func TestNewIsTimeOrdered(t *testing.T) {
	prev := New()
	for i := 0; i < 100; i++ {
		next := New()
		if next <= prev {
			t.Fatalf("expected %q > %q", next, prev)
		}
		prev = next
	}
}

func TestParse(t *testing.T) {
	t.Run("canonicalises", func(t *testing.T) {
		got, err := Parse("0190F3A4-5B6C-7D8E-9F00-112233445566")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "0190f3a4-5b6c-7d8e-9f00-112233445566" {
			t.Errorf("unexpected canonical form %q", got)
		}
	})

	t.Run("rejects_garbage", func(t *testing.T) {
		if _, err := Parse("not-a-uuid"); err == nil {
			t.Error("expected error for invalid uuid")
		}
		if IsValid("") {
			t.Error("empty string should not be valid")
		}
	})
}
