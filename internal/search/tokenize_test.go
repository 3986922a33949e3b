package search

import (
	"reflect"
	"testing"
)

func TestTokenizeCamelCase(t *testing.T) {
	toks := Tokenize("formatDate")
	want := map[string]bool{"formatdate": true, "format": true, "date": true}
	for _, tok := range toks {
		if !want[tok] {
			t.Errorf("unexpected token %q in %v", tok, toks)
		}
	}
	if !contains(toks, "formatdate") || !contains(toks, "format") || !contains(toks, "date") {
		t.Fatalf("expected fused+split tokens, got %v", toks)
	}
}

func TestTokenizeSnakeCase(t *testing.T) {
	toks := Tokenize("user_service")
	if !contains(toks, "user") || !contains(toks, "service") {
		t.Fatalf("expected split tokens, got %v", toks)
	}
}

func TestTokenizeAcronym(t *testing.T) {
	toks := Tokenize("HTTPServer")
	if !contains(toks, "http") || !contains(toks, "server") {
		t.Fatalf("expected acronym split, got %v", toks)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func TestTokenizeEmpty(t *testing.T) {
	if got := Tokenize(""); !reflect.DeepEqual(got, []string(nil)) {
		t.Fatalf("expected nil for empty input, got %v", got)
	}
}
