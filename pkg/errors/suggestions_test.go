// Package errors tests for the suggestions registry.
package errors

import "testing"

func TestRegistry_GetPriorityAndConditions(t *testing.T) {
	r := NewRegistry()
	r.Register("CODE", "low")
	r.RegisterSuggestion("CODE", Suggestion{Text: "high", Priority: 5})
	r.RegisterWithCondition("CODE", "bars only", map[string]string{"kind": "bar"})

	got := r.Get("CODE", nil)
	if len(got) != 2 || got[0] != "high" || got[1] != "low" {
		t.Errorf("unexpected suggestions without context: %v", got)
	}

	got = r.Get("CODE", map[string]string{"kind": "bar"})
	if len(got) != 3 {
		t.Errorf("expected 3 suggestions with matching context, got %v", got)
	}

	if len(r.Get("MISSING", nil)) != 0 {
		t.Error("expected no suggestions for unknown code")
	}
	if r.HasSuggestions("MISSING") {
		t.Error("expected no suggestions for unknown code")
	}
}

func TestDefaultRegistry_CoversCoreCodes(t *testing.T) {
	for _, code := range []string{
		ErrTemplateMissingRole, ErrTemplateInvalid, ErrDataShapeMismatch,
		ErrDataMalformedKey, ErrLayoutTooManyGroups, ErrExportInvalidState,
	} {
		if !DefaultRegistry().HasSuggestions(code) {
			t.Errorf("expected built-in suggestions for %s", code)
		}
	}
}

func TestAttachSuggestions(t *testing.T) {
	if AttachSuggestions(nil) != nil {
		t.Error("expected nil for nil error")
	}

	pe := AttachSuggestions(DataErrorf(ErrDataMalformedKey, "bad").WithContext("kind", "bar"))
	if len(pe.Suggestions) != 2 {
		t.Errorf("expected title and bar suggestions, got %v", pe.Suggestions)
	}

	pe = AttachSuggestions(DataErrorf(ErrDataMalformedKey, "bad"))
	if len(pe.Suggestions) != 1 {
		t.Errorf("expected only the title suggestion, got %v", pe.Suggestions)
	}
}
