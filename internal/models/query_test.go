package models

import "testing"

func TestSearchQueryValidate(t *testing.T) {
	q := &SearchQuery{}
	if err := q.Validate(); err == nil {
		t.Error("empty query must fail validation")
	}

	q = &SearchQuery{Query: "red sunset"}
	if err := q.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if q.Limit != 5 {
		t.Errorf("default limit = %d, want 5", q.Limit)
	}

	q = &SearchQuery{Query: "x", Limit: 500}
	_ = q.Validate()
	if q.Limit != 100 {
		t.Errorf("limit capped to %d, want 100", q.Limit)
	}
}

func TestSearchQueryOptimizeEnabled(t *testing.T) {
	q := &SearchQuery{Query: "cats"}
	if !q.OptimizeEnabled() {
		t.Error("optimize should default to true")
	}
	f := false
	q.Optimize = &f
	if q.OptimizeEnabled() {
		t.Error("optimize=false not honored")
	}
}
