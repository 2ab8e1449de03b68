package jsonutil

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"bare array", `["Travel","Food"]`, []string{"Travel", "Food"}},
		{"fenced", "```json\n[\"Travel\",\"Food\"]\n```", []string{"Travel", "Food"}},
		{"prose-wrapped", `Here are the topics: ["Travel","Food"] as requested.`, []string{"Travel", "Food"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse[[]string](tc.raw)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Errorf("got %v, want %v", got, tc.want)
					break
				}
			}
		})
	}
}

func TestParse_NoJSON(t *testing.T) {
	if _, err := Parse[[]string]("sorry, I cannot help with that"); err == nil {
		t.Error("expected error when no JSON is present")
	}
}

func TestParse_InvalidJSON(t *testing.T) {
	if _, err := Parse[[]string](`["unterminated`); err == nil {
		t.Error("expected error for malformed JSON")
	}
}
