package pipeline

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestParseModelJSON(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    map[string]any
		wantErr error
	}{
		{
			name: "plain json",
			raw:  `{"a": 1, "b": "two"}`,
			want: map[string]any{"a": float64(1), "b": "two"},
		},
		{
			name: "json fence",
			raw:  "```json\n{\"a\":1}\n```",
			want: map[string]any{"a": float64(1)},
		},
		{
			name: "bare fence",
			raw:  "```\n{\"a\":1, \"b\":2}\n```",
			want: map[string]any{"a": float64(1), "b": float64(2)},
		},
		{
			name: "missing closing braces",
			raw:  `{"a": 1, "b": 2`,
			want: map[string]any{"a": float64(1), "b": float64(2)},
		},
		{
			name: "trailing comma",
			raw:  `{"a": 1, "b": 2,}`,
			want: map[string]any{"a": float64(1), "b": float64(2)},
		},
		{
			name: "truncated nested object",
			raw:  `{"outer": {"inner": "value"`,
			want: map[string]any{"outer": map[string]any{"inner": "value"}},
		},
		{
			name:    "empty input",
			raw:     "",
			wantErr: ErrEmptyResponse,
		},
		{
			name:    "under minimum length",
			raw:     "{\"a\":1}",
			wantErr: ErrEmptyResponse,
		},
		{
			name:    "unrecoverable garbage",
			raw:     "the model refused to answer in JSON today",
			wantErr: ErrMalformedResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got map[string]any
			err := ParseModelJSON(tt.raw, &got)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseModelJSON() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseModelJSON() unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseModelJSON() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseModelJSONIdempotent(t *testing.T) {
	raw := `{"title": "Graph Theory", "sections": [{"heading": "Intro"}]}`

	var first map[string]any
	if err := ParseModelJSON(raw, &first); err != nil {
		t.Fatalf("first parse: %v", err)
	}

	reserialized, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var second map[string]any
	if err := ParseModelJSON(string(reserialized), &second); err != nil {
		t.Fatalf("second parse: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("parse is not idempotent: %v != %v", first, second)
	}
}

func TestFallbackOutlineShape(t *testing.T) {
	prompts := []string{
		"what is a red-black tree",
		"python vs go for backend services",
		"how to implement a linked list in C",
		"the history of the silk road",
	}

	for _, prompt := range prompts {
		t.Run(prompt, func(t *testing.T) {
			outline := FallbackOutline(prompt)

			if n := len(outline.Sections); n < 3 || n > 4 {
				t.Errorf("section count = %d, want 3-4", n)
			}
			for _, section := range outline.Sections {
				if len(section.Subsections) < 2 {
					t.Errorf("section %q has %d subsections, want >= 2", section.Heading, len(section.Subsections))
				}
				if len(section.ImagePrompts) != 0 {
					t.Errorf("section %q has image prompts, fallback must have none", section.Heading)
				}
			}
			if outline.TotalImages != 0 {
				t.Errorf("TotalImages = %d, want 0", outline.TotalImages)
			}
			if outline.ContentPrompt != prompt {
				t.Errorf("ContentPrompt = %q, want %q", outline.ContentPrompt, prompt)
			}
		})
	}
}

func TestFallbackOutlineTitle(t *testing.T) {
	long := strings.Repeat("machine learning ", 10)
	outline := FallbackOutline(long)
	if len([]rune(outline.Title)) > 60 {
		t.Errorf("title length = %d, want <= 60", len([]rune(outline.Title)))
	}

	if got := FallbackOutline("").Title; got != "Untitled Notes" {
		t.Errorf("empty prompt title = %q, want %q", got, "Untitled Notes")
	}
}

func TestClassifyPrompt(t *testing.T) {
	tests := []struct {
		prompt string
		want   promptFamily
	}{
		{"what is photosynthesis", familyDefinition},
		{"explain the krebs cycle", familyDefinition},
		{"rust vs go", familyComparison},
		{"difference between tcp and udp", familyComparison},
		{"how to bake sourdough", familyTutorial},
		{"implement quicksort in python", familyTutorial},
		{"the french revolution", familyDefault},
	}

	for _, tt := range tests {
		t.Run(tt.prompt, func(t *testing.T) {
			if got := classifyPrompt(tt.prompt); got != tt.want {
				t.Errorf("classifyPrompt(%q) = %d, want %d", tt.prompt, got, tt.want)
			}
		})
	}
}
