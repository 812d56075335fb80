package sanitizer

import "testing"

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "basic trim", input: "  hello  ", want: "hello"},
		{name: "multiple spaces", input: "hello    world", want: "hello world"},
		{name: "tabs and newlines", input: "hello\t\nworld", want: "hello world"},
		{name: "empty", input: "", want: ""},
		{name: "only whitespace", input: "   \t\n  ", want: ""},
		{name: "control characters dropped", input: "gate\x00code 42", want: "gatecode 42"},
		{name: "preserve unicode", input: " Café & Spa™ ", want: "Café & Spa™"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TrimAndNormalize(tt.input)
			if got != tt.want {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeLabel(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "Deep  Clean", want: "deep clean"},
		{input: " MOVE-OUT ", want: "move-out"},
		{input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := NormalizeLabel(tt.input)
			if got != tt.want {
				t.Errorf("NormalizeLabel(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if again := NormalizeLabel(got); again != got {
				t.Errorf("NormalizeLabel not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestPipeline_AppliesInOrder(t *testing.T) {
	p := Pipeline{
		func(s string) string { return s + "a" },
		func(s string) string { return s + "b" },
	}
	if got := p.Apply("x"); got != "xab" {
		t.Errorf("Apply() = %q, want %q", got, "xab")
	}
}
