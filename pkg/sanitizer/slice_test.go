package sanitizer

import (
	"reflect"
	"testing"
)

func TestNormalizeIDs(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{
			name:  "trim whitespace",
			input: []string{" a1 ", "b2"},
			want:  []string{"a1", "b2"},
		},
		{
			name:  "remove duplicates keeps first order",
			input: []string{"b2", "a1", " b2"},
			want:  []string{"b2", "a1"},
		},
		{
			name:  "filter empty strings",
			input: []string{"a1", "", "  "},
			want:  []string{"a1"},
		},
		{
			name:  "nil input",
			input: nil,
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeIDs(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NormalizeIDs(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeStringSlice_CustomStrategy(t *testing.T) {
	got := NormalizeStringSlice([]string{"Deep Clean", "deep  clean", "Windows"}, NormalizeLabel)
	want := []string{"deep clean", "windows"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeStringSlice() = %v, want %v", got, want)
	}
}
