package insight

import "testing"

func TestRenderHTML(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "bold markers",
			input: "The dataset contains **3** rows.",
			want:  "The dataset contains <strong>3</strong> rows.",
		},
		{
			name:  "plain text untouched",
			input: "No emphasis here.",
			want:  "No emphasis here.",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RenderHTML(tt.input); got != tt.want {
				t.Errorf("RenderHTML(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRenderAllHTML_PreservesOrder(t *testing.T) {
	in := []string{"**first**", "second"}
	got := RenderAllHTML(in)
	if len(got) != 2 {
		t.Fatalf("expected 2 rendered insights, got %d", len(got))
	}
	if got[0] != "<strong>first</strong>" || got[1] != "second" {
		t.Errorf("unexpected rendering: %q", got)
	}
}

func TestRenderAllHTML_EmptyInput(t *testing.T) {
	if got := RenderAllHTML(nil); len(got) != 0 {
		t.Errorf("expected empty slice, got %q", got)
	}
}
