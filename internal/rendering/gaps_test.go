package rendering

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderGaps(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Finding
	}{
		{
			name:  "mixed markers and blank line",
			input: "- Missing AWS cert\n\n* No Python experience",
			want: []Finding{
				{Text: "Missing AWS cert", HTML: "Missing AWS cert"},
				{Text: "No Python experience", HTML: "No Python experience"},
			},
		},
		{
			name:  "bullet glyph and emphasis",
			input: "• **Kubernetes** not shown",
			want:  []Finding{{Text: "**Kubernetes** not shown", HTML: "<strong>Kubernetes</strong> not shown"}},
		},
		{
			name:  "leading bold without marker keeps asterisks",
			input: "**Go** generics",
			want:  []Finding{{Text: "**Go** generics", HTML: "<strong>Go</strong> generics"}},
		},
		{
			name:  "only one marker stripped",
			input: "- - nested",
			want:  []Finding{{Text: "- nested", HTML: "- nested"}},
		},
		{
			name:  "lone marker dropped",
			input: "-\n   \n•",
			want:  []Finding{},
		},
		{
			name:  "escaped",
			input: "No <b>HTML</b> & CSS",
			want:  []Finding{{Text: "No <b>HTML</b> & CSS", HTML: "No &lt;b&gt;HTML&lt;/b&gt; &amp; CSS"}},
		},
		{
			name:  "duplicates kept in order",
			input: "a\nb\na",
			want: []Finding{
				{Text: "a", HTML: "a"},
				{Text: "b", HTML: "b"},
				{Text: "a", HTML: "a"},
			},
		},
		{
			name:  "empty",
			input: "",
			want:  []Finding{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RenderGaps(tt.input))
		})
	}
}
