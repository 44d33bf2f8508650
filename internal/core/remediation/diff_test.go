package remediation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/surakshit-dev/surakshit/internal/dtos"
)

func TestBuildDiffRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		original string
		modified string
	}{
		{
			name:     "single line change",
			original: `const password = "x";`,
			modified: `const password = process.env.PASSWORD;`,
		},
		{
			name:     "change in the middle of a file",
			original: "a\nb\nc\nd",
			modified: "a\nB\nc\nd",
		},
		{
			name:     "added lines",
			original: "a\nb",
			modified: "a\nx\ny\nb",
		},
		{
			name:     "deleted lines",
			original: "a\nx\ny\nb",
			modified: "a\nb",
		},
		{
			name:     "empty original",
			original: "",
			modified: "content",
		},
		{
			name:     "empty modified",
			original: "content",
			modified: "",
		},
		{
			name:     "identical content",
			original: "same\nlines",
			modified: "same\nlines",
		},
		{
			name:     "trailing newline",
			original: "a\nb\n",
			modified: "a\nc\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			patch := BuildDiff("/a.js", tt.original, tt.modified)
			rollback := BuildDiff("/a.js", tt.modified, tt.original)

			patched, err := ApplyPatch(tt.original, patch.DiffContent)
			require.NoError(t, err)
			assert.Equal(t, tt.modified, patched)

			restored, err := ApplyPatch(patched, rollback.DiffContent)
			require.NoError(t, err)
			assert.Equal(t, tt.original, restored)
		})
	}
}

func TestBuildDiffContent(t *testing.T) {
	patch := BuildDiff("/a.js", "old line", "new line")

	assert.Contains(t, patch.DiffContent, "--- a//a.js")
	assert.Contains(t, patch.DiffContent, "+++ b//a.js")
	assert.Contains(t, patch.DiffContent, "-old line")
	assert.Contains(t, patch.DiffContent, "+new line")
	assert.NotEmpty(t, patch.DiffContent)
}

func TestLineChanges(t *testing.T) {
	t.Run("replacement is reported as MODIFY", func(t *testing.T) {
		patch := BuildDiff("/a.js", "a\nold\nc", "a\nnew\nc")

		require.Len(t, patch.LineChanges, 1)
		change := patch.LineChanges[0]
		assert.Equal(t, dtos.ChangeModify, change.ChangeType)
		assert.Equal(t, 2, change.LineNumber)
		assert.Equal(t, "old", *change.OriginalLine)
		assert.Equal(t, "new", *change.NewLine)
	})

	t.Run("pure insertion is ADD", func(t *testing.T) {
		patch := BuildDiff("/a.js", "a\nb", "a\nx\nb")

		require.Len(t, patch.LineChanges, 1)
		assert.Equal(t, dtos.ChangeAdd, patch.LineChanges[0].ChangeType)
		assert.Equal(t, "x", *patch.LineChanges[0].NewLine)
	})

	t.Run("pure removal is DELETE", func(t *testing.T) {
		patch := BuildDiff("/a.js", "a\nx\nb", "a\nb")

		require.Len(t, patch.LineChanges, 1)
		assert.Equal(t, dtos.ChangeDelete, patch.LineChanges[0].ChangeType)
		assert.Equal(t, "x", *patch.LineChanges[0].OriginalLine)
		assert.Equal(t, 2, patch.LineChanges[0].LineNumber)
	})
}

func TestApplyPatchRejectsForeignContent(t *testing.T) {
	patch := BuildDiff("/a.js", "a\nb\nc", "a\nB\nc")

	_, err := ApplyPatch("totally\ndifferent\ncontent", patch.DiffContent)
	assert.Error(t, err)
}

func TestApplyPatchRejectsMalformedDiff(t *testing.T) {
	_, err := ApplyPatch("content", "not a diff")
	assert.Error(t, err)
}
