// Package remediation synthesizes ranked remediation strategies for an
// analyzed finding: a reversible patch, generated tests and optional CI
// changes per strategy.
package remediation

import (
	"fmt"
	"strings"

	"github.com/surakshit-dev/surakshit/internal/dtos"
)

// BuildDiff produces a unified diff between two versions of a file. The
// diff is a single hunk spanning the whole content, so applying it is an
// exact, verifiable replay: ApplyPatch(original, diff) == modified and the
// rollback built from (modified, original) inverts it.
func BuildDiff(filePath, original, modified string) dtos.UnifiedDiff {
	originalLines := strings.Split(original, "\n")
	modifiedLines := strings.Split(modified, "\n")
	ops := diffOps(originalLines, modifiedLines)

	var sb strings.Builder
	fmt.Fprintf(&sb, "--- a/%s\n", filePath)
	fmt.Fprintf(&sb, "+++ b/%s\n", filePath)
	fmt.Fprintf(&sb, "@@ -1,%d +1,%d @@\n", len(originalLines), len(modifiedLines))
	for i, op := range ops {
		sb.WriteByte(op.kind)
		sb.WriteString(op.text)
		if i < len(ops)-1 {
			sb.WriteByte('\n')
		}
	}

	return dtos.UnifiedDiff{
		FilePath:        filePath,
		OriginalContent: original,
		ModifiedContent: modified,
		DiffContent:     sb.String(),
		LineChanges:     lineChanges(ops),
	}
}

type diffOp struct {
	kind byte // ' ', '-', '+'
	text string
}

// diffOps computes a line-level diff via longest common subsequence.
// Contents are small (code snippets), so the quadratic table is fine.
func diffOps(a, b []string) []diffOp {
	lcs := make([][]int, len(a)+1)
	for i := range lcs {
		lcs[i] = make([]int, len(b)+1)
	}
	for i := len(a) - 1; i >= 0; i-- {
		for j := len(b) - 1; j >= 0; j-- {
			if a[i] == b[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else {
				lcs[i][j] = max(lcs[i+1][j], lcs[i][j+1])
			}
		}
	}

	ops := make([]diffOp, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			ops = append(ops, diffOp{' ', a[i]})
			i++
			j++
		case lcs[i+1][j] >= lcs[i][j+1]:
			ops = append(ops, diffOp{'-', a[i]})
			i++
		default:
			ops = append(ops, diffOp{'+', b[j]})
			j++
		}
	}
	for ; i < len(a); i++ {
		ops = append(ops, diffOp{'-', a[i]})
	}
	for ; j < len(b); j++ {
		ops = append(ops, diffOp{'+', b[j]})
	}
	return ops
}

// ApplyPatch replays diffContent against content and returns the patched
// result. Context and deletion lines are verified against the input; a
// mismatch means the diff does not belong to this content.
func ApplyPatch(content, diffContent string) (string, error) {
	lines := strings.Split(diffContent, "\n")
	if len(lines) < 3 || !strings.HasPrefix(lines[0], "--- ") || !strings.HasPrefix(lines[1], "+++ ") || !strings.HasPrefix(lines[2], "@@ ") {
		return "", fmt.Errorf("malformed diff: missing header")
	}

	source := strings.Split(content, "\n")
	out := make([]string, 0, len(source))
	idx := 0
	for _, line := range lines[3:] {
		if line == "" {
			// a bare empty line cannot occur inside the single hunk; every
			// op line carries at least its kind byte
			return "", fmt.Errorf("malformed diff: empty op line")
		}
		kind, text := line[0], line[1:]
		switch kind {
		case ' ':
			if idx >= len(source) || source[idx] != text {
				return "", fmt.Errorf("context mismatch at line %d", idx+1)
			}
			out = append(out, text)
			idx++
		case '-':
			if idx >= len(source) || source[idx] != text {
				return "", fmt.Errorf("deletion mismatch at line %d", idx+1)
			}
			idx++
		case '+':
			out = append(out, text)
		default:
			return "", fmt.Errorf("malformed diff: unknown op %q", string(kind))
		}
	}
	if idx != len(source) {
		return "", fmt.Errorf("diff does not cover the full content (%d of %d lines)", idx, len(source))
	}
	return strings.Join(out, "\n"), nil
}

// lineChanges summarizes the ops. A deletion directly followed by an
// addition is reported as a MODIFY of the original line.
func lineChanges(ops []diffOp) []dtos.LineChange {
	changes := []dtos.LineChange{}
	origLine, newLine := 1, 1
	for i := 0; i < len(ops); i++ {
		op := ops[i]
		switch op.kind {
		case ' ':
			origLine++
			newLine++
		case '-':
			if i+1 < len(ops) && ops[i+1].kind == '+' {
				changes = append(changes, dtos.LineChange{
					LineNumber:   origLine,
					ChangeType:   dtos.ChangeModify,
					OriginalLine: ptr(op.text),
					NewLine:      ptr(ops[i+1].text),
				})
				i++
				origLine++
				newLine++
				continue
			}
			changes = append(changes, dtos.LineChange{
				LineNumber:   origLine,
				ChangeType:   dtos.ChangeDelete,
				OriginalLine: ptr(op.text),
			})
			origLine++
		case '+':
			changes = append(changes, dtos.LineChange{
				LineNumber: newLine,
				ChangeType: dtos.ChangeAdd,
				NewLine:    ptr(op.text),
			})
			newLine++
		}
	}
	return changes
}

func ptr[T any](t T) *T {
	return &t
}
