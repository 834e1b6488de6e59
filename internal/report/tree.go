// Package report renders the result of a restore run for the terminal.
package report

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/acm19/waexif/internal/pics"
	"github.com/disiqueira/gotree/v3"
)

// FileTree groups relative file paths under their directories.
type FileTree struct {
	tree gotree.Tree
	dirs map[string]gotree.Tree
}

// NewFileTree creates an empty tree labelled rootLabel.
func NewFileTree(rootLabel string) FileTree {
	return FileTree{tree: gotree.New(rootLabel), dirs: make(map[string]gotree.Tree)}
}

func (t FileTree) getDir(dirPath string) (dir gotree.Tree) {
	if dirPath == "." || dirPath == "" {
		return t.tree
	}
	dir = t.dirs[dirPath]
	if dir == nil {
		parentDir := t.getDir(filepath.Dir(dirPath))
		dir = parentDir.Add(filepath.Base(dirPath) + string(filepath.Separator))
		t.dirs[dirPath] = dir
	}
	return
}

// Insert adds a file given by its path relative to the root.
func (t FileTree) Insert(relPath string) {
	t.getDir(filepath.Dir(relPath)).Add(filepath.Base(relPath))
}

// Render returns the tree drawn with box characters.
func (t FileTree) Render() string {
	return t.tree.Print()
}

// ExcludedTree draws the files of summary that were excluded by extension.
// It returns "" when nothing was excluded.
func ExcludedTree(root string, summary pics.Summary) string {
	if len(summary.Excluded) == 0 {
		return ""
	}
	tree := NewFileTree(fmt.Sprintf("%s (%d excluded)", root, len(summary.Excluded)))
	for _, rel := range summary.Excluded {
		tree.Insert(rel)
	}
	return tree.Render()
}

// SummaryLine describes the outcome counts of a run on one line.
func SummaryLine(summary pics.Summary) string {
	order := []pics.ProcessingOutcome{
		pics.OutcomeUpdated,
		pics.OutcomeAlreadyTagged,
		pics.OutcomeInvalidName,
		pics.OutcomeInvalidData,
		pics.OutcomeFailed,
		pics.OutcomeExcluded,
	}
	parts := make([]string, 0, len(order))
	for _, outcome := range order {
		parts = append(parts, fmt.Sprintf("%s=%d", outcome, summary.Counts[outcome]))
	}
	return fmt.Sprintf("%d files: %s", summary.Total, strings.Join(parts, " "))
}
