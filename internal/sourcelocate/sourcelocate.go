// Package sourcelocate maps a logical source path to the physical file
// backing it, probing the tree's source directory before its generated
// object directory — the "source-file locator" collaborator named but
// not designed by the cross-reference builder. Path-joining follows the
// same root-relative convention pkg/pathutil/convert.go uses to convert
// between absolute and relative representations elsewhere in this repo.
package sourcelocate

import (
	"fmt"
	"os"
	"path/filepath"
)

// Locate returns the first of filesPath/logicalPath and
// objdirPath/logicalPath that exists on disk. Callers treat a miss as a
// per-file I/O error: log it and skip the file.
func Locate(logicalPath, filesPath, objdirPath string) (string, error) {
	candidates := []string{
		filepath.Join(filesPath, logicalPath),
		filepath.Join(objdirPath, logicalPath),
	}
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("sourcelocate: %s not found under %s or %s", logicalPath, filesPath, objdirPath)
}

// AnalysisPath returns the location of logicalPath's analysis file under
// indexPath, the fixed "analysis/<logical_path>" layout the analysis-file
// reader collaborator expects.
func AnalysisPath(indexPath, logicalPath string) string {
	return filepath.Join(indexPath, "analysis", logicalPath)
}
