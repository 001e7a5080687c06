package cli

import (
	"fmt"
	"os"
)

// writeOutput writes data to path, or to stdout when path is empty or "-".
// It reports whether the data went to a file.
func writeOutput(path string, data []byte) (bool, error) {
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(data)
		return false, err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	return true, nil
}
