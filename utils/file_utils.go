package utils

import (
	"os"
)

// FileSize returns the size of the file at path in bytes. SQLite write-ahead
// and shared-memory files next to it are included.
func FileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	total := info.Size()
	for _, suffix := range []string{"-wal", "-shm"} {
		if extra, err := os.Stat(path + suffix); err == nil {
			total += extra.Size()
		}
	}
	return total, nil
}
