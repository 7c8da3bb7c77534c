package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// CopySelectedFiles copies the raw gameN files of the selected match indices
// from srcDir into destDir and returns how many were copied. Match index i
// corresponds to game file game(i+1). Missing source files are logged and
// skipped.
func CopySelectedFiles(srcDir, destDir string, selected []int, logger *logrus.Logger) (int, error) {
	if _, err := os.Stat(srcDir); err != nil {
		return 0, fmt.Errorf("source directory not found: %w", err)
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return 0, fmt.Errorf("failed to create destination directory: %w", err)
	}

	copied := 0
	for _, idx := range selected {
		name := fmt.Sprintf("game%d", idx+1)
		src := filepath.Join(srcDir, name)
		dest := filepath.Join(destDir, name)

		if err := copyFile(src, dest); err != nil {
			if os.IsNotExist(err) {
				logger.WithField("game_file", name).Warn("Game file not found, skipping")
				continue
			}
			return copied, fmt.Errorf("failed to copy %s: %w", name, err)
		}
		copied++
	}
	return copied, nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
