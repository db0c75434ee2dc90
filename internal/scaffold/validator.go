package scaffold

import (
	"fmt"
	"os"
	"path/filepath"
)

// CheckExisting checks if the config or its .env.example already exist.
// Returns an error if they do, nil otherwise
func CheckExisting(configPath string) error {
	var existingFiles []string

	for _, path := range []string{configPath, filepath.Join(filepath.Dir(configPath), EnvExampleFile)} {
		if _, err := os.Stat(path); err == nil {
			existingFiles = append(existingFiles, path)
		}
	}

	if len(existingFiles) > 0 {
		errMsg := "game already initialized\n\nFound existing"
		if len(existingFiles) == 1 {
			errMsg += fmt.Sprintf(": %s\n", existingFiles[0])
		} else {
			errMsg += " files:\n"
			for _, file := range existingFiles {
				errMsg += fmt.Sprintf("  - %s\n", file)
			}
		}
		errMsg += "\nUse 'santa init --force' to overwrite them"

		return fmt.Errorf("%s", errMsg)
	}

	return nil
}
