package helper

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
)

// LoadEnv loads the given env files (".env" if none are given) into the process environment.
// Missing files are skipped, variables that are already set are not overwritten.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}

	for _, path := range paths {
		err := godotenv.Load(path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return NewError("load env file "+path, err)
		}
	}

	return nil
}
