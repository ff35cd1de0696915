package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// LoadEnvFiles loads BLOGSCRAPE_* variables from dotenv files in dir:
// .env.local first, then .env. godotenv never overrides a variable that is
// already set, so the real environment wins over both files and .env.local
// wins over .env. Missing files are ignored.
func LoadEnvFiles(dir string) error {
	for _, name := range []string{".env.local", ".env"} {
		if err := godotenv.Load(filepath.Join(dir, name)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load %s: %w", name, err)
		}
	}
	return nil
}
