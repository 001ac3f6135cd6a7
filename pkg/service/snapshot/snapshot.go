package snapshot

import (
	"path"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// ErrNotFound is returned when no snapshot has the requested name
var ErrNotFound = goerr.New("snapshot not found")

// validateName accepts a single path element such as "dev-a-20240101.json"
func validateName(name string) error {
	if name == "" {
		return goerr.New("snapshot name is required")
	}
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) || path.Clean(name) != name {
		return goerr.New("snapshot name must be a plain file name", goerr.V("name", name))
	}
	return nil
}
