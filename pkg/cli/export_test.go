package cli

import (
	"io"

	"github.com/m-mizutani/fireconf"
)

// SetOutput redirects command output and returns a function restoring it
func SetOutput(w io.Writer) func() {
	prev := output
	output = w
	return func() { output = prev }
}

// IndexConfig exposes the Firestore index configuration
func IndexConfig() *fireconf.Config {
	return getIndexConfig()
}
