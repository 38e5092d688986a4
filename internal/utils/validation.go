package utils

import (
	"os"

	"github.com/vd09-projects/go-param-elide/internal/log"
)

// MustNotErr logs err and exits with status 1. For use in main only.
func MustNotErr(err error) {
	if err != nil {
		log.Errorf("paramelide: %v", err)
		os.Exit(1)
	}
}
