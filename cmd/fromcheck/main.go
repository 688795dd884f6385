package main

import (
	"os"

	"github.com/pkg/errors"
)

func main() {
	err := Execute()
	if err == nil {
		return
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		os.Exit(exitErr.Code)
	}

	os.Exit(1)
}
