package main

import (
	"os"

	"github.com/ygidtu/NetProphet-2.0/internal/cmd"
	"github.com/ygidtu/NetProphet-2.0/internal/errors"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(errors.ExitCode(err))
	}
}
