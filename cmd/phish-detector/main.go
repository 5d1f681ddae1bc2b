package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/mikey/phishguard/internal/adapters/filter"
	"github.com/mikey/phishguard/internal/di"
	"github.com/mikey/phishguard/internal/ports"
	"go.uber.org/zap"
)

func main() {
	flags := di.ParseFlags()

	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	if err := container.Invoke(run); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(flags *di.CLIFlags, logger *zap.Logger, emailFilter ports.EmailFilter) error {
	defer logger.Sync()

	cli, ok := emailFilter.(*filter.CliFilter)
	if !ok {
		return errors.Newf("unexpected filter type %T", emailFilter)
	}

	// Read email from file or stdin
	var emailReader io.Reader
	if flags.InputFile != "" {
		file, err := os.Open(flags.InputFile)
		if err != nil {
			return errors.Wrapf(err, "failed to open input file %s", flags.InputFile)
		}
		defer file.Close()
		emailReader = file
		logger.Debug("Reading email from file", zap.String("file", flags.InputFile))
	} else {
		emailReader = os.Stdin
		logger.Debug("Reading email from stdin")
	}

	email, err := cli.ReadEmail(bufio.NewReader(emailReader))
	if err != nil {
		return err
	}

	_, err = cli.ProcessEmail(context.Background(), email)
	return err
}
