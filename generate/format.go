package generate

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/teranos/markgen/errors"
	"github.com/teranos/markgen/logger"
)

// runFormatter pipes content through command, which must read source on
// stdin and print the formatted source on stdout (rustfmt and gofmt both
// do this when given no file arguments). The command runs in dir.
func runFormatter(ctx context.Context, command, dir string, content []byte) ([]byte, error) {
	args, err := shellquote.Split(command)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid format_command %q", command)
	}
	if len(args) == 0 {
		return content, nil
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = dir
	cmd.Stdin = bytes.NewReader(content)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		err = errors.Wrapf(err, "format_command %q failed", command)
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			err = errors.WithDetail(err, msg)
		}
		return nil, err
	}
	if stdout.Len() == 0 {
		err := errors.Newf("format_command %q printed nothing", command)
		return nil, errors.WithHint(err, "the formatter must write the formatted source to stdout")
	}

	if logger.ShouldOutput(logger.Verbosity, logger.OutputFormatter) && stderr.Len() > 0 {
		logger.ComponentLogger("generate").Debugw("Formatter output", "stderr", stderr.String())
	}
	return stdout.Bytes(), nil
}
