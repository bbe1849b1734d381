package nativedep

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/magefile/mage/sh"
)

// ExecResult holds the outcome of one external command: its exit code and
// the separately captured stdout and stderr streams. It only lives for the
// duration of one command's error checking.
type ExecResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// ExecOptions controls how an external command runs.
type ExecOptions struct {
	// Dir is the working directory for the command. Empty means the
	// current directory.
	Dir string

	// Env holds extra environment variables, appended to the current
	// process environment.
	Env map[string]string

	// Warn receives non-fatal diagnostic messages. Nil discards them.
	Warn func(msg string)
}

// NotFoundError reports that an external tool's executable does not exist,
// so the operator gets an actionable message instead of a generic OS error.
type NotFoundError struct {
	Tool string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%q is not present on this system", e.Tool)
}

// ExecProcess runs one external command to completion, capturing stdout and
// stderr separately.
//
// A missing executable yields a *NotFoundError. A nonzero exit yields an
// error carrying the joined command line and the captured stderr text, along
// with the partially filled ExecResult. Both conditions are fatal to the
// enclosing build; nothing is retried.
func ExecProcess(ctx context.Context, opts ExecOptions, cmdline ...string) (*ExecResult, error) {
	if len(cmdline) == 0 {
		return nil, errors.New("empty command line")
	}

	cmd := exec.CommandContext(ctx, cmdline[0], cmdline[1:]...)
	cmd.Dir = opts.Dir

	cmd.Env = os.Environ()
	for key, value := range opts.Env {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", key, value))
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	result := &ExecResult{
		ExitCode: sh.ExitStatus(err),
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}

	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, &NotFoundError{Tool: cmdline[0]}
		}

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return result, fmt.Errorf("got return value %d while executing %q, stderr output was:\n%s",
				result.ExitCode, strings.Join(cmdline, " "), strings.TrimRight(result.Stderr, "\n"))
		}

		return result, err
	}

	return result, nil
}

// makeCandidates returns the make program names to try, in order, for the
// given GOOS. BSD-derived systems ship a non-GNU make, so gmake is tried
// first there.
func makeCandidates(goos string) []string {
	if strings.Contains(goos, "bsd") || goos == "dragonfly" {
		return []string{"gmake", "make"}
	}
	return []string{"make"}
}

// ExecMake runs make with the given arguments, selecting the right make
// variant for the platform.
//
// On BSD-derived systems gmake is attempted first; falling back to plain make
// there emits a warning through opts.Warn since the vendored Makefiles need
// GNU make. When no make variant exists, the returned error is a
// *NotFoundError for "make".
func ExecMake(ctx context.Context, opts ExecOptions, args ...string) (*ExecResult, error) {
	candidates := makeCandidates(runtime.GOOS)

	for i, program := range candidates {
		if i > 0 && opts.Warn != nil {
			opts.Warn(fmt.Sprintf("%s not found, running plain make on a BSD-derived system; "+
				"it will likely fail, consider installing GNU make from the ports collection", candidates[0]))
		}

		result, err := ExecProcess(ctx, opts, append([]string{program}, args...)...)

		var notFound *NotFoundError
		if errors.As(err, &notFound) {
			continue
		}
		return result, err
	}

	return nil, &NotFoundError{Tool: "make"}
}
