// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/kballard/go-shellquote"
	"github.com/stratastor/logger"
	rterrors "github.com/stratastor/smbadmin/pkg/errors"
)

// Dangerous characters that could enable command injection
var dangerousChars = "&|><$`\\;{}"

// HasUnsafeChars reports whether s contains a character ValidateCommand refuses.
func HasUnsafeChars(s string) bool {
	return strings.ContainsAny(s, dangerousChars)
}

// Command execution timeout
const DefaultCommandTimeout = 30 * time.Second

// Commands that never need elevation
var unprivilegedCommands = map[string]bool{
	"getent":   true,
	"sudo":     true,
	"testparm": true,
	"true":     true,
}

// CommandExecutor runs external commands, optionally through non-interactive sudo
type CommandExecutor struct {
	logger  logger.Logger
	useSudo bool
	timeout time.Duration
}

func NewCommandExecutor(l logger.Logger, useSudo bool) *CommandExecutor {
	return &CommandExecutor{
		logger:  l,
		useSudo: useSudo,
		timeout: DefaultCommandTimeout,
	}
}

// UseSudo reports whether privileged commands are prefixed with "sudo -n".
func (e *CommandExecutor) UseSudo() bool {
	return e.useSudo
}

// Execute runs name with args, feeding stdin when non-nil, and returns the
// combined output.
func (e *CommandExecutor) Execute(
	ctx context.Context,
	stdin []byte,
	name string,
	args ...string,
) ([]byte, error) {
	if err := ValidateCommand(name, args); err != nil {
		return nil, err
	}

	// Apply timeout if not already set
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	argv := e.buildArgv(name, args)
	cmdString := shellquote.Join(argv...)
	e.logger.Debug("Executing command", "cmd", cmdString)

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}

	output, err := cmd.CombinedOutput()
	if err == nil {
		return output, nil
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		e.logger.Error("Command timed out", "cmd", cmdString)
		return output, rterrors.New(rterrors.CommandTimeout, "command execution timed out").
			WithMetadata("command", cmdString)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		e.logger.Debug("Command exited with non-zero status",
			"cmd", cmdString,
			"exit_code", exitErr.ExitCode(),
			"output", string(output))

		return output, rterrors.Wrap(err, rterrors.CommandExecution).
			WithMetadata("command", cmdString).
			WithMetadata("exit_code", strconv.Itoa(exitErr.ExitCode())).
			WithMetadata("output", strings.TrimSpace(string(output)))
	}

	e.logger.Error("Command execution failed",
		"cmd", cmdString,
		"err", err)

	if errors.Is(err, exec.ErrNotFound) {
		return output, rterrors.Wrap(err, rterrors.CommandNotFound).
			WithMetadata("command", cmdString)
	}
	return output, rterrors.Wrap(err, rterrors.CommandExecution).
		WithMetadata("command", cmdString)
}

func (e *CommandExecutor) buildArgv(name string, args []string) []string {
	argv := make([]string, 0, len(args)+3)
	if e.useSudo && !unprivilegedCommands[name] {
		argv = append(argv, "sudo", "-n")
	}
	argv = append(argv, name)
	return append(argv, args...)
}

// ExitCode extracts the exit status recorded by Execute, or -1.
func ExitCode(err error) int {
	var re *rterrors.RodentError
	if !errors.As(err, &re) {
		return -1
	}
	code, convErr := strconv.Atoi(re.Metadata["exit_code"])
	if convErr != nil {
		return -1
	}
	return code
}

// ValidateCommand performs security checks on the command and arguments
func ValidateCommand(name string, args []string) error {
	if name == "" {
		return rterrors.New(rterrors.CommandInvalidInput, "empty command")
	}

	if !strings.HasPrefix(name, "/") && strings.ContainsAny(name, "/\\") {
		return rterrors.New(
			rterrors.CommandInvalidInput,
			"relative paths are not allowed for commands",
		)
	}

	if HasUnsafeChars(name) {
		return rterrors.New(rterrors.CommandInvalidInput, "command contains invalid characters")
	}

	for _, arg := range args {
		if HasUnsafeChars(arg) {
			return rterrors.New(
				rterrors.CommandInvalidInput,
				"argument contains invalid characters",
			).WithMetadata("arg", arg)
		}

		for _, part := range strings.Split(arg, "/") {
			if part == ".." {
				return rterrors.New(rterrors.CommandInvalidInput, "path traversal not allowed").
					WithMetadata("arg", arg)
			}
		}
	}

	if len(args) > 64 {
		return rterrors.New(rterrors.CommandInvalidInput, "too many arguments")
	}

	return nil
}
