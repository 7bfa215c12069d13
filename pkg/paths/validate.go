// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package paths checks share directories for accessibility and creates
// missing ones with the group ownership Samba expects.
package paths

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/stratastor/smbadmin/internal/command"
	"github.com/stratastor/smbadmin/pkg/errors"
	"golang.org/x/sys/unix"
)

const (
	MsgNotExist     = "Path does not exist"
	MsgNotDirectory = "Path is not a directory"
	MsgNotReadable  = "Path is not readable"
	MsgNotWritable  = "Path is not writable"
	MsgValid        = "Path is valid and accessible"
)

// Path traversal patterns to watch for
var pathTraversalRegex = regexp.MustCompile(`(^|/|\\)\.\.($|/|\\)`)

// CheckSyntax rejects paths that are empty, relative or not valid UTF-8, and
// paths containing traversal segments, non-printable characters or
// characters the privileged runner would refuse. Any other Unicode is
// accepted.
func CheckSyntax(path string) error {
	if path == "" {
		return errors.New(errors.SharesPathInvalid, "Path cannot be empty")
	}

	if !strings.HasPrefix(path, "/") {
		return errors.New(errors.SharesPathInvalid, "Path must be absolute").
			WithMetadata("path", path)
	}

	if pathTraversalRegex.MatchString(path) {
		return errors.New(errors.SharesPathInvalid, "Path contains directory traversal sequences").
			WithMetadata("path", path)
	}

	if !utf8.ValidString(path) || strings.IndexFunc(path, func(r rune) bool { return !unicode.IsPrint(r) }) >= 0 {
		return errors.New(errors.SharesPathInvalid, "Path contains non-printable characters").
			WithMetadata("path", path)
	}

	if command.HasUnsafeChars(path) {
		return errors.New(errors.SharesPathInvalid, "Path contains invalid characters").
			WithMetadata("path", path)
	}

	return nil
}

// Validate reports whether path is an existing directory the current
// process can both read and write. The message explains the first failed
// check.
func Validate(path string) (bool, string) {
	if err := CheckSyntax(path); err != nil {
		var re *errors.RodentError
		if errors.As(err, &re) {
			return false, re.Details
		}
		return false, err.Error()
	}

	path = filepath.Clean(path)
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, MsgNotExist
		}
		if os.IsPermission(err) {
			return false, MsgNotReadable
		}
		return false, err.Error()
	}
	if !info.IsDir() {
		return false, MsgNotDirectory
	}

	if unix.Access(path, unix.R_OK|unix.X_OK) != nil {
		return false, MsgNotReadable
	}
	if unix.Access(path, unix.W_OK) != nil {
		return false, MsgNotWritable
	}

	return true, MsgValid
}
