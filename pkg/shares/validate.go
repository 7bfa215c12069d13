// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package shares

import (
	"strings"

	"github.com/stratastor/smbadmin/pkg/errors"
)

const (
	lineBreaks = "\r\n"
	// Characters that would end a key or open a section when written
	badKeyChars = "=[]" + lineBreaks
)

// ValidateShare rejects values that cannot be written as single
// "key = value" lines. It does not check the name's format, which only
// applies to shares being created.
func ValidateShare(s Share) error {
	fields := []struct {
		key   string
		value string
	}{
		{"name", s.Name},
		{"path", s.Path},
		{"comment", s.Comment},
		{"browseable", s.Browseable},
		{"read_only", s.ReadOnly},
		{"guest_ok", s.GuestOK},
		{"valid_users", s.ValidUsers},
		{"write_list", s.WriteList},
		{"create_mask", s.CreateMask},
		{"directory_mask", s.DirectoryMask},
		{"force_group", s.ForceGroup},
	}
	for _, f := range fields {
		if strings.ContainsAny(f.value, lineBreaks) {
			return errors.New(errors.SharesInvalidInput, "values must be a single line").
				WithMetadata("share", s.Name).
				WithMetadata("key", f.key)
		}
	}

	for _, e := range s.Extra {
		key := strings.TrimSpace(e.Key)
		if key == "" || strings.HasPrefix(key, "#") || strings.HasPrefix(key, ";") ||
			strings.ContainsAny(key, badKeyChars) {
			return errors.New(errors.SharesInvalidInput, "invalid parameter name").
				WithMetadata("share", s.Name).
				WithMetadata("key", e.Key)
		}
		if strings.ContainsAny(e.Value, lineBreaks) {
			return errors.New(errors.SharesInvalidInput, "values must be a single line").
				WithMetadata("share", s.Name).
				WithMetadata("key", e.Key)
		}
	}
	return nil
}

// ValidExistingName reports whether name can address a share that is
// already on disk. Any name Parse can produce qualifies.
func ValidExistingName(name string) bool {
	return strings.TrimSpace(name) != "" && !strings.ContainsAny(name, lineBreaks)
}
