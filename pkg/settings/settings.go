// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package settings reads and edits the [global] section of the live Samba
// configuration in place, leaving every other line untouched.
package settings

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/stratastor/smbadmin/pkg/errors"
	"github.com/stratastor/smbadmin/pkg/smbconf"
)

// On-disk parameter names
const (
	KeyServerString = "server string"
	KeyWorkgroup    = "workgroup"
	KeyLogLevel     = "log level"
	KeyInterfaces   = "interfaces"
	KeyHostsAllow   = "hosts allow"
	KeyHostsDeny    = "hosts deny"
	KeyInclude      = "include"
)

// Defaults substituted when the live file cannot provide a value
const (
	DefaultServerString = "Samba Server"
	DefaultWorkgroup    = "WORKGROUP"
	DefaultLogLevel     = "1"
)

const globalSection = "global"

var validate = validator.New()

// GlobalSettings is the editable subset of [global]. Err is set when the
// values could not all be read and defaults were substituted; the record is
// still safe to render.
type GlobalSettings struct {
	ServerString string `json:"server_string" yaml:"server_string"`
	Workgroup    string `json:"workgroup" yaml:"workgroup" validate:"omitempty,max=15"`
	LogLevel     string `json:"log_level" yaml:"log_level"`
	Interfaces   string `json:"interfaces,omitempty" yaml:"interfaces,omitempty"`
	HostsAllow   string `json:"hosts_allow,omitempty" yaml:"hosts_allow,omitempty"`
	HostsDeny    string `json:"hosts_deny,omitempty" yaml:"hosts_deny,omitempty"`

	Err string `json:"error,omitempty" yaml:"error,omitempty"`
}

type field struct {
	key      string
	def      string
	required bool
	get      func(*GlobalSettings) *string
}

var fields = []field{
	{KeyServerString, DefaultServerString, true, func(g *GlobalSettings) *string { return &g.ServerString }},
	{KeyWorkgroup, DefaultWorkgroup, true, func(g *GlobalSettings) *string { return &g.Workgroup }},
	{KeyLogLevel, DefaultLogLevel, true, func(g *GlobalSettings) *string { return &g.LogLevel }},
	{KeyInterfaces, "", false, func(g *GlobalSettings) *string { return &g.Interfaces }},
	{KeyHostsAllow, "", false, func(g *GlobalSettings) *string { return &g.HostsAllow }},
	{KeyHostsDeny, "", false, func(g *GlobalSettings) *string { return &g.HostsDeny }},
}

// Defaults returns the settings used for a fresh configuration.
func Defaults() GlobalSettings {
	return GlobalSettings{
		ServerString: DefaultServerString,
		Workgroup:    DefaultWorkgroup,
		LogLevel:     DefaultLogLevel,
	}
}

// Values lists the non-empty fields as on-disk key/value pairs.
func (g GlobalSettings) Values() []smbconf.Entry {
	var out []smbconf.Entry
	for _, f := range fields {
		if v := strings.TrimSpace(*f.get(&g)); v != "" {
			out = append(out, smbconf.Entry{Key: f.key, Value: v})
		}
	}
	return out
}

// Validate rejects values that would break the line-oriented file format.
func (g GlobalSettings) Validate() error {
	values := g.Values()
	if len(values) == 0 {
		return errors.New(errors.SettingsInvalidInput, "no settings provided")
	}
	if err := validate.Struct(g); err != nil {
		return errors.New(errors.SettingsInvalidInput, err.Error())
	}
	for _, e := range values {
		if strings.ContainsAny(e.Value, "\r\n") {
			return errors.New(errors.SettingsInvalidInput, "values must be a single line").
				WithMetadata("key", e.Key)
		}
	}
	return nil
}

// keyRegex matches "key = value" for key on a single line, tolerating any
// case and whitespace in the key.
func keyRegex(key string) *regexp.Regexp {
	words := strings.Fields(key)
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`(?i)^([ \t]*)` + strings.Join(words, `[ \t_]*`) + `[ \t]*=[ \t]*(.*?)[ \t]*$`)
}

// globalRegion returns the line span [start, end) of the [global] body,
// or start = -1 when the section is absent.
func globalRegion(lines []string) (int, int) {
	start := -1
	for i, line := range lines {
		name, ok := smbconf.SectionHeader(strings.TrimSpace(line))
		if !ok {
			continue
		}
		if start >= 0 {
			return start, i
		}
		if strings.EqualFold(name, globalSection) {
			start = i + 1
		}
	}
	if start < 0 {
		return -1, -1
	}
	return start, len(lines)
}

// Extract reads the known fields from the [global] section of text.
// Missing required fields fall back to defaults and are named in Err.
func Extract(text string) GlobalSettings {
	var g GlobalSettings
	lines := strings.Split(text, "\n")
	start, end := globalRegion(lines)

	var missing []string
	for _, f := range fields {
		value, found := "", false
		if start >= 0 {
			value, found = lookup(lines[start:end], f.key)
		}
		if !found && f.required {
			missing = append(missing, f.key)
			value = f.def
		}
		*f.get(&g) = value
	}
	if len(missing) > 0 {
		g.Err = fmt.Sprintf("missing from [global]: %s", strings.Join(missing, ", "))
	}
	return g
}

func lookup(lines []string, key string) (string, bool) {
	re := keyRegex(key)
	value, found := "", false
	for _, line := range lines {
		if m := re.FindStringSubmatch(line); m != nil {
			// Later occurrences win, as in Samba
			value, found = m[2], true
		}
	}
	return value, found
}

// Apply substitutes each entry inside the [global] section of text,
// appending keys that are not present yet and making sure an include of
// includePath exists. Lines outside [global] are never touched. Text without
// a [global] section gets one prepended.
func Apply(text string, entries []smbconf.Entry, includePath string) string {
	lines := strings.Split(text, "\n")
	start, end := globalRegion(lines)
	if start < 0 {
		lines = append([]string{"[" + globalSection + "]", ""}, lines...)
		start, end = 1, 1
	}

	region := slices.Clone(lines[start:end])
	var pending []string
	for _, e := range entries {
		re := keyRegex(e.Key)
		replaced := false
		for i, line := range region {
			if m := re.FindStringSubmatch(line); m != nil {
				region[i] = m[1] + e.Key + " = " + e.Value
				replaced = true
			}
		}
		if !replaced {
			pending = append(pending, smbconf.Indent+e.Key+" = "+e.Value)
		}
	}

	if includePath != "" && !hasInclude(region, includePath) {
		pending = append(pending, smbconf.Indent+KeyInclude+" = "+includePath)
	}

	if len(pending) > 0 {
		at := lastContentLine(region) + 1
		region = append(region[:at], append(pending, region[at:]...)...)
	}

	out := make([]string, 0, len(lines)+len(pending))
	out = append(out, lines[:start]...)
	out = append(out, region...)
	out = append(out, lines[end:]...)
	return strings.Join(out, "\n")
}

func hasInclude(region []string, includePath string) bool {
	re := keyRegex(KeyInclude)
	for _, line := range region {
		if m := re.FindStringSubmatch(line); m != nil && m[2] == includePath {
			return true
		}
	}
	return false
}

func lastContentLine(region []string) int {
	for i := len(region) - 1; i >= 0; i-- {
		if strings.TrimSpace(region[i]) != "" {
			return i
		}
	}
	return -1
}

// Template renders a minimal live configuration for g.
func Template(g GlobalSettings, includePath string) string {
	d := Defaults()
	setIfEmpty(&g.ServerString, d.ServerString)
	setIfEmpty(&g.Workgroup, d.Workgroup)
	setIfEmpty(&g.LogLevel, d.LogLevel)

	sec := smbconf.NewSection(globalSection)
	for _, e := range g.Values() {
		sec.Set(e.Key, e.Value)
	}
	if includePath != "" {
		sec.Set(KeyInclude, includePath)
	}
	return smbconf.Serialize(&smbconf.Document{Sections: []*smbconf.Section{sec}})
}

func setIfEmpty(v *string, def string) {
	if strings.TrimSpace(*v) == "" {
		*v = def
	}
}
