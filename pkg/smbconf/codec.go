// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package smbconf

import (
	"bufio"
	"fmt"
	"strings"
)

// Indent precedes every key = value line written by Serialize.
const Indent = "   "

// Diagnostic describes an input line that Parse skipped.
type Diagnostic struct {
	Line   int    `json:"line"`
	Text   string `json:"text"`
	Reason string `json:"reason"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("line %d: %s: %q", d.Line, d.Reason, d.Text)
}

const (
	ReasonOutsideSection = "parameter outside of any section"
	ReasonNoAssignment   = "line has no '='"
	ReasonEmptyKey       = "empty parameter name"
	ReasonEmptySection   = "empty section name"
	ReasonUnreadable     = "input could not be read, remaining lines ignored"
)

// MaxLineLength is the longest line Parse accepts.
const MaxLineLength = 1024 * 1024

// Parse scans text line by line. Blank lines and lines starting with '#' or
// ';' are ignored. "[name]" opens a section; "key = value" lines inside a
// section are split on the first '='. Anything else is skipped and reported
// as a diagnostic, so a partially broken file still yields every section
// that could be read.
//
// Headers repeated within the same text are folded into the first section
// of that name, later keys overriding earlier ones.
func Parse(text string) (*Document, []Diagnostic) {
	doc := NewDocument()
	var diags []Diagnostic
	var current *Section

	flush := func() {
		if current != nil {
			doc.Append(current)
			current = nil
		}
	}

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineLength)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := scanner.Text()
		line := strings.TrimSpace(raw)

		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}

		if name, ok := SectionHeader(line); ok {
			flush()
			if name == "" {
				diags = append(diags, Diagnostic{Line: lineNo, Text: raw, Reason: ReasonEmptySection})
				continue
			}
			current = NewSection(name)
			continue
		}

		if current == nil {
			diags = append(diags, Diagnostic{Line: lineNo, Text: raw, Reason: ReasonOutsideSection})
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			diags = append(diags, Diagnostic{Line: lineNo, Text: raw, Reason: ReasonNoAssignment})
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			diags = append(diags, Diagnostic{Line: lineNo, Text: raw, Reason: ReasonEmptyKey})
			continue
		}
		current.Set(key, strings.TrimSpace(value))
	}
	if err := scanner.Err(); err != nil {
		diags = append(diags, Diagnostic{Line: lineNo + 1, Text: err.Error(), Reason: ReasonUnreadable})
	}
	flush()

	return doc, diags
}

// SectionHeader reports whether a trimmed line is a "[name]" header and
// returns the trimmed name.
func SectionHeader(line string) (string, bool) {
	if len(line) < 2 || line[0] != '[' || line[len(line)-1] != ']' {
		return "", false
	}
	return strings.TrimSpace(line[1 : len(line)-1]), true
}

// Serialize writes doc in section order: a "[name]" header, one indented
// "key = value" line per entry, then a blank line.
func Serialize(doc *Document) string {
	var b strings.Builder
	for _, s := range doc.Sections {
		WriteSection(&b, s)
	}
	return b.String()
}

// WriteSection appends one serialized section to b.
func WriteSection(b *strings.Builder, s *Section) {
	b.WriteString("[")
	b.WriteString(s.Name)
	b.WriteString("]\n")
	for _, e := range s.Entries {
		b.WriteString(Indent)
		b.WriteString(e.Key)
		b.WriteString(" = ")
		b.WriteString(e.Value)
		b.WriteString("\n")
	}
	b.WriteString("\n")
}
