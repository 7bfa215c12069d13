// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package smbconf reads and writes the section-based Samba configuration
// grammar. Sections and the keys within them keep their insertion order so
// that rewritten files diff cleanly against hand-edited ones.
package smbconf

// Entry is a single key = value line.
type Entry struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// Section is a named block of entries.
type Section struct {
	Name    string
	Entries []Entry
}

// NewSection returns an empty section with the given name.
func NewSection(name string) *Section {
	return &Section{Name: name}
}

// Get returns the value stored under key. Keys are compared exactly.
func (s *Section) Get(key string) (string, bool) {
	for _, e := range s.Entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return "", false
}

// Set replaces the value of an existing key in place or appends a new entry.
func (s *Section) Set(key, value string) {
	for i := range s.Entries {
		if s.Entries[i].Key == key {
			s.Entries[i].Value = value
			return
		}
	}
	s.Entries = append(s.Entries, Entry{Key: key, Value: value})
}

// Delete removes key and reports whether it was present.
func (s *Section) Delete(key string) bool {
	for i := range s.Entries {
		if s.Entries[i].Key == key {
			s.Entries = append(s.Entries[:i], s.Entries[i+1:]...)
			return true
		}
	}
	return false
}

// Keys returns the section's keys in order.
func (s *Section) Keys() []string {
	keys := make([]string, 0, len(s.Entries))
	for _, e := range s.Entries {
		keys = append(keys, e.Key)
	}
	return keys
}

// Clone returns a deep copy.
func (s *Section) Clone() *Section {
	c := &Section{Name: s.Name, Entries: make([]Entry, len(s.Entries))}
	copy(c.Entries, s.Entries)
	return c
}

// Document is an ordered set of uniquely named sections.
type Document struct {
	Sections []*Section
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{}
}

// Section returns the named section or nil.
func (d *Document) Section(name string) *Section {
	for _, s := range d.Sections {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// AddSection appends a new section, or returns the existing one with that name.
func (d *Document) AddSection(name string) *Section {
	if s := d.Section(name); s != nil {
		return s
	}
	s := NewSection(name)
	d.Sections = append(d.Sections, s)
	return s
}

// Append adds sec to the document. An existing section of the same name
// absorbs sec's entries instead, later values winning.
func (d *Document) Append(sec *Section) {
	existing := d.Section(sec.Name)
	if existing == nil {
		d.Sections = append(d.Sections, sec)
		return
	}
	for _, e := range sec.Entries {
		existing.Set(e.Key, e.Value)
	}
}

// RemoveSection deletes the named section and reports whether it existed.
func (d *Document) RemoveSection(name string) bool {
	for i, s := range d.Sections {
		if s.Name == name {
			d.Sections = append(d.Sections[:i], d.Sections[i+1:]...)
			return true
		}
	}
	return false
}

// Names lists section names in document order.
func (d *Document) Names() []string {
	names := make([]string, 0, len(d.Sections))
	for _, s := range d.Sections {
		names = append(names, s.Name)
	}
	return names
}
