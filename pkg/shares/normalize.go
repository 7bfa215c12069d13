// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package shares

import (
	"slices"
	"strings"

	"github.com/stratastor/smbadmin/pkg/smbconf"
	"golang.org/x/text/cases"
)

// Canonical keys
const (
	KeyPath          = "path"
	KeyComment       = "comment"
	KeyBrowseable    = "browseable"
	KeyReadOnly      = "read_only"
	KeyGuestOK       = "guest_ok"
	KeyValidUsers    = "valid_users"
	KeyWriteList     = "write_list"
	KeyCreateMask    = "create_mask"
	KeyDirectoryMask = "directory_mask"
	KeyForceGroup    = "force_group"
)

const (
	DefaultMask       = "0775"
	DefaultForceGroup = "sambashare"

	// GroupSigil marks a group reference in user lists
	GroupSigil = "@"
)

// canonical key -> on-disk spelling, in emission order
var diskKeys = []struct {
	canonical string
	disk      string
}{
	{KeyPath, "path"},
	{KeyValidUsers, "valid users"},
	{KeyWriteList, "write list"},
	{KeyCreateMask, "create mask"},
	{KeyDirectoryMask, "directory mask"},
	{KeyComment, "comment"},
	{KeyBrowseable, "browseable"},
	{KeyReadOnly, "read only"},
	{KeyGuestOK, "guest ok"},
	{KeyForceGroup, "force group"},
}

// Always written, even when empty
var requiredKeys = []string{KeyPath, KeyValidUsers, KeyWriteList, KeyCreateMask, KeyDirectoryMask}

// folded on-disk spelling -> canonical key
var canonicalByFold = func() map[string]string {
	m := make(map[string]string, len(diskKeys)+1)
	for _, k := range diskKeys {
		m[foldKey(k.disk)] = k.canonical
	}
	m[foldKey("browsable")] = KeyBrowseable
	return m
}()

// foldKey collapses case, underscores and runs of whitespace the way Samba
// does when it looks up a parameter name.
func foldKey(key string) string {
	key = strings.ReplaceAll(key, "_", " ")
	return cases.Fold().String(strings.Join(strings.Fields(key), " "))
}

// CanonicalKey maps an on-disk parameter name to its canonical key.
func CanonicalKey(diskKey string) (string, bool) {
	c, ok := canonicalByFold[foldKey(diskKey)]
	return c, ok
}

// DiskKey maps a canonical key to its on-disk spelling. Unknown keys are
// returned unchanged.
func DiskKey(canonical string) string {
	for _, k := range diskKeys {
		if k.canonical == canonical {
			return k.disk
		}
	}
	return canonical
}

// CanonicalizeSection rewrites known keys to their standard on-disk spelling
// so that sections from different files can be merged key by key. Unknown
// keys are kept verbatim.
func CanonicalizeSection(sec *smbconf.Section) *smbconf.Section {
	out := smbconf.NewSection(sec.Name)
	for _, e := range sec.Entries {
		key := e.Key
		if c, ok := CanonicalKey(key); ok {
			key = DiskKey(c)
		}
		out.Set(key, e.Value)
	}
	return out
}

// Normalizer converts between sections and Share records.
type Normalizer struct {
	forceGroup string
}

func NewNormalizer(forceGroup string) *Normalizer {
	if forceGroup == "" {
		forceGroup = DefaultForceGroup
	}
	return &Normalizer{forceGroup: forceGroup}
}

// Normalize maps a section onto a Share, keeps unknown parameters in Extra
// and fills defaults.
func (n *Normalizer) Normalize(sec *smbconf.Section) Share {
	s := Share{Name: sec.Name}
	for _, e := range sec.Entries {
		c, ok := CanonicalKey(e.Key)
		if !ok {
			s.Extra = append(s.Extra, e)
			continue
		}
		if field := s.field(c); field != nil {
			*field = e.Value
		}
	}
	n.Complete(&s)
	return s
}

// Complete fills defaults, folds write_list into valid_users and refreshes
// the decomposed principal lists.
func (n *Normalizer) Complete(s *Share) {
	setDefault(&s.Browseable, Yes)
	setDefault(&s.ReadOnly, No)
	setDefault(&s.GuestOK, No)
	setDefault(&s.CreateMask, DefaultMask)
	setDefault(&s.DirectoryMask, DefaultMask)
	setDefault(&s.ForceGroup, n.forceGroup)

	s.ValidUsers = ReconcileUsers(s.ValidUsers, s.WriteList)
	s.ValidPrincipals = SplitPrincipals(s.ValidUsers)
	s.WritePrincipals = SplitPrincipals(s.WriteList)
}

// Denormalize renders s as a section: required keys first (even when
// empty), then the remaining populated keys, then Extra verbatim.
func (n *Normalizer) Denormalize(s Share) *smbconf.Section {
	sec := smbconf.NewSection(s.Name)
	for _, k := range diskKeys {
		value := *s.field(k.canonical)
		if value == "" && !slices.Contains(requiredKeys, k.canonical) {
			continue
		}
		sec.Set(k.disk, value)
	}
	for _, e := range s.Extra {
		key := e.Key
		if c, ok := CanonicalKey(key); ok {
			// A modelled key smuggled through Extra must not shadow the field
			if _, set := sec.Get(DiskKey(c)); set {
				continue
			}
			key = DiskKey(c)
		}
		sec.Set(key, e.Value)
	}
	return sec
}

func (s *Share) field(canonical string) *string {
	switch canonical {
	case KeyPath:
		return &s.Path
	case KeyComment:
		return &s.Comment
	case KeyBrowseable:
		return &s.Browseable
	case KeyReadOnly:
		return &s.ReadOnly
	case KeyGuestOK:
		return &s.GuestOK
	case KeyValidUsers:
		return &s.ValidUsers
	case KeyWriteList:
		return &s.WriteList
	case KeyCreateMask:
		return &s.CreateMask
	case KeyDirectoryMask:
		return &s.DirectoryMask
	case KeyForceGroup:
		return &s.ForceGroup
	}
	return nil
}

func setDefault(v *string, def string) {
	if strings.TrimSpace(*v) == "" {
		*v = def
	}
}

// ParseList splits a Samba list on commas or, absent commas, whitespace.
func ParseList(value string) []string {
	var result []string
	if strings.Contains(value, ",") {
		for _, part := range strings.Split(value, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return strings.Fields(value)
}

// ReconcileUsers appends every writeList identifier missing from
// validUsers. The original string is returned untouched when nothing is
// missing.
func ReconcileUsers(validUsers, writeList string) string {
	writers := ParseList(writeList)
	if len(writers) == 0 {
		return validUsers
	}
	users := ParseList(validUsers)
	var missing []string
	for _, w := range writers {
		if !slices.Contains(users, w) && !slices.Contains(missing, w) {
			missing = append(missing, w)
		}
	}
	if len(missing) == 0 {
		return validUsers
	}
	return strings.Join(append(users, missing...), ", ")
}

// SplitPrincipals separates "@group" references from plain user names.
func SplitPrincipals(list string) Principals {
	p := Principals{Users: []string{}, Groups: []string{}}
	for _, id := range ParseList(list) {
		if group, ok := strings.CutPrefix(id, GroupSigil); ok {
			if group != "" {
				p.Groups = append(p.Groups, group)
			}
			continue
		}
		p.Users = append(p.Users, id)
	}
	return p
}

// JoinPrincipals is the inverse of SplitPrincipals.
func JoinPrincipals(p Principals) string {
	ids := make([]string, 0, len(p.Users)+len(p.Groups))
	ids = append(ids, p.Users...)
	for _, g := range p.Groups {
		ids = append(ids, GroupSigil+g)
	}
	return strings.Join(ids, ", ")
}
