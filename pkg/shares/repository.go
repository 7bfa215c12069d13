// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package shares

import (
	"context"
	"regexp"
	"slices"
	"strings"

	"github.com/stratastor/logger"
	"github.com/stratastor/smbadmin/internal/system/privilege"
	"github.com/stratastor/smbadmin/pkg/errors"
	"github.com/stratastor/smbadmin/pkg/metrics"
	"github.com/stratastor/smbadmin/pkg/smbconf"
)

// StagedHeader opens every staged shares file this package writes.
const StagedHeader = "# Samba shares configuration\n"

var (
	// Sections that never appear as shares
	DefaultReservedSections = []string{"global", "printers", "print$"}

	// Shares that may be listed but not changed
	DefaultReservedShares = []string{"share", "secure-share"}

	shareNameRegex = regexp.MustCompile(`^[a-zA-Z0-9][-a-zA-Z0-9_.$ ]{0,79}$`)
)

// ValidName reports whether name is acceptable as a new share name.
func ValidName(name string) bool {
	return shareNameRegex.MatchString(name)
}

// Config locates the configuration files the repository reads and writes.
type Config struct {
	// LiveFile is the file the running service reads
	LiveFile string
	// StagedFile receives every write
	StagedFile string
	// ExtraSources are read like LiveFile, before it, and never written
	ExtraSources []string
	// SeedStaged creates an empty staged file on load when it is missing
	SeedStaged bool

	ReservedShares   []string
	ReservedSections []string
	ForceGroup       string
}

// Repository loads, merges and persists shares. Nothing is cached: every
// call re-reads the files, and concurrent writers race (last write wins).
type Repository struct {
	logger      logger.Logger
	files       privilege.FileOperations
	reloader    Reloader
	provisioner PathProvisioner
	normalizer  *Normalizer
	metrics     *metrics.Metrics
	cfg         Config
}

var _ SharesManager = (*Repository)(nil)

type Option func(*Repository)

// WithMetrics records operation outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Repository) { r.metrics = m }
}

func NewRepository(
	l logger.Logger,
	files privilege.FileOperations,
	reloader Reloader,
	provisioner PathProvisioner,
	cfg Config,
	opts ...Option,
) (*Repository, error) {
	if cfg.StagedFile == "" {
		return nil, errors.New(errors.ConfigInvalid, "staged shares file is not configured")
	}
	if cfg.ReservedShares == nil {
		cfg.ReservedShares = DefaultReservedShares
	}
	if cfg.ReservedSections == nil {
		cfg.ReservedSections = DefaultReservedSections
	}

	r := &Repository{
		logger:      l,
		files:       files,
		reloader:    reloader,
		provisioner: provisioner,
		normalizer:  NewNormalizer(cfg.ForceGroup),
		cfg:         cfg,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Normalizer exposes the repository's normalizer for callers building records.
func (r *Repository) Normalizer() *Normalizer {
	return r.normalizer
}

// IsReserved reports whether name is one of the protected share names.
func (r *Repository) IsReserved(name string) bool {
	return containsFold(r.cfg.ReservedShares, name)
}

func (r *Repository) isReservedSection(name string) bool {
	return containsFold(r.cfg.ReservedSections, name)
}

// LoadAll returns live shares in file order followed by staged-only shares.
// A share defined in both files takes each parameter from the staged file
// when present there. Unreadable files are logged and skipped.
func (r *Repository) LoadAll(ctx context.Context) ([]Share, error) {
	doc := r.loadMerged(ctx)
	shares := make([]Share, 0, len(doc.Sections))
	for _, sec := range doc.Sections {
		shares = append(shares, r.normalizer.Normalize(sec))
	}
	r.metrics.SetShareCount(len(shares))
	return shares, nil
}

// Get returns a single share by name.
func (r *Repository) Get(ctx context.Context, name string) (*Share, error) {
	all, err := r.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].Name == name {
			return &all[i], nil
		}
	}
	return nil, errors.New(errors.SharesNotFound, name).WithMetadata("share", name)
}

// AddOrUpdate replaces the share with the same name, or appends it, and
// rewrites the staged file with the full merged set. The share's directory
// is provisioned first. A failed restart leaves the written file in place
// and is reported as SharesReloadFailed.
func (r *Repository) AddOrUpdate(ctx context.Context, share Share) (err error) {
	defer func() { r.metrics.ObserveOperation("shares", "add_or_update", err) }()

	if err := r.checkMutable(share.Name); err != nil {
		return err
	}
	if err := ValidateShare(share); err != nil {
		return err
	}

	all, err := r.LoadAll(ctx)
	if err != nil {
		return err
	}
	idx := slices.IndexFunc(all, func(s Share) bool { return s.Name == share.Name })
	if idx < 0 {
		if err := checkNewName(share.Name); err != nil {
			return err
		}
	}

	if r.provisioner != nil {
		if err := r.provisioner.Ensure(ctx, share.Path); err != nil {
			r.logger.Warn("Share path is not usable", "share", share.Name, "path", share.Path, "err", err)
			return err
		}
	}

	r.normalizer.Complete(&share)
	if idx >= 0 {
		all[idx] = share
	} else {
		all = append(all, share)
	}

	if err := r.persist(ctx, all); err != nil {
		return err
	}
	r.logger.Info("Share saved", "share", share.Name, "path", share.Path, "new", idx < 0)
	return r.reload(ctx, share.Name)
}

// Delete removes a share from the staged file. Deleting an unknown share
// fails with SharesNotFound and writes nothing.
func (r *Repository) Delete(ctx context.Context, name string) (err error) {
	defer func() { r.metrics.ObserveOperation("shares", "delete", err) }()

	if err := r.checkMutable(name); err != nil {
		return err
	}

	all, err := r.LoadAll(ctx)
	if err != nil {
		return err
	}
	kept := slices.DeleteFunc(slices.Clone(all), func(s Share) bool { return s.Name == name })
	if len(kept) == len(all) {
		return errors.New(errors.SharesNotFound, name).WithMetadata("share", name)
	}

	if err := r.persist(ctx, kept); err != nil {
		return err
	}

	if r.definedInLive(ctx, name) {
		r.logger.Warn("Share removed from staged file but is still defined in the live configuration",
			"share", name,
			"live_file", r.cfg.LiveFile)
	}
	r.logger.Info("Share deleted", "share", name)
	return r.reload(ctx, name)
}

// Rename is Delete(oldName) followed by AddOrUpdate(share). It is not
// atomic: if the second step fails neither name is present.
func (r *Repository) Rename(ctx context.Context, oldName string, share Share) error {
	if err := r.checkMutable(oldName); err != nil {
		return err
	}
	if err := r.checkMutable(share.Name); err != nil {
		return err
	}
	if err := ValidateShare(share); err != nil {
		return err
	}
	if oldName == share.Name {
		return r.AddOrUpdate(ctx, share)
	}
	if err := checkNewName(share.Name); err != nil {
		return err
	}

	if _, err := r.Get(ctx, share.Name); err == nil {
		return errors.New(errors.SharesAlreadyExists, share.Name).WithMetadata("share", share.Name)
	}

	if err := r.Delete(ctx, oldName); err != nil && !errors.HasCode(err, errors.SharesReloadFailed) {
		return err
	}
	return r.AddOrUpdate(ctx, share)
}

// checkMutable applies to every name an operation touches, existing or new.
func (r *Repository) checkMutable(name string) error {
	if !ValidExistingName(name) {
		return errors.New(errors.SharesInvalidInput, "share name cannot be empty or span lines").
			WithMetadata("share", name)
	}
	if r.IsReserved(name) || r.isReservedSection(name) {
		r.logger.Warn("Refusing to modify reserved share", "share", name)
		return errors.New(errors.SharesReserved, name).WithMetadata("share", name)
	}
	return nil
}

func checkNewName(name string) error {
	if !shareNameRegex.MatchString(name) {
		return errors.New(errors.SharesInvalidInput, "Invalid share name format").
			WithMetadata("share", name)
	}
	return nil
}

// loadMerged folds every readable source into one document of share
// sections, later sources overriding earlier ones key by key.
func (r *Repository) loadMerged(ctx context.Context) *smbconf.Document {
	merged := smbconf.NewDocument()

	sources := append(slices.Clone(r.cfg.ExtraSources), r.cfg.LiveFile, r.cfg.StagedFile)
	seen := make(map[string]bool, len(sources))
	for _, path := range sources {
		if path == "" || seen[path] {
			continue
		}
		seen[path] = true

		doc, ok := r.readDocument(ctx, path)
		if !ok {
			continue
		}
		for _, sec := range doc.Sections {
			if r.isReservedSection(sec.Name) {
				continue
			}
			merged.Append(CanonicalizeSection(sec))
		}
	}

	if r.cfg.SeedStaged {
		r.seedStaged(ctx)
	}
	return merged
}

func (r *Repository) readDocument(ctx context.Context, path string) (*smbconf.Document, bool) {
	exists, err := r.files.Exists(ctx, path)
	if err != nil {
		r.logger.Warn("Cannot check configuration file", "file", path, "err", err)
		return nil, false
	}
	if !exists {
		return nil, false
	}

	data, err := r.files.ReadFile(ctx, path)
	if err != nil {
		r.logger.Warn("Cannot read configuration file", "file", path, "err", err)
		return nil, false
	}

	doc, diags := smbconf.Parse(string(data))
	for _, d := range diags {
		r.logger.Debug("Skipped configuration line", "file", path, "line", d.Line, "reason", d.Reason, "text", d.Text)
	}
	r.metrics.AddDiagnostics(len(diags))
	return doc, true
}

func (r *Repository) seedStaged(ctx context.Context) {
	exists, err := r.files.Exists(ctx, r.cfg.StagedFile)
	if err != nil || exists {
		return
	}
	if err := r.files.WriteFile(ctx, r.cfg.StagedFile, []byte(StagedHeader), 0644); err != nil {
		r.logger.Warn("Failed to create staged shares file", "file", r.cfg.StagedFile, "err", err)
		return
	}
	r.logger.Info("Created staged shares file", "file", r.cfg.StagedFile)
}

func (r *Repository) definedInLive(ctx context.Context, name string) bool {
	for _, path := range append(slices.Clone(r.cfg.ExtraSources), r.cfg.LiveFile) {
		if path == "" || path == r.cfg.StagedFile {
			continue
		}
		if doc, ok := r.readDocument(ctx, path); ok && doc.Section(name) != nil {
			return true
		}
	}
	return false
}

// persist backs up the staged file and rewrites it with shares. Reserved
// sections already present in the staged file are carried over.
func (r *Repository) persist(ctx context.Context, shares []Share) error {
	out := smbconf.NewDocument()
	if doc, ok := r.readDocument(ctx, r.cfg.StagedFile); ok {
		for _, sec := range doc.Sections {
			if r.isReservedSection(sec.Name) {
				out.Append(sec)
			}
		}
	}
	for _, s := range shares {
		out.Append(r.normalizer.Denormalize(s))
	}

	if err := privilege.Backup(ctx, r.files, r.cfg.StagedFile); err != nil {
		r.logger.Error("Failed to back up staged shares file", "file", r.cfg.StagedFile, "err", err)
		return errors.Wrap(err, errors.SharesWriteFailed).
			WithMetadata("operation", "backup").
			WithMetadata("file", r.cfg.StagedFile)
	}

	data := StagedHeader + "\n" + smbconf.Serialize(out)
	if err := r.files.WriteFile(ctx, r.cfg.StagedFile, []byte(data), 0644); err != nil {
		r.logger.Error("Failed to write staged shares file", "file", r.cfg.StagedFile, "err", err)
		return errors.Wrap(err, errors.SharesWriteFailed).
			WithMetadata("operation", "write").
			WithMetadata("file", r.cfg.StagedFile)
	}
	return nil
}

func (r *Repository) reload(ctx context.Context, share string) error {
	if r.reloader == nil {
		return nil
	}
	err := r.reloader.Restart(ctx)
	r.metrics.ObserveRestart(err)
	if err != nil {
		r.logger.Error("Configuration written but service restart failed", "share", share, "err", err)
		return errors.Wrap(err, errors.SharesReloadFailed).WithMetadata("share", share)
	}
	return nil
}

func containsFold(list []string, name string) bool {
	name = strings.TrimSpace(name)
	return slices.ContainsFunc(list, func(s string) bool { return strings.EqualFold(s, name) })
}
