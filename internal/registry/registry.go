// Package registry builds the download registry and manifest from the
// artifacts actually present on disk.
package registry

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/alnah/go-docpress/internal/fileutil"
	"github.com/alnah/go-docpress/internal/model"
)

// ArtifactLookup returns the observed artifact for a task.
type ArtifactLookup func(task model.Task) model.Artifact

// Entry is one registry record: a document at one tier.
type Entry struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	OutputPath    string         `json:"outputPath"`
	CanonicalPath string         `json:"canonicalPath,omitempty"`
	Type          string         `json:"type"`
	Tier          model.Tier     `json:"tier"`
	Category      string         `json:"category"`
	Formats       []model.Format `json:"formats"`
	FileSize      int64          `json:"fileSize"`
	FileSizeLabel string         `json:"fileSizeLabel"`
	LastModified  string         `json:"lastModified"`
	Exists        bool           `json:"exists"`
	Tags          []string       `json:"tags"`
	RequiresAuth  bool           `json:"requiresAuth"`
	Version       string         `json:"version"`
	Priority      int            `json:"priority"`
	Fillable      bool           `json:"fillable"`
	Interactive   bool           `json:"interactive"`
	Fingerprint   string         `json:"fingerprint,omitempty"`
	MD5           string         `json:"md5,omitempty"`
	SHA256        string         `json:"sha256,omitempty"`
}

// PrimaryTask is the task whose artifact represents a document at tier.
// Fixed-layout kinds only ever have this one task per tier.
func PrimaryTask(doc model.Document, tier model.TierConfig) model.Task {
	return model.Task{
		DocumentID: doc.Source.ID,
		Tier:       tier.Slug,
		Format:     tier.PrimaryFormat(),
		Quality:    tier.PrimaryQuality(),
	}
}

// tierTasks lists the tasks that may represent a document at tier, the
// primary one first, then every other format and quality pairing.
func tierTasks(doc model.Document, tier model.TierConfig) []model.Task {
	primary := PrimaryTask(doc, tier)
	tasks := []model.Task{primary}
	if doc.Source.Kind.FixedLayout() {
		return tasks
	}
	formats, qualities := tier.Formats, tier.Qualities
	if len(formats) == 0 {
		formats = []model.Format{tier.PrimaryFormat()}
	}
	if len(qualities) == 0 {
		qualities = []model.Quality{tier.PrimaryQuality()}
	}
	for _, f := range formats {
		for _, q := range qualities {
			t := model.Task{DocumentID: doc.Source.ID, Tier: tier.Slug, Format: f, Quality: q}
			if t != primary {
				tasks = append(tasks, t)
			}
		}
	}
	return tasks
}

// tierArtifact returns the primary artifact, or the first variant that
// exists when a filtered run skipped the primary one.
func tierArtifact(doc model.Document, tier model.TierConfig, arts ArtifactLookup) model.Artifact {
	tasks := tierTasks(doc, tier)
	primary := arts(tasks[0])
	if primary.Exists {
		return primary
	}
	for _, t := range tasks[1:] {
		if a := arts(t); a.Exists {
			return a
		}
	}
	return primary
}

// CanonicalTask is the lookup key of a document's canonical artifact.
func CanonicalTask(doc model.Document) model.Task {
	return model.Task{DocumentID: doc.Source.ID, Canonical: true}
}

// Build returns one entry per document and PDF-producing tier, sorted by
// priority, then id, then tier rank. now stamps entries with no
// modification time at all.
func Build(docs []model.Document, arts ArtifactLookup, now time.Time) []Entry {
	var entries []Entry
	for _, doc := range docs {
		var canonical string
		if c := arts(CanonicalTask(doc)); c.Exists {
			canonical = c.PublicPath
		}
		for _, tier := range doc.Meta.Tiers {
			if !tier.GeneratePDF {
				continue
			}
			entries = append(entries, entryFor(doc, tier, tierArtifact(doc, tier, arts), canonical, now))
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		if a.ID != b.ID {
			return a.ID < b.ID
		}
		return a.Tier.Rank() < b.Tier.Rank()
	})
	return entries
}

func entryFor(doc model.Document, tier model.TierConfig, art model.Artifact, canonical string, now time.Time) Entry {
	m := doc.Meta
	formats := tier.Formats
	if len(formats) == 0 {
		formats = []model.Format{tier.PrimaryFormat()}
	}
	tags := m.Tags
	if tags == nil {
		tags = []string{}
	}

	e := Entry{
		ID:            doc.Source.ID,
		Title:         m.Title,
		Description:   m.Description,
		OutputPath:    art.PublicPath,
		CanonicalPath: canonical,
		Type:          m.Type,
		Tier:          tier.Slug,
		Category:      m.Category,
		Formats:       formats,
		Exists:        art.Exists,
		Tags:          tags,
		RequiresAuth:  tier.Slug.RequiresAuth(),
		Version:       m.Version,
		Priority:      m.Priority,
		Fillable:      m.Fillable || tier.GenerateFillable,
		Interactive:   m.Interactive,
		Fingerprint:   m.Fingerprint,
	}

	modTime := doc.Source.ModTime
	if art.Exists {
		e.FileSize = art.Size
		e.MD5 = art.MD5
		e.SHA256 = art.SHA256
		modTime = art.ModTime
	}
	if modTime.IsZero() {
		modTime = now
	}
	e.FileSizeLabel = FileSizeLabel(e.FileSize)
	e.LastModified = modTime.UTC().Format(time.RFC3339)
	return e
}

// FileSizeLabel formats a byte count as B, KB, MB or GB.
// Bytes are whole; larger units carry one decimal.
func FileSizeLabel(size int64) string {
	if size <= 0 {
		return "0 B"
	}
	units := []string{"B", "KB", "MB", "GB"}
	v := float64(size)
	i := 0
	for v >= 1024 && i < len(units)-1 {
		v /= 1024
		i++
	}
	if i == 0 {
		return fmt.Sprintf("%d B", size)
	}
	return fmt.Sprintf("%.1f %s", v, units[i])
}

// Manifest summarises a registry for the download front-end.
type Manifest struct {
	GeneratedAt string         `json:"generatedAt"`
	RunID       string         `json:"runId"`
	Total       int            `json:"total"`
	Available   int            `json:"available"`
	ByTier      map[string]int `json:"byTier"`
	ByCategory  map[string]int `json:"byCategory"`
	Files       []Entry        `json:"files"`
}

// BuildManifest counts entries by tier and category.
func BuildManifest(entries []Entry, now time.Time, runID string) Manifest {
	m := Manifest{
		GeneratedAt: now.UTC().Format(time.RFC3339),
		RunID:       runID,
		Total:       len(entries),
		ByTier:      make(map[string]int),
		ByCategory:  make(map[string]int),
		Files:       entries,
	}
	if m.Files == nil {
		m.Files = []Entry{}
	}
	for _, e := range entries {
		if e.Exists {
			m.Available++
		}
		m.ByTier[string(e.Tier)]++
		m.ByCategory[e.Category]++
	}
	return m
}

// WriteJSON writes v as indented JSON through a temp file and rename.
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	data = append(data, '\n')
	return fileutil.WriteAtomic(path, data)
}
