// Copyright Ollama Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package translate holds the pure, side-effect-free functions that convert
// between the Ollama wire shape and the upstream call shape. Nothing here
// performs I/O or retries; a Translator function either succeeds or returns
// a *errs.Error of kind KindRequestShape.
package translate

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"time"

	"github.com/ollamagw/gateway/internal/ollamaapi"
	"github.com/ollamagw/gateway/internal/registry"
	"github.com/ollamagw/gateway/internal/upstream"
)

// excludedSubstrings are case-insensitive substrings that exclude a model
// from /api/tags unless the Model Registry explicitly knows it (§4.2.1.5).
var excludedSubstrings = []string{
	"davinci", "curie", "babbage", "ada", "instruct", "deprecated", "preview",
}

// includedPrefixes are case-insensitive prefixes that include a model in
// /api/tags (§4.2.1.6).
var includedPrefixes = []string{
	"gpt-", "chatgpt-", "text-embedding-", "o1-", "o3-",
}

// Tags converts the upstream model list into a TagsResponse, applying the
// filter, size/digest synthesis, and sort order of spec.md §4.2.1.
func Tags(models []upstream.ModelInfo, reg *registry.Registry, loc *time.Location) ollamaapi.TagsResponse {
	entries := make([]ollamaapi.ModelEntry, 0, len(models))
	for _, m := range models {
		if !includeInTags(m.ID, reg) {
			continue
		}
		entries = append(entries, ollamaapi.ModelEntry{
			Name:       m.ID,
			Model:      m.ID, // I1
			ModifiedAt: formatModifiedAt(m.Created, loc),
			Size:       reg.Size(m.ID),
			Digest:     digest(m.ID),
		})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

	return ollamaapi.TagsResponse{Models: entries}
}

func includeInTags(id string, reg *registry.Registry) bool {
	lower := strings.ToLower(id)

	if !reg.Included(id) {
		for _, sub := range excludedSubstrings {
			if strings.Contains(lower, sub) {
				return false
			}
		}
	}

	for _, prefix := range includedPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return reg.Included(id)
}

// formatModifiedAt converts an upstream creation epoch to RFC 3339 with an
// explicit numeric timezone offset (I2); a bare "Z" is never emitted here.
func formatModifiedAt(created int64, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return time.Unix(created, 0).In(loc).Format("2006-01-02T15:04:05-07:00")
}

// digest synthesizes a deterministic, stable per-model identifier: the
// upstream model list carries no real digest (spec.md open question 3).
func digest(id string) string {
	sum := sha256.Sum256([]byte("openai:" + id))
	return "sha256:" + hex.EncodeToString(sum[:])[:12]
}

// formatTimestamp is shared by generate/chat response assembly, where I2
// permits (but does not require) a bare "Z".
func formatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000000Z")
}
