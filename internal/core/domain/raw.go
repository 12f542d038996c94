package domain

import (
	"fmt"
	"strconv"
)

// RawRow is one source-specific row as returned by an adapter.
// Field names are the adapter's own; only the normaliser for that source
// interprets them.
type RawRow map[string]any

// String returns the value at key as a string.
// Missing keys and nil values yield "".
func (r RawRow) String(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// Strings returns the value at key as a string slice.
// Scalar values are wrapped; missing keys yield nil.
func (r RawRow) Strings(key string) []string {
	v, ok := r[key]
	if !ok || v == nil {
		return nil
	}
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if item == nil {
				continue
			}
			out = append(out, fmt.Sprint(item))
		}
		return out
	case string:
		if t == "" {
			return nil
		}
		return []string{t}
	default:
		return []string{fmt.Sprint(t)}
	}
}

// FirstString returns the first non-empty string among keys.
func (r RawRow) FirstString(keys ...string) string {
	for _, key := range keys {
		if s := r.String(key); s != "" {
			return s
		}
	}
	return ""
}

// SourceBatch is the complete set of rows fetched for one source in a run.
// Err is set when the adapter could not be reached; Rows is then empty.
type SourceBatch struct {
	// Source identifies which adapter produced the rows.
	Source Source

	// Rows are in adapter-returned order.
	Rows []RawRow

	// Err records an adapter failure for this source.
	Err error
}

// ToolAccess reports whether a source tool was reachable.
type ToolAccess string

// Tool access values reported in diagnostics.
const (
	ToolAccessOK          ToolAccess = "ok"
	ToolAccessUnavailable ToolAccess = "unavailable"
)

// Diagnostics accompanies a snapshot with adapter-reported health.
type Diagnostics struct {
	// ToolAccess maps each source to ok or unavailable.
	ToolAccess map[Source]ToolAccess

	// Errors holds source-specific error strings.
	Errors []string
}

// Unavailable returns the sources whose tool access is not ok, in canonical order.
func (d Diagnostics) Unavailable() []Source {
	var out []Source
	for _, src := range AllSources() {
		if access, ok := d.ToolAccess[src]; ok && access != ToolAccessOK {
			out = append(out, src)
		}
	}
	return out
}

// FetchMode identifies where a snapshot's rows came from.
type FetchMode string

// Available fetch modes.
const (
	// FetchModeLive means rows came from the configured source adapters.
	FetchModeLive FetchMode = "live"

	// FetchModeFixture means rows were read from a payload file.
	FetchModeFixture FetchMode = "fixture"
)

// Snapshot is the fetched input for one pipeline run.
type Snapshot struct {
	// FetchMode records how the rows were obtained.
	FetchMode FetchMode

	// Batches holds one batch per source.
	Batches map[Source]SourceBatch

	// Diagnostics carries adapter-reported tool access and errors.
	Diagnostics Diagnostics
}

// Batch returns the batch for src, or an empty one.
func (s *Snapshot) Batch(src Source) SourceBatch {
	if s == nil || s.Batches == nil {
		return SourceBatch{Source: src}
	}
	b, ok := s.Batches[src]
	if !ok {
		return SourceBatch{Source: src}
	}
	return b
}

// RawCount returns the number of rows received for src.
func (s *Snapshot) RawCount(src Source) int {
	return len(s.Batch(src).Rows)
}

// TotalRaw returns the number of rows received across all sources.
func (s *Snapshot) TotalRaw() int {
	total := 0
	for _, src := range AllSources() {
		total += s.RawCount(src)
	}
	return total
}
