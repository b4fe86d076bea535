// Package content merges per-language content responses into a single
// ordered, typed collection of content entries.
package content

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"time"
)

// Kind classifies a content entry by its component type.
type Kind string

const (
	// KindDropdown is a list-valued dropdown source.
	KindDropdown Kind = "dropdown"

	// KindText is a plain localized string.
	KindText Kind = "text"

	// KindLink is a localized hyperlink label.
	KindLink Kind = "link"

	// KindMixed marks an unrecognized component type.
	KindMixed Kind = "mixed"
)

// StatusPublished is the derived publish state for merged entries.
const StatusPublished = "published"

// keyPattern matches content keys that encode a sequence number, e.g.
// "portal.home.3.dropdown.currency". Capture 1 is the sequence, capture 2
// the declared component type. Keys outside this shape are ignored by the
// aggregated view.
var keyPattern = regexp.MustCompile(`^[a-z][a-z0-9]*\.[a-z0-9_]+\.(\d+)\.([a-z]+)\.[a-z0-9_]+$`)

// Metadata holds the fixed bookkeeping fields of an entry.
type Metadata struct {
	CreatedBy string    `json:"created_by"`
	UpdatedBy string    `json:"updated_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Entry is one logical content action across languages.
type Entry struct {
	// ID is a stable identifier derived from the sequence number
	ID string `json:"id"`

	// Sequence is the integer ordering key extracted from the content key
	Sequence int `json:"sequence"`

	// Title is the canonical display title (primary language)
	Title string `json:"title"`

	// Titles maps language code to the localized value
	Titles map[string]string `json:"titles"`

	// Kind is the inferred component classification
	Kind Kind `json:"kind"`

	// Status is the derived publish state
	Status string `json:"status"`

	// Metadata carries bookkeeping fields
	Metadata Metadata `json:"metadata"`
}

// LanguageResponse is one language's content document.
type LanguageResponse struct {
	// Language is the language code the values are localized in
	Language string

	// Primary marks the default locale; its values become canonical titles
	Primary bool

	// Values is the raw key/value content document
	Values map[string]string
}

// Aggregate merges per-language responses with zero-value metadata.
func Aggregate(responses []LanguageResponse) []Entry {
	return AggregateWith(responses, Metadata{})
}

// AggregateWith merges per-language responses into one ordered collection.
//
// Keys matching the sequence pattern create or extend an entry per
// sequence number; the primary language's value becomes the canonical
// title. When responses disagree on an entry's kind, the last processed
// response wins; within one response, keys are processed in sorted order.
// Entries with no canonical title are dropped, and the result is sorted
// ascending by sequence.
func AggregateWith(responses []LanguageResponse, meta Metadata) []Entry {
	primaryIdx := 0
	for i, resp := range responses {
		if resp.Primary {
			primaryIdx = i
			break
		}
	}

	bySequence := make(map[int]*Entry)
	for i, resp := range responses {
		primary := resp.Primary || i == primaryIdx
		keys := make([]string, 0, len(resp.Values))
		for key := range resp.Values {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			match := keyPattern.FindStringSubmatch(key)
			if match == nil {
				continue
			}

			sequence, err := strconv.Atoi(match[1])
			if err != nil {
				continue
			}
			value := resp.Values[key]

			entry, ok := bySequence[sequence]
			if !ok {
				entry = &Entry{
					ID:       fmt.Sprintf("content-%d", sequence),
					Sequence: sequence,
					Titles:   make(map[string]string),
					Status:   StatusPublished,
					Metadata: meta,
				}
				bySequence[sequence] = entry
			}

			if value != "" {
				entry.Titles[resp.Language] = value
				if primary {
					entry.Title = value
				}
			}
			entry.Kind = inferKind(match[2], value)
		}
	}

	entries := make([]Entry, 0, len(bySequence))
	for _, entry := range bySequence {
		if entry.Title == "" {
			continue
		}
		entries = append(entries, *entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Sequence < entries[j].Sequence
	})

	return entries
}

// inferKind classifies an entry from the declared component type, with a
// structural check for list values.
func inferKind(component, value string) Kind {
	if isJSONArray(value) {
		return KindDropdown
	}

	switch component {
	case "dropdown":
		return KindDropdown
	case "text":
		return KindText
	case "link":
		return KindLink
	default:
		return KindMixed
	}
}

// isJSONArray reports whether value decodes as a JSON array.
func isJSONArray(value string) bool {
	var list []json.RawMessage
	return json.Unmarshal([]byte(value), &list) == nil
}

// ParseOptions decodes a dropdown value into its option list.
func ParseOptions(value string) ([]string, error) {
	var options []string
	if err := json.Unmarshal([]byte(value), &options); err != nil {
		return nil, fmt.Errorf("parse dropdown options: %w", err)
	}
	return options, nil
}
