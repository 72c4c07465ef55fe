package article

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// RawRecord is an untrusted article payload as received from the content
// backend. Every field is optional and may arrive with an unexpected type;
// decoding never fails on a single malformed field.
type RawRecord struct {
	ID          FlexID     `json:"_id,omitempty"`
	LegacyID    FlexID     `json:"id,omitempty"`
	Link        string     `json:"link,omitempty"`
	Title       string     `json:"title,omitempty"`
	Text        string     `json:"text,omitempty"`
	Authors     StringList `json:"authors,omitempty"`
	Author      StringList `json:"author,omitempty"` // legacy alias, scraper output
	PublishDate FlexString `json:"publish_date,omitempty"`
	Keywords    StringList `json:"keywords,omitempty"`
	Tags        StringList `json:"tags,omitempty"`
	Thumbnail   string     `json:"thumbnail,omitempty"`
	Source      string     `json:"source,omitempty"`
}

// Article is the canonical, presentation-ready article value. Built once by
// Normalize and treated as immutable afterwards.
type Article struct {
	IdentityKey      string     `json:"identity_key"`
	DBID             string     `json:"db_id,omitempty"`
	Title            string     `json:"title"`
	SourceLabel      string     `json:"source"`
	PublishedAt      *time.Time `json:"published_at,omitempty"`
	PublishedDisplay string     `json:"published_display"`
	Summary          string     `json:"summary"`
	Keywords         []string   `json:"keywords"`
	Tags             []string   `json:"tags"`
	Authors          []string   `json:"authors"`
	WordCount        int        `json:"word_count"`
	URL              string     `json:"url"`
	Thumbnail        string     `json:"thumbnail,omitempty"`

	// BodyText keeps the raw article body for search matching. It is not
	// part of the presentation payload.
	BodyText string `json:"-"`
}

// FlexID decodes a persistence identifier that may be a plain string, a
// number, or an object-shaped identifier such as {"$oid": "..."}.
type FlexID struct {
	value string
}

func (f *FlexID) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		f.value = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		f.value = s
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		f.value = n.String()
		return nil
	}

	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err == nil {
		for _, key := range []string{"$oid", "oid", "id"} {
			if v, ok := obj[key]; ok {
				f.value = coerceScalar(v)
				return nil
			}
		}
		// Object-like identifier without a known key: fall back to its
		// compact JSON representation so the value stays usable as a string.
		f.value = trimmed
		return nil
	}

	f.value = trimmed
	return nil
}

func (f FlexID) MarshalJSON() ([]byte, error) {
	if f.value == "" {
		return []byte("null"), nil
	}
	return json.Marshal(f.value)
}

func (f FlexID) String() string {
	return f.value
}

func (f FlexID) IsZero() bool {
	return f.value == ""
}

// NewFlexID wraps a plain string identifier, used by tests and the demo
// backend.
func NewFlexID(v string) FlexID {
	return FlexID{value: v}
}

// StringList decodes a field that should be a list of strings but may arrive
// as a single string, null, or a list containing nulls and non-string
// scalars. Falsy entries are dropped; order is preserved.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		*l = nil
		return nil
	}

	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single == "" {
			*l = nil
		} else {
			*l = StringList{single}
		}
		return nil
	}

	var items []any
	if err := json.Unmarshal(data, &items); err != nil {
		*l = nil
		return nil
	}

	out := make(StringList, 0, len(items))
	for _, item := range items {
		if s := coerceScalar(item); s != "" {
			out = append(out, s)
		}
	}
	*l = out
	return nil
}

// FlexString decodes a string field that may arrive as a number or null.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		*f = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexString(n.String())
		return nil
	}

	*f = FlexString(trimmed)
	return nil
}

func (f FlexString) String() string {
	return string(f)
}

func coerceScalar(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if !t {
			return ""
		}
		return "true"
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	default:
		return fmt.Sprintf("%v", t)
	}
}
