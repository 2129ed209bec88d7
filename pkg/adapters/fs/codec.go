package fs

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/aretw0/strata/pkg/core"
)

const (
	frontmatterDelim = "---"
	nullToken        = "null"
)

// Header keys, in the order they are written.
const (
	keyID               = "id"
	keyCollection       = "collection"
	keyAssociatedEntity = "associatedEntity"
	keySecondaryTag     = "secondaryTag"
	keyFrequency        = "frequency"
	keyTags             = "tags"
	keyConfidence       = "confidence"
	keyOrigin           = "origin"
	keySummary          = "summary"
	keyCreated          = "created"
	keyUpdated          = "updated"
	keyExpires          = "expires"
)

var knownKeys = map[string]bool{
	keyID: true, keyCollection: true, keyAssociatedEntity: true, keySecondaryTag: true,
	keyFrequency: true, keyTags: true, keyConfidence: true, keyOrigin: true,
	keySummary: true, keyCreated: true, keyUpdated: true, keyExpires: true,
}

// EncodeEntry renders e as a frontmatter header followed by a blank line and
// the raw content. Callers are expected to have validated e with
// ValidateEntry; values are written verbatim.
func EncodeEntry(e core.Entry) []byte {
	var buf bytes.Buffer
	buf.WriteString(frontmatterDelim + "\n")

	field := func(key, value string) {
		buf.WriteString(key)
		buf.WriteString(": ")
		buf.WriteString(value)
		buf.WriteByte('\n')
	}

	field(keyID, e.ID)
	field(keyCollection, string(e.Collection))
	field(keyAssociatedEntity, optional(e.AssociatedEntity))
	field(keySecondaryTag, optional(e.SecondaryTag))
	if hz, ok := core.EntityFrequency(e.AssociatedEntity); ok {
		field(keyFrequency, strconv.Itoa(hz))
	} else {
		field(keyFrequency, nullToken)
	}
	field(keyTags, "["+strings.Join(e.Tags, ", ")+"]")
	field(keyConfidence, string(e.Confidence))
	field(keyOrigin, optional(e.Origin))
	field(keySummary, optional(e.Summary))
	field(keyCreated, formatTime(e.CreatedAt))
	field(keyUpdated, formatTime(e.UpdatedAt))
	if e.ExpiresAt != nil {
		field(keyExpires, formatTime(*e.ExpiresAt))
	} else {
		field(keyExpires, nullToken)
	}

	buf.WriteString(frontmatterDelim + "\n\n")
	buf.WriteString(e.Content)
	return buf.Bytes()
}

func optional(s string) string {
	if s == "" {
		return nullToken
	}
	return s
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// splitFrontmatter separates the header lines from the body. ok is false when
// data does not start with a closed header block, in which case the whole
// input is the body.
func splitFrontmatter(data []byte) (header []string, body string, ok bool) {
	text := string(data)
	first, rest, found := strings.Cut(text, "\n")
	if !found || strings.TrimRight(first, "\r") != frontmatterDelim {
		return nil, text, false
	}

	for {
		line, after, more := strings.Cut(rest, "\n")
		if strings.TrimRight(line, "\r") == frontmatterDelim {
			// One separator line between header and body belongs to the format.
			switch {
			case strings.HasPrefix(after, "\r\n"):
				after = after[2:]
			case strings.HasPrefix(after, "\n"):
				after = after[1:]
			}
			return header, after, true
		}
		if !more {
			return nil, text, false
		}
		header = append(header, strings.TrimRight(line, "\r"))
		rest = after
	}
}

// parseHeader turns header lines into a key → value map. Blank lines, comment
// lines and lines without a colon are ignored.
func parseHeader(lines []string) map[string]string {
	fields := make(map[string]string, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		key, value, ok := strings.Cut(trimmed, ":")
		if !ok {
			continue
		}
		fields[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return fields
}

// parseArray reads "[a, b]". Anything that is not a bracketed list is taken as
// a single element.
func parseArray(value string) []string {
	if value == "" || value == nullToken {
		return []string{}
	}
	if !strings.HasPrefix(value, "[") || !strings.HasSuffix(value, "]") || len(value) < 2 {
		return []string{value}
	}
	inner := strings.TrimSpace(value[1 : len(value)-1])
	if inner == "" {
		return []string{}
	}
	out := []string{}
	for _, part := range strings.Split(inner, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseOptional(value string) string {
	if value == nullToken {
		return ""
	}
	return value
}

func parseTime(key, value string) (*time.Time, error) {
	if value == "" || value == nullToken {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", core.ErrMalformedEntry, key, err)
	}
	t = t.UTC()
	return &t, nil
}

// DecodeEntry parses the output of EncodeEntry. It returns an error wrapping
// core.ErrMalformedEntry when the mandatory id, collection or confidence
// headers are absent or invalid, or a timestamp cannot be parsed. Unknown
// keys are ignored and frequency is never read back.
func DecodeEntry(data []byte) (core.Entry, error) {
	lines, body, _ := splitFrontmatter(data)
	fields := parseHeader(lines)

	id := fields[keyID]
	if id == "" || id == nullToken {
		return core.Entry{}, fmt.Errorf("%w: missing id", core.ErrMalformedEntry)
	}
	collection, err := core.ParseCollection(fields[keyCollection])
	if err != nil {
		return core.Entry{}, fmt.Errorf("%w: %v", core.ErrMalformedEntry, err)
	}
	confidence, err := core.ParseConfidence(fields[keyConfidence])
	if err != nil {
		return core.Entry{}, fmt.Errorf("%w: %v", core.ErrMalformedEntry, err)
	}

	e := core.Entry{
		ID:               id,
		Collection:       collection,
		Content:          body,
		Tags:             parseArray(fields[keyTags]),
		Confidence:       confidence,
		Origin:           parseOptional(fields[keyOrigin]),
		AssociatedEntity: parseOptional(fields[keyAssociatedEntity]),
		SecondaryTag:     parseOptional(fields[keySecondaryTag]),
		Summary:          parseOptional(fields[keySummary]),
	}

	created, err := parseTime(keyCreated, fields[keyCreated])
	if err != nil {
		return core.Entry{}, err
	}
	if created != nil {
		e.CreatedAt = *created
	}
	updated, err := parseTime(keyUpdated, fields[keyUpdated])
	if err != nil {
		return core.Entry{}, err
	}
	if updated != nil {
		e.UpdatedAt = *updated
	}
	if e.ExpiresAt, err = parseTime(keyExpires, fields[keyExpires]); err != nil {
		return core.Entry{}, err
	}
	return e, nil
}

// ValidateEntry checks that e can be encoded without loss.
func ValidateEntry(e core.Entry) error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", core.ErrInvalidEntry, fmt.Sprintf(format, args...))
	}

	if e.ID == "" {
		return invalid("id cannot be empty")
	}
	if e.ID == "." || e.ID == ".." || e.ID == nullToken {
		return invalid("reserved id %q", e.ID)
	}
	if strings.ContainsAny(e.ID, `/\`) || strings.IndexFunc(e.ID, unicode.IsSpace) >= 0 {
		return invalid("id %q contains a path separator or whitespace", e.ID)
	}
	if strings.HasPrefix(e.ID, TempFilePrefix) {
		return invalid("id %q uses the temporary file prefix", e.ID)
	}
	if !e.Collection.Valid() {
		return invalid("unknown collection %q", e.Collection)
	}
	if !e.Confidence.Valid() {
		return invalid("unknown confidence %q", e.Confidence)
	}

	optionals := map[string]string{
		keyOrigin:           e.Origin,
		keyAssociatedEntity: e.AssociatedEntity,
		keySecondaryTag:     e.SecondaryTag,
		keySummary:          e.Summary,
	}
	for key, value := range optionals {
		if err := validateHeaderValue(key, value); err != nil {
			return invalid("%v", err)
		}
	}

	for _, tag := range e.Tags {
		if tag == "" || strings.TrimSpace(tag) != tag {
			return invalid("tag %q is empty or padded with whitespace", tag)
		}
		if strings.ContainsAny(tag, ",[]\r\n") {
			return invalid("tag %q contains a reserved character", tag)
		}
	}
	return nil
}

func validateHeaderValue(key, value string) error {
	if value == "" {
		return nil
	}
	if strings.ContainsAny(value, "\r\n") {
		return fmt.Errorf("%s contains a newline", key)
	}
	if strings.TrimSpace(value) != value {
		return fmt.Errorf("%s is padded with whitespace", key)
	}
	if value == nullToken {
		return fmt.Errorf("%s cannot be the literal %q", key, nullToken)
	}
	return nil
}

// Report is the outcome of InspectEntry.
type Report struct {
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// OK reports whether the file has no errors.
func (r Report) OK() bool { return len(r.Errors) == 0 }

// InspectEntry decodes data and reports problems a human should look at,
// including the ones DecodeEntry tolerates silently.
func InspectEntry(data []byte) Report {
	var r Report

	lines, _, ok := splitFrontmatter(data)
	if !ok {
		r.Errors = append(r.Errors, "missing frontmatter header")
	}

	e, err := DecodeEntry(data)
	if err != nil {
		r.Errors = append(r.Errors, err.Error())
		return r
	}

	fields := parseHeader(lines)
	for key := range fields {
		if !knownKeys[key] {
			r.Warnings = append(r.Warnings, fmt.Sprintf("unknown header %q", key))
		}
	}

	if e.AssociatedEntity != "" && !core.KnownEntity(e.AssociatedEntity) {
		r.Warnings = append(r.Warnings, fmt.Sprintf("unknown associated entity %q", e.AssociatedEntity))
	}
	if raw := parseOptional(fields[keyFrequency]); raw != "" {
		hz, err := strconv.Atoi(raw)
		switch {
		case err != nil:
			r.Warnings = append(r.Warnings, fmt.Sprintf("frequency %q is not a number", raw))
		case !core.CanonicalFrequency(hz):
			r.Warnings = append(r.Warnings, fmt.Sprintf("frequency %d is not canonical", hz))
		default:
			if want, ok := core.EntityFrequency(e.AssociatedEntity); ok && want != hz {
				r.Warnings = append(r.Warnings, fmt.Sprintf("frequency %d does not match %s (%d)", hz, e.AssociatedEntity, want))
			}
		}
	}
	if strings.TrimSpace(e.Content) == "" {
		r.Warnings = append(r.Warnings, "empty body")
	}
	if e.CreatedAt.IsZero() {
		r.Warnings = append(r.Warnings, "missing created timestamp")
	}
	return r
}
