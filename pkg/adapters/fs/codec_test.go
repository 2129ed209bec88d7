package fs_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/strata/pkg/adapters/fs"
	"github.com/aretw0/strata/pkg/core"
)

func fullEntry() core.Entry {
	created := time.Date(2026, 2, 3, 4, 5, 6, 789, time.UTC)
	expires := created.Add(48 * time.Hour)
	return core.Entry{
		ID:               "x1",
		Collection:       core.Technical,
		Content:          "the dragon flies at dawn\n\nsecond paragraph\n",
		Tags:             []string{"dragon", "fire"},
		Confidence:       core.High,
		Origin:           "field notes: page 4",
		AssociatedEntity: "Draconia",
		SecondaryTag:     "myth",
		Summary:          "a dragon at dawn",
		CreatedAt:        created,
		UpdatedAt:        created.Add(time.Minute),
		ExpiresAt:        &expires,
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	minimal := core.Entry{
		ID:         "m1",
		Collection: core.Horizon,
		Content:    "",
		Tags:       []string{},
		Confidence: core.Low,
		CreatedAt:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	leadingNewline := fullEntry()
	leadingNewline.Content = "\nstarts with a blank line"

	for name, e := range map[string]core.Entry{
		"full":            fullEntry(),
		"minimal":         minimal,
		"leading newline": leadingNewline,
	} {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, fs.ValidateEntry(e))
			got, err := fs.DecodeEntry(fs.EncodeEntry(e))
			require.NoError(t, err)
			assert.Equal(t, e, got)
		})
	}
}

func TestCodec_Format(t *testing.T) {
	e := fullEntry()
	e.Origin = ""
	out := string(fs.EncodeEntry(e))

	assert.True(t, strings.HasPrefix(out, "---\nid: x1\ncollection: technical\n"), out)
	assert.Contains(t, out, "associatedEntity: Draconia\n")
	assert.Contains(t, out, "frequency: 396\n")
	assert.Contains(t, out, "tags: [dragon, fire]\n")
	assert.Contains(t, out, "origin: null\n")
	assert.Contains(t, out, "created: 2026-02-03T04:05:06.000000789Z\n")
	assert.Contains(t, out, "---\n\nthe dragon flies at dawn")

	e.AssociatedEntity = ""
	assert.Contains(t, string(fs.EncodeEntry(e)), "frequency: null\n")
}

func TestCodec_DecodeTolerance(t *testing.T) {
	t.Run("Unknown Keys And Comments", func(t *testing.T) {
		in := "---\n# hand edited\nid: a\ncollection: wisdom\nconfidence: low\nmood: calm\nfrequency: 999\n---\n\nbody"
		e, err := fs.DecodeEntry([]byte(in))
		require.NoError(t, err)
		assert.Equal(t, "a", e.ID)
		assert.Equal(t, "body", e.Content)
		assert.Equal(t, []string{}, e.Tags)
	})

	t.Run("Malformed Array Is One Element", func(t *testing.T) {
		in := "---\nid: a\ncollection: wisdom\nconfidence: low\ntags: [dragon, fire\n---\n\n"
		e, err := fs.DecodeEntry([]byte(in))
		require.NoError(t, err)
		assert.Equal(t, []string{"[dragon, fire"}, e.Tags)
	})

	t.Run("CRLF Header", func(t *testing.T) {
		in := "---\r\nid: a\r\ncollection: creative\r\nconfidence: verified\r\n---\r\n\r\nbody"
		e, err := fs.DecodeEntry([]byte(in))
		require.NoError(t, err)
		assert.Equal(t, core.Creative, e.Collection)
		assert.Equal(t, core.Verified, e.Confidence)
		assert.Equal(t, "body", e.Content)
	})

	t.Run("Null Optionals Are Absent", func(t *testing.T) {
		in := "---\nid: a\ncollection: wisdom\nconfidence: low\norigin: null\nexpires: null\n---\n\n"
		e, err := fs.DecodeEntry([]byte(in))
		require.NoError(t, err)
		assert.Empty(t, e.Origin)
		assert.Nil(t, e.ExpiresAt)
	})
}

func TestCodec_DecodeRejects(t *testing.T) {
	tests := map[string]string{
		"no header":          "just a body",
		"unclosed header":    "---\nid: a\ncollection: wisdom\nconfidence: low\n",
		"missing id":         "---\ncollection: wisdom\nconfidence: low\n---\n",
		"unknown collection": "---\nid: a\ncollection: notes\nconfidence: low\n---\n",
		"missing confidence": "---\nid: a\ncollection: wisdom\n---\n",
		"bad timestamp":      "---\nid: a\ncollection: wisdom\nconfidence: low\ncreated: yesterday\n---\n",
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := fs.DecodeEntry([]byte(in))
			require.Error(t, err)
			assert.True(t, errors.Is(err, core.ErrMalformedEntry), err.Error())
		})
	}
}

func TestValidateEntry(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*core.Entry)
	}{
		{"empty id", func(e *core.Entry) { e.ID = "" }},
		{"path in id", func(e *core.Entry) { e.ID = "../escape" }},
		{"space in id", func(e *core.Entry) { e.ID = "two words" }},
		{"temp prefix", func(e *core.Entry) { e.ID = fs.TempFilePrefix + "x" }},
		{"bad collection", func(e *core.Entry) { e.Collection = "notes" }},
		{"bad confidence", func(e *core.Entry) { e.Confidence = "sure" }},
		{"newline in origin", func(e *core.Entry) { e.Origin = "a\nb" }},
		{"literal null", func(e *core.Entry) { e.SecondaryTag = "null" }},
		{"comma in tag", func(e *core.Entry) { e.Tags = []string{"a,b"} }},
		{"empty tag", func(e *core.Entry) { e.Tags = []string{""} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := fullEntry()
			tt.mutate(&e)
			assert.ErrorIs(t, fs.ValidateEntry(e), core.ErrInvalidEntry)
		})
	}
}

func TestInspectEntry(t *testing.T) {
	t.Run("Clean", func(t *testing.T) {
		r := fs.InspectEntry(fs.EncodeEntry(fullEntry()))
		assert.True(t, r.OK())
		assert.Empty(t, r.Warnings)
	})

	t.Run("Warnings", func(t *testing.T) {
		in := "---\nid: a\ncollection: wisdom\nconfidence: low\nassociatedEntity: Nobody\nfrequency: 440\nmood: calm\n---\n\n"
		r := fs.InspectEntry([]byte(in))
		assert.True(t, r.OK())
		assert.Contains(t, r.Warnings, `unknown header "mood"`)
		assert.Contains(t, r.Warnings, `unknown associated entity "Nobody"`)
		assert.Contains(t, r.Warnings, "frequency 440 is not canonical")
		assert.Contains(t, r.Warnings, "empty body")
	})

	t.Run("Errors", func(t *testing.T) {
		r := fs.InspectEntry([]byte("no header at all"))
		assert.False(t, r.OK())
		assert.Contains(t, r.Errors, "missing frontmatter header")
	})
}
