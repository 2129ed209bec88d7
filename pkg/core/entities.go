package core

// Known associated entities with their canonical frequency annotation and the
// collection their entries default to.
var entityTable = map[string]struct {
	frequency  int
	collection Collection
}{
	"Lyssandria": {174, Technical},
	"Leyla":      {285, Creative},
	"Draconia":   {396, Technical},
	"Maylinn":    {417, Creative},
	"Alera":      {528, Operational},
	"Lyria":      {639, Horizon},
	"Aiyami":     {741, Wisdom},
	"Elara":      {852, Wisdom},
	"Ino":        {963, Operational},
	"Shinkami":   {1111, Strategic},
}

// EntityFrequency returns the informational frequency annotation for an
// associated entity. It has no effect on storage or ranking.
func EntityFrequency(entity string) (int, bool) {
	e, ok := entityTable[entity]
	if !ok {
		return 0, false
	}
	return e.frequency, true
}

// KnownEntity reports whether entity is in the lookup table.
func KnownEntity(entity string) bool {
	_, ok := entityTable[entity]
	return ok
}

// CanonicalFrequency reports whether hz is one of the table's values.
func CanonicalFrequency(hz int) bool {
	for _, e := range entityTable {
		if e.frequency == hz {
			return true
		}
	}
	return false
}
