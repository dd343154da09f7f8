package lang

import (
	"sort"

	"github.com/ottdtools/grfgen/pkg/diag"
)

// Service is the translation lookup interface consumed by style
// resolution. Language ids lie in [0, 0x7F]; DefaultLangID holds the
// source/default text of a key.
type Service interface {
	// Validate reports an error when key is not a known string.
	Validate(key string, pos diag.Position) error

	// Translations returns the language ids for which key has a
	// translation, in ascending order.
	Translations(key string) []int

	// Lookup returns the translation of key for the given language id.
	Lookup(key string, langID int) (string, bool)

	// Default returns the source/default text of key.
	Default(key string) (string, bool)
}

// Store is an in-memory Service. The zero value is not usable; call
// NewStore.
type Store struct {
	texts map[string]map[int]string
}

// NewStore creates an empty translation store.
func NewStore() *Store {
	return &Store{texts: make(map[string]map[int]string)}
}

// Add records text as the translation of key for langID. Adding with
// DefaultLangID sets the key's default text.
func (s *Store) Add(key string, langID int, text string) {
	m, ok := s.texts[key]
	if !ok {
		m = make(map[int]string)
		s.texts[key] = m
	}
	m[langID] = text
}

// Validate implements Service.
func (s *Store) Validate(key string, pos diag.Position) error {
	if _, ok := s.texts[key]; !ok {
		return diag.Errorf(diag.Script, pos, "unknown string %q", key)
	}
	return nil
}

// Translations implements Service.
func (s *Store) Translations(key string) []int {
	m := s.texts[key]
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Lookup implements Service.
func (s *Store) Lookup(key string, langID int) (string, bool) {
	text, ok := s.texts[key][langID]
	return text, ok
}

// Default implements Service.
func (s *Store) Default(key string) (string, bool) {
	return s.Lookup(key, DefaultLangID)
}
