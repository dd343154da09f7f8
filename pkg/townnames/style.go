package townnames

import (
	"sort"

	"github.com/ottdtools/grfgen/pkg/diag"
	"github.com/ottdtools/grfgen/pkg/lang"
)

// buildStyleTable resolves every translation of the block's style name
// plus the source text under the fallback id. The fallback entry is
// appended even when a translation already exists for that id; the table
// is then sorted ascending by language id.
func (a *Action) buildStyleTable(svc lang.Service) error {
	if a.StyleName == "" {
		a.styleTable = nil
		return nil
	}

	if err := svc.Validate(a.StyleName, a.Pos); err != nil {
		return err
	}

	var entries []StyleEntry
	for _, langID := range svc.Translations(a.StyleName) {
		if text, ok := svc.Lookup(a.StyleName, langID); ok {
			entries = append(entries, StyleEntry{Lang: langID, Text: text})
		}
	}
	if text, ok := svc.Default(a.StyleName); ok {
		entries = append(entries, StyleEntry{Lang: lang.DefaultLangID, Text: text})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Lang != entries[j].Lang {
			return entries[i].Lang < entries[j].Lang
		}
		return entries[i].Text < entries[j].Text
	})

	if len(entries) == 0 {
		return diag.Errorf(diag.EmptyTranslationSet, a.Pos,
			"style %q defined, but no translations found for it", a.StyleName)
	}
	a.styleTable = entries
	return nil
}
