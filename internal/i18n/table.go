package i18n

import (
	"sort"

	"golang.org/x/text/language"
)

// DefaultLanguage is the language the UI strings are authored in and
// the source language assumed for freeform text unless stated otherwise.
const DefaultLanguage = "en"

// Table is the compiled-in UI string catalog: language code → key → string.
// Lookups never touch the network; missing entries fall back to the
// default-language string, then to the key itself.
type Table struct {
	strings map[string]map[string]string
}

// NewTable returns the built-in catalog.
func NewTable() *Table {
	return &Table{strings: uiStrings}
}

// IsKey reports whether key is a recognized UI string key.
func (t *Table) IsKey(key string) bool {
	_, ok := t.strings[DefaultLanguage][key]
	return ok
}

// Default returns the default-language string for key. If key is not
// recognized the key itself is returned unchanged.
func (t *Table) Default(key string) string {
	if v, ok := t.strings[DefaultLanguage][key]; ok {
		return v
	}
	return key
}

// Lookup returns the translation of key for lang. The boolean is false
// when there is no usable entry: unknown key, unknown language, empty
// translation, or a translation identical to the default-language string
// (identical entries are treated as untranslated placeholders).
func (t *Table) Lookup(key, lang string) (string, bool) {
	table, ok := t.strings[normalize(lang)]
	if !ok {
		return "", false
	}
	v, ok := table[key]
	if !ok || v == "" {
		return "", false
	}
	if normalize(lang) != DefaultLanguage && v == t.Default(key) {
		return "", false
	}
	return v, true
}

// DefaultStrings returns a copy of the full default-language key→string
// map, used as the source side of batch localization.
func (t *Table) DefaultStrings() map[string]string {
	src := t.strings[DefaultLanguage]
	ret := make(map[string]string, len(src))
	for k, v := range src {
		ret[k] = v
	}
	return ret
}

// HasLanguage reports whether the catalog carries entries for lang.
func (t *Table) HasLanguage(lang string) bool {
	_, ok := t.strings[normalize(lang)]
	return ok
}

// Languages returns the supported language codes in sorted order.
func (t *Table) Languages() []string {
	ret := make([]string, 0, len(t.strings))
	for lang := range t.strings {
		ret = append(ret, lang)
	}
	sort.Strings(ret)
	return ret
}

// normalize reduces a BCP 47 style code to the base language code the
// catalog is keyed by ("pt-BR" → "pt"). Unparseable codes pass through.
func normalize(lang string) string {
	tag, err := language.Parse(lang)
	if err != nil {
		return lang
	}
	base, _ := tag.Base()
	return base.String()
}
