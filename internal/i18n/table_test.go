package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTableDefault(t *testing.T) {
	table := NewTable()

	assert.Equal(t, "New chat", table.Default("newChat"))
	assert.Equal(t, "unknownKey", table.Default("unknownKey"))
}

func TestTableIsKey(t *testing.T) {
	table := NewTable()

	assert.True(t, table.IsKey("send"))
	assert.False(t, table.IsKey("Send"))
	assert.False(t, table.IsKey(""))
}

func TestTableLookup(t *testing.T) {
	table := NewTable()

	got, ok := table.Lookup("newChat", "ja")
	assert.True(t, ok)
	assert.Equal(t, "新しいチャット", got)

	// Region subtags reduce to the base language.
	got, ok = table.Lookup("newChat", "pt-BR")
	assert.True(t, ok)
	assert.Equal(t, "Novo chat", got)

	_, ok = table.Lookup("newChat", "sv")
	assert.False(t, ok, "unsupported language has no entry")

	_, ok = table.Lookup("notAKey", "es")
	assert.False(t, ok)
}

func TestTableAllLanguagesCoverAllKeys(t *testing.T) {
	table := NewTable()
	keys := table.DefaultStrings()

	for _, lang := range table.Languages() {
		for key := range keys {
			_, ok := uiStrings[lang][key]
			assert.True(t, ok, "language %s missing key %s", lang, key)
		}
	}
}

func TestLanguageName(t *testing.T) {
	assert.Equal(t, "Japanese", LanguageName("ja"))
	assert.Equal(t, "Spanish", LanguageName("es"))
	assert.Equal(t, "Portuguese", LanguageName("pt-BR"))
	// Unknown codes pass through as the name itself.
	assert.Equal(t, "tlh", LanguageName("tlh"))
}
