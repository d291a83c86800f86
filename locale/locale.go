// Package locale provides the user-facing strings of the bot, loaded from embedded
// YAML catalogs (strings/<lang>.yaml). Lookups fall back to English, then to the key itself.
package locale

import (
	"embed"
	"fmt"
	"log/slog"
	"path"

	"gopkg.in/yaml.v2"
)

// DefaultLanguage is always present and used as fallback.
const DefaultLanguage = "en"

//go:embed strings/*.yaml
var files embed.FS

type sections map[string]map[string]string

// Catalog resolves localized strings. It is read-only after Load and safe for concurrent use.
type Catalog struct {
	lang     string
	strings  sections
	fallback sections
}

// Load returns the catalog for lang. Unknown languages fall back to DefaultLanguage.
func Load(lang string) (*Catalog, error) {
	fallback, err := readSections(DefaultLanguage)
	if err != nil {
		return nil, err
	}
	c := &Catalog{lang: DefaultLanguage, strings: fallback, fallback: fallback}
	if lang == "" || lang == DefaultLanguage {
		return c, nil
	}
	s, err := readSections(lang)
	if err != nil {
		slog.Warn("unknown locale, using default", slog.String("locale", lang), slog.String("default", DefaultLanguage))
		return c, nil
	}
	c.lang = lang
	c.strings = s
	return c, nil
}

// MustLoad is Load for package-level initialization and tests.
func MustLoad(lang string) *Catalog {
	c, err := Load(lang)
	if err != nil {
		panic(err)
	}
	return c
}

func readSections(lang string) (sections, error) {
	b, err := files.ReadFile(path.Join("strings", lang+".yaml"))
	if err != nil {
		return nil, fmt.Errorf("locale %q: %w", lang, err)
	}
	var s sections
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("locale %q: %w", lang, err)
	}
	return s, nil
}

// Language returns the language actually in use.
func (c *Catalog) Language() string { return c.lang }

// String looks up key in section. When args are given the value is used as a fmt format.
func (c *Catalog) String(key, section string, args ...any) string {
	v, ok := c.strings[section][key]
	if !ok {
		v, ok = c.fallback[section][key]
	}
	if !ok {
		return key
	}
	if len(args) > 0 {
		return fmt.Sprintf(v, args...)
	}
	return v
}
