package i18n

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Catalog is an immutable set of translated message templates keyed by
// language code, loaded once at startup and passed to whoever renders
// user-facing text.
type Catalog struct {
	defaultLang string
	messages    map[string]map[string]string
}

// defaultMessages covers the notification templates the core emits, for
// deployments that ship no catalog file.
var defaultMessages = map[string]map[string]string{
	"en": {
		"booking.created":   "Your booking %s is registered and awaiting confirmation.",
		"booking.confirmed": "Booking %s has been confirmed.",
	},
	"pt": {
		"booking.created":   "A sua reserva %s foi registada e aguarda confirmação.",
		"booking.confirmed": "A reserva %s foi confirmada.",
	},
}

// New builds a catalog from an explicit message table.
func New(defaultLang string, messages map[string]map[string]string) *Catalog {
	return &Catalog{defaultLang: defaultLang, messages: messages}
}

// Load reads a YAML catalog (language code -> message key -> template) from
// path. An empty path yields the built-in defaults.
func Load(path, defaultLang string) (*Catalog, error) {
	if path == "" {
		return New(defaultLang, defaultMessages), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}

	var messages map[string]map[string]string
	if err := yaml.Unmarshal(data, &messages); err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}
	if _, ok := messages[defaultLang]; !ok {
		return nil, fmt.Errorf("catalog %s has no entries for default language %q", path, defaultLang)
	}
	return New(defaultLang, messages), nil
}

// Get renders the template for key in lang, falling back to the default
// language and finally to the key itself.
func (c *Catalog) Get(lang, key string, args ...any) string {
	tmpl, ok := c.messages[lang][key]
	if !ok {
		tmpl, ok = c.messages[c.defaultLang][key]
	}
	if !ok {
		return key
	}
	if len(args) == 0 {
		return tmpl
	}
	return fmt.Sprintf(tmpl, args...)
}
