// Package localized holds display strings that carry remote-provided
// translations alongside their default-language value.
package localized

// String is a display name plus its translations keyed by language code
// (e.g. "de", "ko"). The zero value is an empty name with no variants.
type String struct {
	Default  string            `json:"default"`
	Variants map[string]string `json:"variants,omitempty"`
}

func New(def string) String {
	return String{Default: def}
}

// WithVariant returns a copy with the given translation set. The default
// language is never stored as a variant.
func (s String) WithVariant(lang, value string) String {
	out := String{Default: s.Default, Variants: make(map[string]string, len(s.Variants)+1)}
	for k, v := range s.Variants {
		out.Variants[k] = v
	}
	out.Variants[lang] = value
	return out
}

// Resolve returns the translation for lang, falling back to the default
// when no translation exists or the translation is empty.
func (s String) Resolve(lang string) string {
	if v, ok := s.Variants[lang]; ok && v != "" {
		return v
	}
	return s.Default
}
