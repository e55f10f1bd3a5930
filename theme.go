package agrivaani

// Theme is the persisted UI theme preference.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ThemeKey is the storage key of the theme preference.
const ThemeKey = "theme"

// ParseTheme parses a stored theme value.
func ParseTheme(s string) (Theme, bool) {
	switch Theme(s) {
	case ThemeLight, ThemeDark:
		return Theme(s), true
	}
	return ThemeLight, false
}

// Toggle returns the opposite theme.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// ThemeStore persists the theme preference in a key-value store.
type ThemeStore struct {
	kv TranslationCache
}

// NewThemeStore creates a theme store backed by kv.
func NewThemeStore(kv TranslationCache) *ThemeStore {
	return &ThemeStore{kv: kv}
}

// Load returns the stored theme, or light when nothing valid is stored.
func (s *ThemeStore) Load() Theme {
	if s.kv == nil {
		return ThemeLight
	}
	v, ok := s.kv.Get(ThemeKey)
	if !ok {
		return ThemeLight
	}
	theme, _ := ParseTheme(v)
	return theme
}

// Save stores the theme.
func (s *ThemeStore) Save(theme Theme) error {
	if _, ok := ParseTheme(string(theme)); !ok {
		return &CacheError{Message: "invalid theme " + string(theme)}
	}
	if s.kv == nil {
		return &CacheError{Message: "no preference store configured"}
	}
	if err := s.kv.Set(ThemeKey, string(theme)); err != nil {
		return &CacheError{Message: "saving theme", Cause: err}
	}
	return nil
}

// Toggle flips the stored theme and returns the new value.
func (s *ThemeStore) Toggle() (Theme, error) {
	next := s.Load().Toggle()
	if err := s.Save(next); err != nil {
		return s.Load(), err
	}
	return next, nil
}
