// Package i18n resolves user-facing strings from embedded YAML catalogs.
//
// Keys are dotted paths into the catalog ("errors.networkError"). Values may
// reference variables as {{name}}. A "context" variable selects the
// key_<context> variant when the catalog has one.
package i18n

import (
	"embed"
	"fmt"
	"maps"
	"path"
	"slices"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
	"golang.org/x/text/language"
)

// DefaultLanguage is used when no supported language matches.
const DefaultLanguage = "en"

//go:embed locales/*.yaml
var localeFS embed.FS

// supported lists the catalogs shipped in locales/, default first.
var supported = []language.Tag{language.English, language.German, language.Arabic}

var matcher = language.NewMatcher(supported)

var (
	loadOnce sync.Once
	catalogs map[string]map[string]string
	loadErr  error
)

// Translator resolves keys for one language, falling back to English and
// finally to the key itself.
type Translator struct {
	lang     string
	primary  map[string]string
	fallback map[string]string
}

// New returns a Translator for the best supported match of lang
// (for example "de-AT" or "ar_EG.UTF-8"). An empty lang yields English.
func New(lang string) (*Translator, error) {
	loadOnce.Do(func() {
		catalogs, loadErr = loadCatalogs()
	})
	if loadErr != nil {
		return nil, loadErr
	}

	code := Match(lang)
	return &Translator{
		lang:     code,
		primary:  catalogs[code],
		fallback: catalogs[DefaultLanguage],
	}, nil
}

// Match returns the supported language code that best matches lang.
func Match(lang string) string {
	lang = strings.TrimSpace(lang)
	if i := strings.IndexAny(lang, ".@"); i >= 0 {
		lang = lang[:i]
	}
	lang = strings.ReplaceAll(lang, "_", "-")
	if lang == "" {
		return DefaultLanguage
	}
	_, idx, conf := matcher.Match(language.Make(lang))
	if conf == language.No {
		return DefaultLanguage
	}
	base, _ := supported[idx].Base()
	return base.String()
}

// Supported returns the language codes with a catalog.
func Supported() []string {
	codes := make([]string, 0, len(supported))
	for _, tag := range supported {
		base, _ := tag.Base()
		codes = append(codes, base.String())
	}
	return codes
}

// Language returns the resolved language code.
func (t *Translator) Language() string {
	return t.lang
}

// RTL reports whether the language is written right to left.
func (t *Translator) RTL() bool {
	return t.lang == "ar"
}

// T resolves key and substitutes vars.
func (t *Translator) T(key string, vars map[string]string) string {
	if ctx := vars["context"]; ctx != "" {
		if s, ok := t.lookup(key + "_" + ctx); ok {
			return interpolate(s, vars)
		}
	}
	if s, ok := t.lookup(key); ok {
		return interpolate(s, vars)
	}
	return key
}

func (t *Translator) lookup(key string) (string, bool) {
	if s, ok := t.primary[key]; ok {
		return s, true
	}
	s, ok := t.fallback[key]
	return s, ok
}

// interpolate substitutes {{name}} placeholders in one pass. Substituted
// values are never rescanned, and keys are ordered so the result does not
// depend on map iteration.
func interpolate(s string, vars map[string]string) string {
	if len(vars) == 0 || !strings.Contains(s, "{{") {
		return s
	}
	pairs := make([]string, 0, len(vars)*2)
	for _, k := range slices.Sorted(maps.Keys(vars)) {
		pairs = append(pairs, "{{"+k+"}}", vars[k])
	}
	return strings.NewReplacer(pairs...).Replace(s)
}

func loadCatalogs() (map[string]map[string]string, error) {
	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("reading locales: %w", err)
	}

	result := make(map[string]map[string]string, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		data, err := localeFS.ReadFile(path.Join("locales", name))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		var tree map[string]any
		if err := yaml.Unmarshal(data, &tree); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", name, err)
		}
		flat := make(map[string]string)
		flatten("", tree, flat)
		result[strings.TrimSuffix(name, path.Ext(name))] = flat
	}
	return result, nil
}

func flatten(prefix string, node map[string]any, out map[string]string) {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]any:
			flatten(key, val, out)
		case string:
			out[key] = val
		default:
			out[key] = fmt.Sprint(val)
		}
	}
}
