// Package i18n holds the localized message bundles of the skill.
//
// Bundles are YAML files with one template per message key. Templates use
// text/template syntax with named parameters ({{.Company}}). Every bundle is
// checked at load time: all keys must be present and each template must
// reference exactly the parameters its key declares.
package i18n

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"stocks-skill/internal/domain"
)

//go:embed locales/*.yaml
var embedded embed.FS

type bundleFile struct {
	Locale   string            `yaml:"locale"`
	Messages map[string]string `yaml:"messages"`
}

// Catalog is the set of loaded bundles. It is read-only after Load.
type Catalog struct {
	bundles map[string]*Localizer
}

// Localizer renders the messages of a single locale.
type Localizer struct {
	locale    string
	templates map[Key]*template.Template
}

// Default loads the bundles compiled into the binary.
func Default() (*Catalog, error) {
	sub, err := fs.Sub(embedded, "locales")
	if err != nil {
		return nil, fmt.Errorf("opening embedded locales: %w", err)
	}
	return Load(sub)
}

// Load reads every *.yaml bundle at the root of fsys.
func Load(fsys fs.FS) (*Catalog, error) {
	names, err := fs.Glob(fsys, "*.yaml")
	if err != nil {
		return nil, fmt.Errorf("listing bundles: %w", err)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no locale bundles found")
	}

	c := &Catalog{bundles: make(map[string]*Localizer, len(names))}
	for _, name := range names {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("reading bundle %s: %w", name, err)
		}

		var file bundleFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parsing bundle %s: %w", name, err)
		}
		if file.Locale == "" {
			file.Locale = strings.TrimSuffix(path.Base(name), path.Ext(name))
		}

		l, err := compile(file)
		if err != nil {
			return nil, fmt.Errorf("bundle %s: %w", name, err)
		}

		tag := normalizeTag(l.locale)
		if _, dup := c.bundles[tag]; dup {
			return nil, fmt.Errorf("bundle %s: locale %q defined twice", name, l.locale)
		}
		c.bundles[tag] = l
	}

	return c, nil
}

func compile(file bundleFile) (*Localizer, error) {
	l := &Localizer{
		locale:    file.Locale,
		templates: make(map[Key]*template.Template, len(messageParams)),
	}

	for raw := range file.Messages {
		if _, known := messageParams[Key(raw)]; !known {
			return nil, fmt.Errorf("unknown message key %s", raw)
		}
	}

	for key, params := range messageParams {
		text, ok := file.Messages[string(key)]
		if !ok || strings.TrimSpace(text) == "" {
			return nil, fmt.Errorf("missing message %s", key)
		}

		tmpl, err := template.New(string(key)).Option("missingkey=error").Parse(strings.TrimSpace(text))
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", key, err)
		}
		if err := checkParams(tmpl, params); err != nil {
			return nil, fmt.Errorf("message %s: %w", key, err)
		}

		l.templates[key] = tmpl
	}

	return l, nil
}

// checkParams renders the template with a marker per declared parameter.
// An undeclared reference fails with missingkey=error, an unused one leaves
// its marker out of the output.
func checkParams(tmpl *template.Template, params []string) error {
	data := make(Params, len(params))
	for _, p := range params {
		data[p] = "\x00" + p + "\x00"
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("references an undeclared parameter: %w", err)
	}
	for _, p := range params {
		if !strings.Contains(buf.String(), "\x00"+p+"\x00") {
			return fmt.Errorf("does not use parameter %s", p)
		}
	}
	return nil
}

// Localizer returns the bundle for a locale tag such as "de-DE", falling back
// to the base language ("de"). There is no default locale.
func (c *Catalog) Localizer(tag string) (*Localizer, error) {
	norm := normalizeTag(tag)
	if l, ok := c.bundles[norm]; ok {
		return l, nil
	}
	if base, _, found := strings.Cut(norm, "-"); found {
		if l, ok := c.bundles[base]; ok {
			return l, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrMissingLocale, tag)
}

// Require fails if any of the given tags has no bundle.
func (c *Catalog) Require(tags ...string) error {
	for _, tag := range tags {
		if _, err := c.Localizer(tag); err != nil {
			return err
		}
	}
	return nil
}

// Locales lists the loaded bundle locales.
func (c *Catalog) Locales() []string {
	out := make([]string, 0, len(c.bundles))
	for _, l := range c.bundles {
		out = append(out, l.locale)
	}
	sort.Strings(out)
	return out
}

func (l *Localizer) Locale() string {
	return l.locale
}

// T renders a message. params must match the parameters declared for key.
func (l *Localizer) T(key Key, params Params) (string, error) {
	tmpl, ok := l.templates[key]
	if !ok {
		return "", fmt.Errorf("locale %s: unknown message %s", l.locale, key)
	}

	declared := messageParams[key]
	if len(params) != len(declared) {
		return "", fmt.Errorf("message %s: got %d parameters, want %d", key, len(params), len(declared))
	}
	for _, p := range declared {
		if _, ok := params[p]; !ok {
			return "", fmt.Errorf("message %s: missing parameter %s", key, p)
		}
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, params); err != nil {
		return "", fmt.Errorf("rendering %s: %w", key, err)
	}
	return buf.String(), nil
}

func normalizeTag(tag string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(tag), "_", "-"))
}
