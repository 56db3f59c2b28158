package catalog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/hammamikhairi/recipebook/internal/domain"
	"github.com/hammamikhairi/recipebook/internal/logger"
)

// ErrLoadFailed is returned when neither the requested nor the default
// language could be loaded.
var ErrLoadFailed = errors.New("catalog load failed")

// Loader reads data/ui-{lang}.json and data/recipes-{lang}.json from a
// filesystem.
type Loader struct {
	fsys        fs.FS
	defaultLang string
	supported   []string
	validate    *validator.Validate
	log         *logger.Logger
}

// NewLoader creates a loader over fsys. Paths inside fsys are
// "ui-{lang}.json" and "recipes-{lang}.json".
func NewLoader(fsys fs.FS, defaultLang string, supported []string, log *logger.Logger) *Loader {
	return &Loader{
		fsys:        fsys,
		defaultLang: defaultLang,
		supported:   supported,
		validate:    validator.New(),
		log:         log,
	}
}

// DefaultLanguage returns the fallback language.
func (l *Loader) DefaultLanguage() string { return l.defaultLang }

// Supports reports whether lang is a supported language code.
func (l *Loader) Supports(lang string) bool {
	return slices.Contains(l.supported, lang)
}

// Languages returns the supported language codes.
func (l *Loader) Languages() []string { return slices.Clone(l.supported) }

// Load reads the catalog for lang. An unsupported lang is treated as the
// default. If lang fails to load, the default language is tried once.
func (l *Loader) Load(ctx context.Context, lang string) (*Catalog, error) {
	if !l.Supports(lang) {
		l.log.Debug("language %q not supported, using %q", lang, l.defaultLang)
		lang = l.defaultLang
	}

	cat, err := l.load(ctx, lang)
	if err == nil {
		return cat, nil
	}
	l.log.Error("loading catalog for %s: %v", lang, err)

	if lang == l.defaultLang {
		return nil, fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}

	l.log.Info("falling back to default language %s", l.defaultLang)
	cat, ferr := l.load(ctx, l.defaultLang)
	if ferr != nil {
		l.log.Error("loading catalog for %s: %v", l.defaultLang, ferr)
		return nil, fmt.Errorf("%w: %v", ErrLoadFailed, errors.Join(err, ferr))
	}
	return cat, nil
}

func (l *Loader) load(ctx context.Context, lang string) (*Catalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var ui UIText
	if err := l.readJSON(fmt.Sprintf("ui-%s.json", lang), &ui); err != nil {
		return nil, err
	}

	var doc recipesDocument
	if err := l.readJSON(fmt.Sprintf("recipes-%s.json", lang), &doc); err != nil {
		return nil, err
	}

	recipes := make([]domain.Recipe, 0, len(doc.Recipes))
	seen := make(map[string]bool, len(doc.Recipes))
	for i, rd := range doc.Recipes {
		if err := l.validate.Struct(rd); err != nil {
			l.log.Warn("skipping recipe #%d in %s: %v", i, lang, err)
			continue
		}
		if seen[rd.ID] {
			l.log.Warn("skipping duplicate recipe id %q in %s", rd.ID, lang)
			continue
		}
		seen[rd.ID] = true
		recipes = append(recipes, rd.toDomain())
	}

	l.log.Info("loaded %d recipes for %s", len(recipes), lang)
	return New(lang, recipes, ui), nil
}

func (l *Loader) readJSON(name string, v any) error {
	data, err := fs.ReadFile(l.fsys, path.Clean(name))
	if err != nil {
		return fmt.Errorf("reading %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", strings.TrimSuffix(name, ".json"), err)
	}
	return nil
}
