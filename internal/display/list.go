package display

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/hammamikhairi/recipebook/internal/domain"
)

var _ domain.Renderer = (*ListRenderer)(nil)

// Lookup resolves recipe ids.
type Lookup interface {
	Get(id string) (*domain.Recipe, error)
}

// Records reads engagement data. It must not block on the caller of
// RenderRecipes.
type Records interface {
	Record(id string) domain.EngagementRecord
}

// palette turns text into its on-screen form. The plain palette leaves it
// untouched.
type palette struct {
	title, meta, accent, dim func(string) string
}

func styled(s lipgloss.Style) func(string) string {
	return func(text string) string { return s.Render(text) }
}

func identity(s string) string { return s }

var (
	plainPalette = palette{title: identity, meta: identity, accent: identity, dim: identity}
	colorPalette = palette{
		title:  styled(primaryStyle),
		meta:   styled(secondaryStyle),
		accent: styled(accentStyle),
		dim:    styled(secondaryStyle),
	}
)

// ListOption configures a ListRenderer.
type ListOption func(*ListRenderer)

// WithPlain disables colors.
func WithPlain() ListOption {
	return func(l *ListRenderer) { l.pal = plainPalette }
}

// ListRenderer prints the ranked recipe list through out. Until Bind is
// called renders are dropped, and afterwards a render identical to the
// previous one is skipped.
type ListRenderer struct {
	out func(string)
	pal palette

	mu      sync.Mutex
	recipes Lookup
	records Records
	last    []string
}

func NewListRenderer(out func(string), opts ...ListOption) *ListRenderer {
	l := &ListRenderer{out: out, pal: colorPalette}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Bind attaches the data sources. The renderer is handed to the app
// before the app exists, so they arrive later.
func (l *ListRenderer) Bind(recipes Lookup, records Records) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.recipes = recipes
	l.records = records
}

// RenderRecipes prints the list if it changed since the last render.
func (l *ListRenderer) RenderRecipes(ids []string) {
	l.mu.Lock()
	if l.recipes == nil || slices.Equal(ids, l.last) {
		l.mu.Unlock()
		return
	}
	l.last = slices.Clone(ids)
	l.mu.Unlock()

	l.out(l.Format(ids))
}

// Show prints the list unconditionally.
func (l *ListRenderer) Show(ids []string) {
	l.mu.Lock()
	l.last = slices.Clone(ids)
	l.mu.Unlock()
	l.out(l.Format(ids))
}

// Format renders ids as a numbered list.
func (l *ListRenderer) Format(ids []string) string {
	l.mu.Lock()
	recipes, records := l.recipes, l.records
	l.mu.Unlock()

	if len(ids) == 0 {
		return l.pal.dim("  no recipes match") + "\n"
	}

	var b strings.Builder
	for i, id := range ids {
		r, err := recipes.Get(id)
		if err != nil {
			continue
		}
		var rec domain.EngagementRecord
		if records != nil {
			rec = records.Record(id)
		}
		fmt.Fprintf(&b, "%3d. %s", i+1, l.pal.title(r.Title))
		if meta := joinNonEmpty(" · ", r.Category, r.Meal, r.Cuisine); meta != "" {
			b.WriteString("  " + l.pal.meta(meta))
		}
		if p, ok := r.Page(); ok && p > 0 {
			b.WriteString(l.pal.dim(fmt.Sprintf("  p.%d", p)))
		}
		if rec.UserRating != nil {
			b.WriteString("  " + l.pal.accent(stars(*rec.UserRating)))
		}
		if n := rec.MadeCount(); n > 0 {
			b.WriteString(l.pal.dim(fmt.Sprintf("  made %d×", n)))
		}
		if rec.Tagged {
			b.WriteString("  " + l.pal.accent("⚑"))
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "%s\n", l.pal.dim(fmt.Sprintf("  %d recipes", len(ids))))
	return b.String()
}

func stars(n int) string {
	n = max(0, min(n, 5))
	return strings.Repeat("★", n) + strings.Repeat("☆", 5-n)
}

func joinNonEmpty(sep string, parts ...string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}
