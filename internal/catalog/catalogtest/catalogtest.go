// Package catalogtest provides a small two-language recipe catalog for
// tests.
//
// The "no" catalog has six recipes:
//
//	id           category          meal     cuisine     page
//	fiskesuppe   Supper            Middag   Norsk       12
//	ertesuppe    Supper            Lunsj    Norsk       12
//	pepperkaker  Julekaker         Dessert  Norsk       80
//	lammestek    Slakteveiledning  Middag   Norsk       -
//	tacos        Hverdagsmat       Middag   Meksikansk  30
//	eplekake     Kaker             Dessert  Norsk       55
//
// The "pb" catalog has the same ids and categories with translated titles
// and meals.
package catalogtest

import (
	"context"
	"embed"
	"io/fs"
	"testing"

	"github.com/hammamikhairi/recipebook/internal/catalog"
	"github.com/hammamikhairi/recipebook/internal/logger"
)

//go:embed data/*.json
var files embed.FS

// FS returns the fixture files rooted so that "recipes-no.json" resolves.
func FS() fs.FS {
	sub, err := fs.Sub(files, "data")
	if err != nil {
		panic(err)
	}
	return sub
}

// Loader returns a loader over the fixtures with "no" as default.
func Loader(log *logger.Logger) *catalog.Loader {
	return catalog.NewLoader(FS(), "no", []string{"no", "pb"}, log)
}

// Load loads the fixture catalog for lang or fails the test.
func Load(t testing.TB, lang string) *catalog.Catalog {
	t.Helper()
	c, err := Loader(logger.Nop()).Load(context.Background(), lang)
	if err != nil {
		t.Fatalf("loading fixture catalog: %v", err)
	}
	return c
}
