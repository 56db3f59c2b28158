package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hammamikhairi/recipebook/internal/display"
	"github.com/hammamikhairi/recipebook/internal/domain"
	"github.com/hammamikhairi/recipebook/internal/engine"
)

// withApp runs fn against a freshly built app and tears everything down
// afterwards.
func withApp(ctx context.Context, opts *rootOptions, deps engine.Deps, fn func(app *engine.App) error) error {
	rt, err := setup(opts, false)
	if err != nil {
		return err
	}
	defer rt.close()

	app, err := rt.newApp(ctx, initialQuery(opts), deps)
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(app)
}

func listOptions(plain bool) []display.ListOption {
	if plain {
		return []display.ListOption{display.WithPlain()}
	}
	return nil
}

func newListCommand(rootOpts *rootOptions) *cobra.Command {
	var (
		sortName string
		search   string
		filters  []string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the ranked recipe list",
		Long: `Print the recipe list for the starting location, optionally narrowed
by extra filters ("dimension:value") and a search term.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			order, err := domain.ParseSortOrder(sortName)
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), rootOpts, engine.Deps{}, func(app *engine.App) error {
				for _, f := range filters {
					dim, value, err := matchFilter(app, f)
					if err != nil {
						return err
					}
					if _, err := app.ActivateFilter(dim, value); err != nil {
						return err
					}
				}
				if search != "" {
					app.Search(search)
				}
				ids := app.ChangeSortOrder(order)

				list := display.NewListRenderer(printTo(cmd.OutOrStdout()), listOptions(rootOpts.plain)...)
				list.Bind(app.Catalog(), app)
				list.Show(ids)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&sortName, "sort", "s", domain.SortRecommendation.String(), "sort order (recommendation|recipebook|alphabetical|madecount|rating)")
	cmd.Flags().StringVar(&search, "search", "", "search titles and ingredients")
	cmd.Flags().StringArrayVarP(&filters, "filter", "f", nil, "filter as dimension:value (repeatable)")
	return cmd
}

func newShowCommand(rootOpts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <recipe>",
		Short: "Print one recipe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), rootOpts, engine.Deps{}, func(app *engine.App) error {
				r, err := resolveRecipe(app.Catalog(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), display.FormatRecipe(r, app.Record(r.ID), app.Catalog().UIText(), rootOpts.plain))
				return nil
			})
		},
	}
}

func newFiltersCommand(rootOpts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "filters",
		Short: "List the filter values of the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), rootOpts, engine.Deps{}, func(app *engine.App) error {
				writeFilters(cmd.OutOrStdout(), app)
				return nil
			})
		},
	}
}

func newRateCommand(rootOpts *rootOptions) *cobra.Command {
	var clearRating bool

	cmd := &cobra.Command{
		Use:   "rate <recipe> [1-5]",
		Short: "Rate a recipe, or clear its rating with --clear",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !clearRating && len(args) != 2 {
				return fmt.Errorf("rate needs a rating from 1 to 5, or --clear")
			}
			ctx := cmd.Context()
			return withApp(ctx, rootOpts, engine.Deps{}, func(app *engine.App) error {
				r, err := resolveRecipe(app.Catalog(), args[0])
				if err != nil {
					return err
				}
				if clearRating {
					if err := app.ClearRating(ctx, r.ID); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Cleared rating of %s\n", r.Title)
					return nil
				}
				n, err := strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("%w: %q", domain.ErrInvalidRating, args[1])
				}
				if err := app.Rate(ctx, r.ID, n); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Rated %s %d/5\n", r.Title, n)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&clearRating, "clear", false, "remove the rating")
	return cmd
}

func newMadeCommand(rootOpts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "made <recipe>",
		Short: "Toggle whether a recipe was cooked today",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withApp(ctx, rootOpts, engine.Deps{}, func(app *engine.App) error {
				r, err := resolveRecipe(app.Catalog(), args[0])
				if err != nil {
					return err
				}
				res, err := app.ToggleMadeToday(ctx, r.ID)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), madeMessage(r.Title, res))
				return nil
			})
		},
	}
}

func newTagCommand(rootOpts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tag <recipe>",
		Short: "Pin or unpin a recipe at the top of the list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withApp(ctx, rootOpts, engine.Deps{}, func(app *engine.App) error {
				r, err := resolveRecipe(app.Catalog(), args[0])
				if err != nil {
					return err
				}
				tagged, err := app.ToggleTag(ctx, r.ID)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), tagMessage(r.Title, tagged))
				return nil
			})
		},
	}
}

func newLinkCommand(rootOpts *rootOptions) *cobra.Command {
	var copyLink bool

	cmd := &cobra.Command{
		Use:   "link [recipe]",
		Short: "Print a shareable link to the location or to one recipe",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps := engine.Deps{Clipboard: display.SystemClipboard{}}
			return withApp(cmd.Context(), rootOpts, deps, func(app *engine.App) error {
				link := app.ShareURL()
				if len(args) == 1 {
					r, err := resolveRecipe(app.Catalog(), args[0])
					if err != nil {
						return err
					}
					link = app.RecipeURL(r.ID)
				}
				fmt.Fprintln(cmd.OutOrStdout(), link)
				if copyLink {
					if !app.CopyLink(link) {
						return fmt.Errorf("could not copy the link to the clipboard")
					}
					fmt.Fprintln(cmd.ErrOrStderr(), "copied to clipboard")
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&copyLink, "copy", false, "also copy the link to the clipboard")
	return cmd
}

// ── Shared helpers ───────────────────────────────────────────────

func printTo(w io.Writer) func(string) {
	return func(s string) { fmt.Fprint(w, s) }
}

// matchFilter resolves "dimension:value" against the catalog, ignoring
// case, spaces and hyphens in the value.
func matchFilter(app *engine.App, key string) (domain.Dimension, string, error) {
	dimName, value, err := domain.SplitFilterKey(key)
	if err != nil {
		return "", "", err
	}
	dim, ok := domain.ParseDimension(strings.ToLower(string(dimName)))
	if !ok {
		return "", "", fmt.Errorf("%w: unknown dimension %q", domain.ErrInvalidFilterKey, dimName)
	}
	shown, ok := app.Catalog().Taxonomy().Localize(dim, domain.CanonicalKey(value))
	if !ok {
		return "", "", fmt.Errorf("%w: no %s named %q", domain.ErrNotFound, dim, value)
	}
	return dim, shown, nil
}

func writeFilters(w io.Writer, app *engine.App) {
	st := app.Status()
	active := domain.NewActiveFilterSet(st.Filters...)
	values := app.Catalog().Filters()
	ui := app.Catalog().UIText()
	for _, dim := range domain.FilterDimensions {
		fmt.Fprintf(w, "%s (%s)\n", ui.T("filter.categories."+string(dim)), dim)
		for _, v := range values[dim] {
			mark := " "
			if active.Enabled(domain.FilterKey(dim, v)) {
				mark = "x"
			}
			fmt.Fprintf(w, "  [%s] %s\n", mark, v)
		}
	}
}

func madeMessage(title string, res domain.MadeResult) string {
	if res.MadeToday {
		return fmt.Sprintf("Marked %s as made today (%d times in total)", title, res.MadeCount)
	}
	return fmt.Sprintf("Unmarked %s for today (%d times in total)", title, res.MadeCount)
}

func tagMessage(title string, tagged bool) string {
	if tagged {
		return fmt.Sprintf("Tagged %s", title)
	}
	return fmt.Sprintf("Untagged %s", title)
}
