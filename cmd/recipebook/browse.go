package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/hammamikhairi/recipebook/internal/catalog"
	"github.com/hammamikhairi/recipebook/internal/conversation"
	"github.com/hammamikhairi/recipebook/internal/display"
	"github.com/hammamikhairi/recipebook/internal/domain"
	"github.com/hammamikhairi/recipebook/internal/engine"
	"github.com/hammamikhairi/recipebook/internal/logger"
	"github.com/hammamikhairi/recipebook/internal/navigation"
)

// historyKey is where the browser keeps its navigation history between
// sessions.
const historyKey = "history"

func newBrowseCommand(rootOpts *rootOptions) *cobra.Command {
	var resume bool

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse the catalog interactively (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse(cmd.Context(), rootOpts, resume)
		},
	}
	cmd.Flags().BoolVar(&resume, "resume", false, "continue from the history of the last session")
	return cmd
}

func runBrowse(ctx context.Context, opts *rootOptions, resume bool) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	rt, err := setup(opts, true)
	if err != nil {
		return err
	}
	defer rt.close()

	query := initialQuery(opts)
	history := navigation.NewMemoryHistory(query)
	if resume {
		if restored, ok := loadHistory(ctx, rt, query); ok {
			history = restored
			if e, ok := restored.Current(); ok && opts.location == "" && opts.lang == "" {
				query = e.Query
			}
		}
	}

	b := &browser{log: rt.log.With("browse"), plain: opts.plain}
	ui := display.NewUI(b.status)
	list := display.NewListRenderer(ui.PrintBlock, listOptions(opts.plain)...)

	app, err := rt.newApp(ctx, query, engine.Deps{
		Renderer:  list,
		History:   history,
		Clipboard: display.SystemClipboard{},
	})
	if err != nil {
		return err
	}
	defer app.Close()
	list.Bind(app.Catalog(), app)

	b.app = app
	b.ui = ui
	b.list = list
	b.parser = conversation.NewKeywordParser(rt.log.With("parser"))
	b.notifier = conversation.NewCLINotifier(rt.log.With("notify"), ui.Printf)

	ui.Println(display.RenderBanner(
		app.Catalog().UIText().T("header.title"),
		catalog.DailyImage(rt.cfg.DailyImages, time.Now()),
	))
	ui.Println(display.BannerStyle.Render("  Type 'help' for commands, 'quit' to exit."))
	ui.Println()

	go func() {
		ui.WaitReady()
		b.run(ctx)
		ui.Quit()
	}()

	if err := ui.Run(); err != nil {
		rt.log.Error("display: %v", err)
	}
	cancel()

	saveHistory(context.Background(), rt, history)
	return nil
}

func loadHistory(ctx context.Context, rt *runtime, query string) (*navigation.MemoryHistory, bool) {
	data, err := rt.kv.Get(ctx, historyKey)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, false
	}
	if err != nil {
		rt.log.Warn("reading history: %v", err)
		return nil, false
	}
	h := navigation.NewMemoryHistory(query)
	if err := json.Unmarshal(data, h); err != nil {
		rt.log.Warn("history is unreadable, starting fresh: %v", err)
		return nil, false
	}
	rt.log.Debug("resumed %d history entries", h.Len())
	return h, true
}

func saveHistory(ctx context.Context, rt *runtime, h *navigation.MemoryHistory) {
	data, err := json.Marshal(h)
	if err != nil {
		rt.log.Error("encoding history: %v", err)
		return
	}
	if err := rt.kv.Set(ctx, historyKey, data); err != nil {
		rt.log.Error("saving history: %v", err)
	}
}

// browser is the interactive loop around one App.
type browser struct {
	app      *engine.App
	ui       *display.UI
	list     *display.ListRenderer
	parser   domain.IntentParser
	notifier domain.Notifier
	log      *logger.Logger
	plain    bool
}

func (b *browser) status() []display.BarItem {
	if b.app == nil {
		return nil
	}
	st := b.app.Status()
	active := 0
	for _, f := range st.Filters {
		if f.Enabled {
			active++
		}
	}
	items := []display.BarItem{
		{Label: "lang", Value: st.Language},
		{Label: "sort", Value: st.SortOrder.String()},
		{Label: "filters", Value: strconv.Itoa(active)},
		{Label: "shown", Value: strconv.Itoa(len(st.Visible))},
	}
	if st.Search != "" {
		items = append(items, display.BarItem{Label: "search", Value: st.Search})
	}
	if st.OpenRecipe != "" {
		items = append(items, display.BarItem{Label: "open", Value: st.OpenRecipe})
	}
	if st.ResortPending {
		items = append(items, display.BarItem{Label: "re-sort", Value: "pending", Pending: true})
	}
	return items
}

func (b *browser) run(ctx context.Context) {
	b.list.Show(b.app.Visible())
	if r, ok := b.app.CurrentRecipe(); ok {
		b.printRecipe(r)
	}

	uiCh := b.ui.InputChan()
	for {
		var input string
		select {
		case <-ctx.Done():
			return
		case <-b.ui.QuitChan():
			return
		case line, ok := <-uiCh:
			if !ok {
				return
			}
			input = strings.TrimSpace(line)
		}
		if input == "" {
			continue
		}

		intent, err := b.parser.Parse(ctx, input)
		if err != nil {
			b.log.Error("parsing input: %v", err)
			continue
		}
		b.log.Debug("intent: %s (payload=%q)", intent.Type, intent.Payload)
		if !b.handleIntent(ctx, intent) {
			return
		}
	}
}

// handleIntent runs one command. It returns false when the user quits.
func (b *browser) handleIntent(ctx context.Context, intent *domain.Intent) bool {
	switch intent.Type {
	case domain.IntentHelp:
		b.showHelp()
	case domain.IntentList:
		b.list.Show(b.app.Visible())
	case domain.IntentSearch:
		b.app.Search(intent.Payload)
	case domain.IntentClearSearch:
		b.app.ClearSearch()
	case domain.IntentFilter:
		b.toggleFilter(intent.Payload)
	case domain.IntentRemoveFilter:
		b.removeFilter(intent.Payload)
	case domain.IntentClearFilters:
		b.app.ClearFilters()
	case domain.IntentFilters:
		b.showFilters()
	case domain.IntentSort:
		b.changeSort(intent.Payload)
	case domain.IntentOpen:
		b.open(intent.Payload)
	case domain.IntentClose:
		if err := b.app.CloseRecipe(); err != nil {
			b.warn(ctx, err)
		}
	case domain.IntentRate:
		b.rate(ctx, intent.Payload)
	case domain.IntentClearRating:
		b.withOpenRecipe(ctx, func(r *domain.Recipe) error {
			if err := b.app.ClearRating(ctx, r.ID); err != nil {
				return err
			}
			return b.notifier.Notify(ctx, "Rating cleared")
		})
	case domain.IntentMade:
		b.withOpenRecipe(ctx, func(r *domain.Recipe) error {
			res, err := b.app.ToggleMadeToday(ctx, r.ID)
			if err != nil {
				return err
			}
			return b.notifier.Notify(ctx, madeMessage(r.Title, res))
		})
	case domain.IntentTag:
		b.withOpenRecipe(ctx, func(r *domain.Recipe) error {
			tagged, err := b.app.ToggleTag(ctx, r.ID)
			if err != nil {
				return err
			}
			return b.notifier.Notify(ctx, tagMessage(r.Title, tagged))
		})
	case domain.IntentBack:
		if !b.app.Back() {
			b.ui.PrintHint("Already at the oldest entry.")
			break
		}
		b.afterHistoryMove()
	case domain.IntentForward:
		if !b.app.Forward() {
			b.ui.PrintHint("Already at the newest entry.")
			break
		}
		b.afterHistoryMove()
	case domain.IntentShare:
		link, copied := b.app.CopyShareURL()
		b.ui.PrintLink("" + link)
		if copied {
			b.ui.PrintHint("Copied to clipboard.")
		}
	case domain.IntentLanguage:
		if err := b.app.SwitchLanguage(ctx, strings.ToLower(intent.Payload)); err != nil {
			b.warn(ctx, err)
		}
	case domain.IntentQuit:
		b.ui.PrintHint("Bye.")
		return false
	default:
		b.ui.PrintHint("Unknown command. Type 'help' for the list.")
	}
	return true
}

func (b *browser) warn(ctx context.Context, err error) {
	_ = b.notifier.NotifyUrgent(ctx, err.Error())
}

func (b *browser) withOpenRecipe(ctx context.Context, fn func(r *domain.Recipe) error) {
	r, ok := b.app.CurrentRecipe()
	if !ok {
		b.warn(ctx, domain.ErrNoRecipeOpen)
		return
	}
	if err := fn(r); err != nil {
		b.warn(ctx, err)
	}
}

func (b *browser) toggleFilter(payload string) {
	dim, value, err := matchFilter(b.app, payload)
	if err != nil {
		b.ui.PrintUrgent("" + err.Error())
		return
	}
	key := domain.FilterKey(dim, value)
	for _, f := range b.app.Status().Filters {
		if f.Key == key {
			if err := b.app.ToggleFilter(key); err != nil {
				b.ui.PrintUrgent("" + err.Error())
			}
			return
		}
	}
	if _, err := b.app.ActivateFilter(dim, value); err != nil {
		b.ui.PrintUrgent("" + err.Error())
	}
}

func (b *browser) removeFilter(payload string) {
	dim, value, err := matchFilter(b.app, payload)
	if err != nil {
		b.ui.PrintUrgent("" + err.Error())
		return
	}
	b.app.RemoveFilter(domain.FilterKey(dim, value))
}

func (b *browser) showFilters() {
	var sb strings.Builder
	writeFilters(&sb, b.app)
	b.ui.PrintBlock(sb.String())
}

func (b *browser) changeSort(name string) {
	order, err := domain.ParseSortOrder(strings.ToLower(name))
	if err != nil {
		b.ui.PrintUrgent("" + err.Error())
		return
	}
	b.app.ChangeSortOrder(order)
}

// open accepts a list number, an id or a title.
func (b *browser) open(ref string) {
	if n, err := strconv.Atoi(ref); err == nil {
		visible := b.app.Visible()
		if n < 1 || n > len(visible) {
			b.ui.PrintUrgent(fmt.Sprintf("Pick a number between 1 and %d.", len(visible)))
			return
		}
		ref = visible[n-1]
	}
	r, err := b.app.OpenRecipe(ref)
	if err != nil {
		b.ui.PrintUrgent("" + err.Error())
		return
	}
	b.printRecipe(r)
}

func (b *browser) rate(ctx context.Context, payload string) {
	n, err := strconv.Atoi(payload)
	if err != nil {
		b.warn(ctx, domain.ErrInvalidRating)
		return
	}
	b.withOpenRecipe(ctx, func(r *domain.Recipe) error {
		if err := b.app.Rate(ctx, r.ID, n); err != nil {
			return err
		}
		return b.notifier.Notify(ctx, fmt.Sprintf("Rated %s %d/5", r.Title, n))
	})
}

// afterHistoryMove shows the recipe the replayed entry opened, if any.
// The list itself is redrawn by the filter engine.
func (b *browser) afterHistoryMove() {
	if r, ok := b.app.CurrentRecipe(); ok {
		b.printRecipe(r)
	}
}

func (b *browser) printRecipe(r *domain.Recipe) {
	b.ui.PrintBlock(display.FormatRecipe(r, b.app.Record(r.ID), b.app.Catalog().UIText(), b.plain))
}

func (b *browser) showHelp() {
	b.ui.PrintTitle("Commands:")
	b.ui.PrintLine("list / ls              Show the visible recipes")
	b.ui.PrintLine("search <text>          Search titles and ingredients ('search' alone clears)")
	b.ui.PrintLine("filter <dim:value>     Toggle a filter, e.g. \"filter meal:middag\"")
	b.ui.PrintLine("remove <dim:value>     Remove a filter")
	b.ui.PrintLine("clear                  Remove every filter")
	b.ui.PrintLine("filters                List filter values")
	b.ui.PrintLine("sort <order>           recommendation, recipebook, alphabetical, madecount, rating")
	b.ui.PrintLine("1, 2, 3... / open <r>  Open a recipe by number, id or title")
	b.ui.PrintLine("close                  Close the open recipe")
	b.ui.PrintLine("rate <1-5> / unrate    Rate the open recipe")
	b.ui.PrintLine("made                   Toggle cooked today for the open recipe")
	b.ui.PrintLine("tag                    Pin the open recipe to the top")
	b.ui.PrintLine("back / forward         Move through history")
	b.ui.PrintLine("share                  Print and copy a link to this view")
	b.ui.PrintLine("lang <code>            Switch catalog language")
	b.ui.PrintLine("quit                   Exit")
}
