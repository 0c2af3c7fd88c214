package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/nikbrunner/bars/internal/culler"
	"github.com/nikbrunner/bars/internal/cycle"
	"github.com/nikbrunner/bars/internal/exporter"
	"github.com/nikbrunner/bars/internal/host"
	"github.com/nikbrunner/bars/internal/idle"
	"github.com/nikbrunner/bars/internal/importer"
	"github.com/nikbrunner/bars/internal/model"
	"github.com/nikbrunner/bars/internal/picker"
	"github.com/nikbrunner/bars/internal/search"
	"github.com/nikbrunner/bars/internal/switcher"
)

// runInstall handles the install subcommand.
func runInstall(args []string) {
	var common commonFlags
	fs := newFlagSet("install", &common)
	_ = fs.Parse(args)

	a := mustOpenApp(common)
	defer a.Close()

	if err := a.store.Install(a.withLogger(context.Background())); err != nil {
		fail("installing", err)
	}
	fmt.Println("Installed.")
}

// runList prints bars in order with the active one marked.
func runList(args []string) {
	var common commonFlags
	fs := newFlagSet("list", &common)
	_ = fs.Parse(args)

	a := mustOpenApp(common)
	defer a.Close()
	ctx := context.Background()

	bars, err := a.store.Bars(ctx)
	if err != nil {
		fail("listing bars", err)
	}
	if len(bars) == 0 {
		fmt.Println("No bars yet. Run 'bars install' to create the default bar.")
		return
	}

	active, err := a.store.ActiveBar(ctx, "")
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		fail("reading active bar", err)
	}

	for i, b := range bars {
		marker := " "
		if b.ID == active.ID {
			marker = "*"
		}
		fmt.Printf("%s %d. %s\n", marker, i+1, b.Title)
	}
}

func runNext(args []string) {
	runMove("next", args, func([]string) (cycle.Move, error) {
		return cycle.Move{Direction: cycle.Next}, nil
	})
}

func runPrev(args []string) {
	runMove("prev", args, func([]string) (cycle.Move, error) {
		return cycle.Move{Direction: cycle.Previous}, nil
	})
}

// runSwitch shows a bar by 1-based position or by fuzzy name.
func runSwitch(args []string) {
	runMove("switch", args, func(rest []string) (cycle.Move, error) {
		if len(rest) == 0 {
			return cycle.Move{}, errors.New("usage: bars switch <1-9|name>")
		}
		if n, err := strconv.Atoi(rest[0]); err == nil && len(rest) == 1 {
			if n < 1 || n > cycle.MaxIndex {
				return cycle.Move{}, fmt.Errorf("position %d out of range 1-%d", n, cycle.MaxIndex)
			}
			return cycle.To(n), nil
		}
		return cycle.Move{}, errNeedsName
	})
}

// errNeedsName marks a switch argument that must be resolved against bar names.
var errNeedsName = errors.New("resolve by name")

// runMove resolves the move and runs it through the orchestrator, so that
// CLI switches obey the same idle gate and workspace bookkeeping as
// shortcuts.
func runMove(name string, args []string, parse func([]string) (cycle.Move, error)) {
	var common commonFlags
	fs := newFlagSet(name, &common)
	_ = fs.Parse(args)

	move, err := parse(fs.Args())
	var byName bool
	if errors.Is(err, errNeedsName) {
		byName = true
	} else if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	a := mustOpenApp(common)
	defer a.Close()

	ctx, cancel := signalContext()
	defer cancel()
	ctx = a.withLogger(ctx)

	if byName {
		query := strings.Join(fs.Args(), " ")
		bars, err := a.store.Bars(ctx)
		if err != nil {
			fail("listing bars", err)
		}
		bar, err := search.ResolveBar(bars, query)
		if err != nil {
			fail("finding bar", err)
		}
		move = positionOf(bars, bar)
	}

	o := a.orchestrator()
	defer o.Close()

	bar, switched, err := o.RunMove(ctx, move)
	if err != nil {
		fail("switching bar", err)
	}
	if !switched {
		fmt.Println("No bars to switch to.")
		return
	}
	fmt.Printf("Showing: %s\n", bar.Title)
}

// positionOf returns a direct move to bar's position. Positions past the
// ninth only come from names and the picker, never from shortcuts.
func positionOf(bars []model.Bar, bar model.Bar) cycle.Move {
	for i, b := range bars {
		if b.ID == bar.ID {
			return cycle.To(i + 1)
		}
	}
	return cycle.To(1)
}

// runAdd creates an empty bar.
func runAdd(args []string) {
	var common commonFlags
	fs := newFlagSet("add", &common)
	_ = fs.Parse(args)

	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Usage: bars add <name>")
		os.Exit(2)
	}
	name := strings.Join(fs.Args(), " ")

	a := mustOpenApp(common)
	defer a.Close()

	bar, err := a.store.CreateBar(context.Background(), name)
	if err != nil {
		fail("adding bar", err)
	}
	fmt.Printf("Added bar: %s\n", bar.Title)
}

// runRename renames a bar, keeping its id and workspace mappings.
func runRename(args []string) {
	var common commonFlags
	fs := newFlagSet("rename", &common)
	_ = fs.Parse(args)

	if fs.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "Usage: bars rename <name> <new-name>")
		os.Exit(2)
	}

	a := mustOpenApp(common)
	defer a.Close()
	ctx := a.withLogger(context.Background())

	bars, err := a.store.Bars(ctx)
	if err != nil {
		fail("listing bars", err)
	}
	bar, err := search.ResolveBar(bars, fs.Arg(0))
	if err != nil {
		fail("finding bar", err)
	}

	renamed, err := a.store.RenameBar(ctx, bar.Title, fs.Arg(1))
	if err != nil {
		fail("renaming bar", err)
	}
	a.notify(ctx, switcher.BookmarkChanged{ID: renamed.ID, Info: switcher.ChangeInfo{Title: renamed.Title}})
	fmt.Printf("Renamed %s to %s\n", bar.Title, renamed.Title)
}

// runRemove deletes a bar, or the whole bar directory with --directory, and
// lets the orchestrator react as it would to a browser-side removal.
func runRemove(args []string) {
	var common commonFlags
	fs := newFlagSet("rm", &common)
	directory := fs.Bool("directory", false, "remove the whole bar directory")
	_ = fs.Parse(args)

	if fs.NArg() == 0 && !*directory {
		fmt.Fprintln(os.Stderr, "Usage: bars rm <name> | bars rm --directory")
		os.Exit(2)
	}

	a := mustOpenApp(common)
	defer a.Close()

	ctx, cancel := signalContext()
	defer cancel()
	ctx = a.withLogger(ctx)

	o := a.orchestrator()
	defer o.Close()
	if err := o.Start(ctx); err != nil {
		fail("starting", err)
	}

	var id string
	if *directory {
		dirID, err := a.store.CustomDirectoryID(ctx)
		if err != nil {
			fail("finding bar directory", err)
		}
		id = dirID
	} else {
		bars, err := a.store.Bars(ctx)
		if err != nil {
			fail("listing bars", err)
		}
		bar, err := search.ResolveBar(bars, strings.Join(fs.Args(), " "))
		if err != nil {
			fail("finding bar", err)
		}
		id = bar.ID
	}

	node, err := a.store.RemoveNode(ctx, id)
	if err != nil {
		fail("removing", err)
	}

	err = o.HandleBookmarkRemoved(ctx, switcher.BookmarkRemoved{
		ID:         node.ID,
		RemoveInfo: switcher.RemoveInfo{Node: switcher.RemovedNode{Title: node.Title, URL: node.URL}},
	})
	if err != nil {
		fail("handling removal", err)
	}
	fmt.Printf("Removed: %s\n", node.Title)
}

// notify feeds a store change made by the CLI to the orchestrator.
func (a *app) notify(ctx context.Context, event any) {
	o := a.orchestrator()
	defer o.Close()
	if err := o.Handle(ctx, event); err != nil {
		a.logger.Warn().Err(err).Msg("handle change")
	}
}

// runPick opens the bar picker and shows the chosen bar.
func runPick(args []string) {
	var common commonFlags
	fs := newFlagSet("pick", &common)
	_ = fs.Parse(args)

	a := mustOpenApp(common)
	defer a.Close()

	ctx, cancel := signalContext()
	defer cancel()
	ctx = a.withLogger(ctx)

	bars, err := a.store.Bars(ctx)
	if err != nil {
		fail("listing bars", err)
	}
	active, err := a.store.ActiveBar(ctx, "")
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		fail("reading active bar", err)
	}

	finalModel, err := tea.NewProgram(picker.New(bars, active.ID)).Run()
	if err != nil {
		fail("running picker", err)
	}

	bar, ok := finalModel.(picker.Picker).Selected()
	if !ok {
		return
	}

	o := a.orchestrator()
	defer o.Close()

	target, switched, err := o.RunMove(ctx, positionOf(bars, bar))
	if err != nil {
		fail("switching bar", err)
	}
	if switched {
		fmt.Printf("Showing: %s\n", target.Title)
	}
}

// runYank copies the URLs of the shown bar, one per line.
func runYank(args []string) {
	var common commonFlags
	fs := newFlagSet("yank", &common)
	_ = fs.Parse(args)

	a := mustOpenApp(common)
	defer a.Close()

	bookmarks, err := a.store.ShownBookmarks(context.Background())
	if err != nil {
		fail("reading shown bar", err)
	}
	if len(bookmarks) == 0 {
		fmt.Println("The shown bar is empty.")
		return
	}

	urls := make([]string, len(bookmarks))
	for i, b := range bookmarks {
		urls[i] = b.URL
	}
	if err := clipboard.WriteAll(strings.Join(urls, "\n")); err != nil {
		fail("copying to clipboard", err)
	}
	fmt.Printf("Copied %d URLs\n", len(urls))
}

// runCheck reports dead and unreachable links in a bar.
func runCheck(args []string) {
	var common commonFlags
	fs := newFlagSet("check", &common)
	concurrency := fs.Int("concurrency", 8, "parallel requests")
	timeout := fs.Duration("timeout", 10*time.Second, "per-request timeout")
	_ = fs.Parse(args)

	a := mustOpenApp(common)
	defer a.Close()

	ctx, cancel := signalContext()
	defer cancel()
	ctx = a.withLogger(ctx)

	var bookmarks []model.Bookmark
	var err error
	if fs.NArg() == 0 {
		bookmarks, err = a.store.ShownBookmarks(ctx)
	} else {
		bars, listErr := a.store.Bars(ctx)
		if listErr != nil {
			fail("listing bars", listErr)
		}
		bar, resolveErr := search.ResolveBar(bars, strings.Join(fs.Args(), " "))
		if resolveErr != nil {
			fail("finding bar", resolveErr)
		}
		bookmarks, err = a.store.BarBookmarks(ctx, bar.Title)
	}
	if err != nil {
		fail("reading bookmarks", err)
	}
	if len(bookmarks) == 0 {
		fmt.Println("No bookmarks to check.")
		return
	}

	results := culler.CheckURLs(ctx, bookmarks, culler.Options{
		Concurrency:    *concurrency,
		Timeout:        *timeout,
		ExcludeDomains: a.cfg.CheckExcludeDomains,
	}, func(completed, total int) {
		fmt.Fprintf(os.Stderr, "\rChecking %d/%d", completed, total)
	})
	fmt.Fprintln(os.Stderr)

	var dead, unreachable int
	for _, r := range results {
		switch r.Status {
		case culler.Dead:
			dead++
			fmt.Printf("dead         %d  %s  %s\n", r.StatusCode, r.Bookmark.Title, r.Bookmark.URL)
		case culler.Unreachable:
			unreachable++
			fmt.Printf("unreachable  %s  %s  %s\n", r.Error, r.Bookmark.Title, r.Bookmark.URL)
		}
	}
	a.logger.Debug().Int("checked", len(results)).Int("dead", dead).Int("unreachable", unreachable).Msg("check done")
	fmt.Printf("%d checked, %d dead, %d unreachable\n", len(results), dead, unreachable)
}

// runImport handles the import subcommand.
func runImport(args []string) {
	var common commonFlags
	fs := newFlagSet("import", &common)
	_ = fs.Parse(args)

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: bars import <file.html>")
		os.Exit(2)
	}

	file, err := os.Open(fs.Arg(0))
	if err != nil {
		fail("opening file", err)
	}
	defer file.Close()

	tree, err := importer.ParseHTML(file)
	if err != nil {
		fail("parsing HTML", err)
	}

	a := mustOpenApp(common)
	defer a.Close()

	result, err := a.store.ImportBars(a.withLogger(context.Background()), tree.Folders, tree.Bookmarks)
	if err != nil {
		fail("importing", err)
	}

	fmt.Printf("Imported %d bookmarks into %d bars", result.Bookmarks, result.Bars)
	if result.Created > 0 {
		fmt.Printf(" (%d new)", result.Created)
	}
	fmt.Println()
}

// runExport handles the export subcommand.
func runExport(args []string) {
	var common commonFlags
	fs := newFlagSet("export", &common)
	_ = fs.Parse(args)

	outputPath := fs.Arg(0)
	if outputPath == "" {
		var err error
		outputPath, err = exporter.DefaultExportPath()
		if err != nil {
			fail("getting default export path", err)
		}
	}

	a := mustOpenApp(common)
	defer a.Close()

	snap, err := a.store.Snapshot(context.Background())
	if err != nil {
		fail("loading bars", err)
	}

	html := exporter.ExportBars(snap, snap.Meta.DirectoryID)
	if err := os.WriteFile(outputPath, []byte(html), 0o644); err != nil {
		fail("writing file", err)
	}

	dirID := snap.Meta.DirectoryID
	fmt.Printf("Exported %d bars to %s\n", len(snap.GetFoldersInFolder(&dirID)), outputPath)
}

// runHost serves native messaging on stdin/stdout until the browser closes
// the pipe.
func runHost(args []string) {
	var common commonFlags
	fs := newFlagSet("host", &common)
	idleMonitor := fs.Bool("idle-monitor", false, "poll system idle time")
	_ = fs.Parse(args)

	a := mustOpenApp(common)
	defer a.Close()

	ctx, cancel := signalContext()
	defer cancel()
	ctx = a.withLogger(ctx)

	o := a.orchestrator()
	defer o.Close()
	if err := o.Start(ctx); err != nil {
		fail("starting", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	if *idleMonitor {
		monitor := idle.NewMonitor(idle.MonitorParams{
			Provider:  idle.NewProvider(),
			Handler:   o,
			Threshold: a.cfg.IdleThreshold(),
			Interval:  a.cfg.IdlePoll(),
			Logger:    a.logger.With().Str("component", "idle").Logger(),
		})
		g.Go(func() error {
			if err := monitor.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	srv := host.NewServer(host.Params{
		In:      os.Stdin,
		Out:     os.Stdout,
		Handler: o,
		Logger:  a.logger.With().Str("component", "host").Logger(),
	})
	g.Go(func() error {
		defer cancel()
		err := srv.Serve(ctx)
		if ctx.Err() != nil {
			// Stdin was closed below to unblock the read.
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-ctx.Done()
		return os.Stdin.Close()
	})

	a.logger.Info().Bool("idle_monitor", *idleMonitor).Msg("native messaging host started")
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		a.logger.Error().Err(err).Msg("host stopped")
		os.Exit(1)
	}
}
