package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"bankdash/internal/dashboard"
	"bankdash/internal/export"
	"bankdash/internal/presentation"
	"bankdash/internal/storage"
	"bankdash/internal/theme"
	"bankdash/internal/upload"
)

type summaryCmd struct{}

func (c *summaryCmd) Run(g *Globals, out io.Writer) error {
	return withSnapshot(g, func(_ context.Context, _ *env, snap *dashboard.Snapshot) error {
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		for _, m := range presentation.Metrics(snap.Summary()) {
			fmt.Fprintf(w, "%s\t%s\n", m.Label, m.Value)
		}
		return w.Flush()
	})
}

type categoriesCmd struct{}

func (c *categoriesCmd) Run(g *Globals, out io.Writer) error {
	return withSnapshot(g, func(_ context.Context, _ *env, snap *dashboard.Snapshot) error {
		if len(snap.Report.Categories) == 0 {
			fmt.Fprintln(out, "No categories recorded.")
			return nil
		}
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintln(w, "Category\tTotal\tShare\t")
		for _, cat := range snap.Report.Categories {
			fmt.Fprintf(w, "%s\t%s\t%s%%\t\n", cat.Category, presentation.FormatINR(cat.Total), cat.RoundedPercentage().StringFixed(1))
		}
		return w.Flush()
	})
}

type monthlyCmd struct{}

func (c *monthlyCmd) Run(g *Globals, out io.Writer) error {
	return withSnapshot(g, func(_ context.Context, _ *env, snap *dashboard.Snapshot) error {
		if len(snap.Report.Monthly) == 0 {
			fmt.Fprintln(out, "No spending recorded.")
			return nil
		}
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		for _, m := range snap.Report.Monthly {
			fmt.Fprintf(w, "%s\t%s\n", m.Month.Label(), presentation.FormatINR(m.Amount))
		}
		return w.Flush()
	})
}

type validateCmd struct {
	CaseInsensitive bool     `name:"case-insensitive" help:"Accept extensions in any case."`
	Extensions      []string `name:"ext" help:"Accepted extensions." default:".csv"`
	Files           []string `arg:"" help:"Filenames to check."`
}

// Run checks the names only; file contents are never read.
func (c *validateCmd) Run(out io.Writer) error {
	v := upload.NewValidator(c.Extensions, c.CaseInsensitive)
	var rejected int
	for _, name := range c.Files {
		if err := v.Validate(name); err != nil {
			rejected++
			fmt.Fprintf(out, "%s: %v\n", name, err)
			continue
		}
		fmt.Fprintf(out, "%s: ok\n", name)
	}
	if rejected > 0 {
		return fmt.Errorf("%d of %d files rejected", rejected, len(c.Files))
	}
	return nil
}

type themeCmd struct {
	Action string `arg:"" optional:"" default:"show" enum:"show,light,dark,toggle" help:"One of show, light, dark or toggle."`
}

func (c *themeCmd) Run(g *Globals, out io.Writer) error {
	ctx := context.Background()
	e, err := openEnv(ctx, g)
	if err != nil {
		return err
	}
	defer e.Close()

	flag, err := theme.NewFlag(ctx, e.backend.Themes)
	if err != nil {
		return err
	}

	switch c.Action {
	case "toggle":
		if _, err := flag.Toggle(ctx); err != nil {
			return err
		}
	case "light", "dark":
		t, err := theme.Parse(c.Action)
		if err != nil {
			return err
		}
		if err := flag.Set(ctx, t); err != nil {
			return err
		}
	}
	fmt.Fprintln(out, flag.Current())
	if c.Action != "show" && e.cfg.ThemeStore != "sqlite" {
		e.logger.Warn("Theme store is not persistent; the change is lost on exit", "theme_store", e.cfg.ThemeStore)
	}
	return nil
}

type exportCmd struct {
	Out   string `default:"jsonfile:out.json" help:"Where to write [jsonfile:/path/file.json es8:http://myelasticsearch:9200]"`
	Index string `default:"${default_index}" help:"Elasticsearch index for es8 targets."`
}

func (c *exportCmd) Run(g *Globals, out io.Writer) error {
	return withSnapshot(g, func(ctx context.Context, e *env, snap *dashboard.Snapshot) error {
		sink, err := export.Open(c.Out, e.logger)
		if err != nil {
			return err
		}
		if es, ok := sink.(*export.ElasticsearchV8); ok {
			es.WithIndex(c.Index)
		}
		docs := export.Documents(snap, time.Now())
		if err := sink.Write(ctx, docs); err != nil {
			return fmt.Errorf("export to %s: %w", c.Out, err)
		}
		fmt.Fprintf(out, "exported %d transactions to %s\n", len(docs), c.Out)
		return nil
	})
}

type uploadsCmd struct {
	Limit int `default:"20" help:"Number of uploads to list, newest first."`
}

func (c *uploadsCmd) Run(g *Globals, out io.Writer) error {
	ctx := context.Background()
	e, err := openEnv(ctx, g)
	if err != nil {
		return err
	}
	defer e.Close()

	repo := e.backend.Repository
	if repo == nil {
		if repo, err = storage.NewSQLiteRepository(e.cfg.SQLiteDBPath); err != nil {
			return err
		}
		defer repo.Close()
	}

	records, err := repo.ListUploads(ctx, c.Limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(out, "No uploads recorded.")
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tFilename\tBytes\tReceived\tProcessed")
	for _, r := range records {
		processed := "pending"
		if r.ProcessedAt != nil {
			processed = r.ProcessedAt.Format(time.RFC3339)
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", r.ID, r.Filename, r.SizeBytes, r.ReceivedAt.Format(time.RFC3339), processed)
	}
	return w.Flush()
}
