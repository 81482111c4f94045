// Command bankdash-report prints and exports the dashboard views from the
// terminal, using the same data source settings as the server.
package main

import (
	"io"
	"os"

	"bankdash/internal/export"

	"github.com/alecthomas/kong"
)

// Globals holds options shared by every command.
type Globals struct {
	LogLevel string `name:"log-level" default:"warn" help:"Log level [debug info warn error]."`
}

// cli commands / args available
type app struct {
	Globals `embed:""`

	Summary    summaryCmd    `cmd:"" help:"Print the headline totals."`
	Categories categoriesCmd `cmd:"" help:"Print the spending breakdown by category."`
	Monthly    monthlyCmd    `cmd:"" help:"Print debit totals per calendar month."`
	Validate   validateCmd   `cmd:"" name:"validate-upload" help:"Check statement filenames against the upload rules."`
	Theme      themeCmd      `cmd:"" help:"Show or change the persisted theme."`
	Export     exportCmd     `cmd:"" help:"Export transactions to a JSON file or Elasticsearch."`
	Import     importCmd     `cmd:"" help:"Store a statement in SQLite or a JSON data directory."`
	Uploads    uploadsCmd    `cmd:"" help:"List audited statement uploads."`
}

func run(args []string, stdout io.Writer, options ...kong.Option) error {
	var c app
	options = append([]kong.Option{
		kong.Name("bankdash-report"),
		kong.Description("Bank statement reports."),
		kong.BindTo(stdout, (*io.Writer)(nil)),
		kong.Vars{"default_index": export.DefaultIndex},
	}, options...)
	parser, err := kong.New(&c, options...)
	if err != nil {
		return err
	}
	ctx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	return ctx.Run(&c.Globals)
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		os.Stderr.WriteString("bankdash-report: " + err.Error() + "\n")
		os.Exit(1)
	}
}
