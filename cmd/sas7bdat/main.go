package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/alecthomas/kong"
	"github.com/go-stdlog/stdlog"
	"golang.org/x/sync/errgroup"

	sas7bdat "github.com/wilhasse/go-sas7bdat"
	"github.com/wilhasse/go-sas7bdat/catalog"
	"github.com/wilhasse/go-sas7bdat/schema"
)

var version = "dev"

// Globals are shared by every command.
type Globals struct {
	Verbose bool `name:"verbose" short:"v" help:"Log every scanned page and subheader to stderr"`
}

func (g *Globals) config() sas7bdat.Config {
	cfg := sas7bdat.Config{}
	if g.Verbose {
		cfg.Logger = stdlog.NewStd(os.Stderr)
	}
	return cfg
}

// CLI defines the command-line interface using Kong
var CLI struct {
	Globals

	Schema  SchemaCmd  `cmd:"" help:"Print the schema of a SAS7BDAT file"`
	DDL     DDLCmd     `cmd:"" name:"ddl" help:"Print a CREATE TABLE statement for a SAS7BDAT file"`
	Check   CheckCmd   `cmd:"" help:"Compare a SAS7BDAT file against a CREATE TABLE statement"`
	Catalog CatalogCmd `cmd:"" help:"Record schemas in a SQLite catalog, or find files sharing a layout"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// SchemaCmd prints the decoded schema
type SchemaCmd struct {
	Format string `name:"format" short:"f" enum:"text,json,summary" default:"text" help:"Output format: text, json, or summary"`
	Blocks bool   `name:"blocks" help:"List row-compressed blocks found while scanning"`
	File   string `arg:"" type:"existingfile" help:"SAS7BDAT file, optionally .xz compressed"`
}

func (c *SchemaCmd) Run(g *Globals) error {
	res, err := sas7bdat.Open(c.File, g.config())
	if err != nil {
		return err
	}

	switch c.Format {
	case "json":
		return outputJSON(os.Stdout, c.File, res, c.Blocks)
	case "summary":
		outputSummary(os.Stdout, c.File, res)
	default:
		outputText(os.Stdout, res, c.Blocks)
	}
	return nil
}

// DDLCmd renders the schema as SQL
type DDLCmd struct {
	Table string `name:"table" short:"t" help:"Table name (default: file name without extensions)"`
	File  string `arg:"" type:"existingfile" help:"SAS7BDAT file, optionally .xz compressed"`
}

func (c *DDLCmd) Run(g *Globals) error {
	td, err := tableDef(c.File, c.Table, g)
	if err != nil {
		return err
	}
	fmt.Println(td.DDL())
	return nil
}

// CheckCmd verifies a file still matches an expected table definition
type CheckCmd struct {
	SQL   string `name:"sql" required:"" type:"existingfile" help:"Path to SQL file with CREATE TABLE statement"`
	Table string `name:"table" short:"t" help:"Table name (default: the name in the SQL file)"`
	File  string `arg:"" type:"existingfile" help:"SAS7BDAT file, optionally .xz compressed"`
}

func (c *CheckCmd) Run(g *Globals) error {
	want, err := schema.ParseTableDefFromSQLFile(c.SQL)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", c.SQL, err)
	}
	name := c.Table
	if name == "" {
		name = want.Name
	}
	have, err := tableDef(c.File, name, g)
	if err != nil {
		return err
	}

	diff := have.Diff(want)
	if len(diff) == 0 {
		fmt.Printf("%s matches %s (%d columns)\n", c.File, c.SQL, have.ColumnCount())
		return nil
	}
	for _, d := range diff {
		fmt.Println(d)
	}
	return fmt.Errorf("%s does not match %s: %d differences", c.File, c.SQL, len(diff))
}

// CatalogCmd records files in a catalog database and queries it
type CatalogCmd struct {
	DB    string   `name:"db" required:"" type:"path" help:"Path to the SQLite catalog (created if missing)"`
	Find  string   `name:"find" help:"List files whose schema has this fingerprint"`
	Files []string `arg:"" optional:"" type:"existingfile" help:"SAS7BDAT files to record"`
}

func (c *CatalogCmd) Run(g *Globals) error {
	if c.Find == "" && len(c.Files) == 0 {
		return fmt.Errorf("nothing to do: give files to record or --find")
	}
	ctx := context.Background()
	cfg := g.config()
	cat, err := catalog.Open(ctx, c.DB, cfg.GetLogger())
	if err != nil {
		return err
	}
	defer cat.Close()

	results := make([]*sas7bdat.Result, len(c.Files))
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.NumCPU())
	for i, path := range c.Files {
		eg.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := sas7bdat.Open(path, cfg)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	for i, path := range c.Files {
		id, err := cat.Record(ctx, path, results[i])
		if err != nil {
			return err
		}
		fmt.Printf("%s\t%s\t%s\n", id, results[i].Schema.Fingerprint(), path)
	}

	if c.Find != "" {
		found, err := cat.Find(ctx, c.Find)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "Path\tRows\tRecorded\n")
		for _, d := range found {
			fmt.Fprintf(w, "%s\t%d\t%s\n", d.Path, d.TotalRows, d.RecordedAt.Format(time.RFC3339))
		}
		w.Flush()
	}
	return nil
}

// VersionCmd prints version information
type VersionCmd struct{}

func (v *VersionCmd) Run() error {
	fmt.Printf("sas7bdat %s\n", version)
	fmt.Println("SAS7BDAT schema decoder")
	return nil
}

func tableDef(path, name string, g *Globals) (*schema.TableDef, error) {
	res, err := sas7bdat.Open(path, g.config())
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = tableName(path)
	}
	return schema.TableDefFromSchema(name, res.Schema)
}

// tableName strips directories and every extension from path.
func tableName(path string) string {
	base := filepath.Base(path)
	if i := strings.IndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	return base
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("sas7bdat"),
		kong.Description("Decode the schema of SAS7BDAT files"),
		kong.UsageOnError(),
	)

	err := ctx.Run(&CLI.Globals)
	ctx.FatalIfErrorf(err)
}
