package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/koustreak/tabledef/internal/config"
	"github.com/koustreak/tabledef/internal/errs"
	"github.com/koustreak/tabledef/internal/export"
	"github.com/koustreak/tabledef/internal/filestore/minio"
	"github.com/koustreak/tabledef/internal/logger"
	"github.com/koustreak/tabledef/internal/schema"
	"github.com/koustreak/tabledef/internal/server"
)

// TablesCmd lists base table names, one per line.
type TablesCmd struct{}

func (c *TablesCmd) Run(ctx context.Context, g *Globals) error {
	ctx, a, err := g.open(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	names, err := schema.ListTables(ctx, a.db)
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Fprintln(a.out, name)
	}
	return nil
}

// DDLCmd prints CREATE TABLE statements.
type DDLCmd struct {
	Tables []string `arg:"" optional:"" help:"Tables to render (default: all)"`
}

func (c *DDLCmd) Run(ctx context.Context, g *Globals) error {
	ctx, a, err := g.open(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	tables, err := a.readTables(ctx, c.Tables)
	if err != nil {
		return err
	}
	return writeDDL(a.out, tables)
}

func writeDDL(w io.Writer, tables []*schema.Table) error {
	for i, t := range tables {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, schema.WriteTable(t)); err != nil {
			return err
		}
	}
	return nil
}

// SchemaCmd prints the query schema of each table as a JSON array.
type SchemaCmd struct {
	Tables  []string `arg:"" optional:"" help:"Tables to describe (default: all)"`
	Compact bool     `help:"Write single-line JSON"`
}

func (c *SchemaCmd) Run(ctx context.Context, g *Globals) error {
	ctx, a, err := g.open(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	tables, err := a.readTables(ctx, c.Tables)
	if err != nil {
		return err
	}
	return writeQuerySchemas(a.out, tables, !c.Compact)
}

func writeQuerySchemas(w io.Writer, tables []*schema.Table, indent bool) error {
	out := make([]*schema.QuerySchema, 0, len(tables))
	for _, t := range tables {
		qs, err := schema.ReadQuerySchema(t)
		if err != nil {
			return err
		}
		out = append(out, qs)
	}

	enc := json.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(out)
}

// ExportCmd uploads one snapshot per table plus a manifest.
type ExportCmd struct {
	Tables   []string `arg:"" optional:"" help:"Tables to export (default: all)"`
	Parallel int      `default:"4" help:"Concurrent uploads"`
	Verify   bool     `help:"Stat every uploaded snapshot after the run"`
}

func (c *ExportCmd) Run(ctx context.Context, g *Globals) error {
	ctx, a, err := g.open(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	ex, err := newExporter(ctx, a.cfg, a.tables, c.Parallel)
	if err != nil {
		return err
	}

	m, err := ex.Run(ctx, a.db, c.Tables)
	if err != nil {
		return err
	}
	if c.Verify {
		if err := ex.Verify(ctx, m); err != nil {
			return err
		}
	}

	fmt.Fprintf(a.out, "run %s: %d tables, manifest s3://%s/%s\n", m.RunID, len(m.Tables), m.Bucket, m.Key)
	return nil
}

func newExporter(ctx context.Context, cfg *config.Config, tables *schema.TableReader, parallel int) (*export.Exporter, error) {
	fs := &cfg.FileStore
	if !fs.Enabled() {
		return nil, errs.New(errs.ErrKindInvalidInput, "filestore.endpoint is required for exports")
	}
	store, err := minio.New(ctx, fs)
	if err != nil {
		return nil, err
	}
	return export.New(store, tables, export.Config{
		Bucket:       fs.Bucket,
		Prefix:       fs.Prefix,
		Parallel:     parallel,
		QueryTimeout: cfg.Database.QueryTimeout,
	}), nil
}

// RunsCmd lists export run IDs. It needs object storage only.
type RunsCmd struct{}

func (c *RunsCmd) Run(ctx context.Context, g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	ctx = logger.New(&cfg.Log).WithContext(ctx)

	ex, err := newExporter(ctx, cfg, nil, 0)
	if err != nil {
		return err
	}
	runs, err := ex.Runs(ctx)
	if err != nil {
		return err
	}
	for _, id := range runs {
		fmt.Fprintln(g.out, id)
	}
	return nil
}

// ServeCmd runs the HTTP API until interrupted.
type ServeCmd struct {
	Addr string `help:"Listen address, overrides server.addr"`
}

func (c *ServeCmd) Run(ctx context.Context, g *Globals) error {
	ctx, a, err := g.open(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	cfg := a.cfg.Server
	if c.Addr != "" {
		cfg.Addr = c.Addr
	}
	cfg.QueryTimeout = a.cfg.Database.QueryTimeout

	return server.New(&cfg, a.db, a.tables, a.log).Run(ctx)
}

// VersionCmd prints the version.
type VersionCmd struct{}

func (c *VersionCmd) Run(g *Globals) error {
	_, err := fmt.Fprintf(g.out, "tabledef %s\n", version)
	return err
}
