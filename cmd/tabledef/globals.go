package main

import (
	"context"
	"io"

	"github.com/koustreak/tabledef/internal/config"
	"github.com/koustreak/tabledef/internal/database/mysql"
	"github.com/koustreak/tabledef/internal/errs"
	"github.com/koustreak/tabledef/internal/logger"
	"github.com/koustreak/tabledef/internal/schema"
)

// Globals are the flags shared by every command. Flags win over the
// config file.
type Globals struct {
	Config    string `name:"config" short:"c" help:"YAML config file" type:"existingfile" env:"TABLEDEF_CONFIG"`
	DSN       string `name:"dsn" help:"MySQL DSN, overrides database.dsn" env:"TABLEDEF_DSN"`
	LogLevel  string `name:"log-level" help:"debug, info, warn, error or off"`
	LogFormat string `name:"log-format" help:"json or console"`
	Prefetch  bool   `name:"prefetch-primary-key" help:"Read indexes before columns so columns carry their primary key flag"`

	out io.Writer
}

// load reads the config file, applies flag overrides and validates.
func (g *Globals) load() (*config.Config, error) {
	cfg := config.Default()
	if g.Config != "" {
		var err error
		if cfg, err = config.LoadFile(g.Config); err != nil {
			return nil, err
		}
	}

	if g.DSN != "" {
		cfg.Database.DSN = g.DSN
	}
	if g.LogLevel != "" {
		cfg.Log.Level = g.LogLevel
	}
	if g.LogFormat != "" {
		cfg.Log.Format = g.LogFormat
	}
	if g.Prefetch {
		cfg.Reader.PrefetchPrimaryKey = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// app is what a command needs once the configuration is settled.
type app struct {
	cfg    *config.Config
	log    *logger.Logger
	db     *mysql.Driver
	tables *schema.TableReader
	out    io.Writer
}

// open loads the configuration and connects to MySQL. The returned context
// carries the configured logger.
func (g *Globals) open(ctx context.Context) (context.Context, *app, error) {
	cfg, err := g.load()
	if err != nil {
		return ctx, nil, err
	}
	log := logger.New(&cfg.Log)
	ctx = log.WithContext(ctx)

	db, err := mysql.New(ctx, &cfg.Database)
	if err != nil {
		return ctx, nil, err
	}

	return ctx, &app{
		cfg:    cfg,
		log:    log,
		db:     db,
		tables: &schema.TableReader{PrefetchPrimaryKey: cfg.Reader.PrefetchPrimaryKey},
		out:    g.out,
	}, nil
}

func (a *app) Close() {
	a.db.Close()
}

// queryContext bounds one table read by database.query_timeout.
func (a *app) queryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.cfg.Database.QueryTimeout > 0 {
		return context.WithTimeout(ctx, a.cfg.Database.QueryTimeout)
	}
	return context.WithCancel(ctx)
}

// readTables reads the named tables in order, or every base table when
// names is empty. A missing table is an error.
func (a *app) readTables(ctx context.Context, names []string) ([]*schema.Table, error) {
	if len(names) == 0 {
		var err error
		if names, err = schema.ListTables(ctx, a.db); err != nil {
			return nil, err
		}
	}

	out := make([]*schema.Table, 0, len(names))
	for _, name := range names {
		qctx, cancel := a.queryContext(ctx)
		t, err := a.tables.Read(qctx, a.db, name)
		cancel()
		if err != nil {
			return nil, err
		}
		if t == nil {
			return nil, errs.Newf(errs.ErrKindNotFound, "table %q not found", name)
		}
		out = append(out, t)
	}
	return out, nil
}
