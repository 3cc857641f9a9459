// Package export writes CREATE TABLE snapshots of a catalog to object
// storage.
//
// Each run gets a fresh ID and lays out its objects as
//
//	<prefix>/<run-id>/<table>.sql
//	<prefix>/<run-id>/manifest.json
//
// Tables are read one at a time over the metadata handle; uploads overlap
// with the reads, bounded by Config.Parallel.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/koustreak/tabledef/internal/database"
	"github.com/koustreak/tabledef/internal/errs"
	"github.com/koustreak/tabledef/internal/filestore"
	"github.com/koustreak/tabledef/internal/logger"
	"github.com/koustreak/tabledef/internal/schema"
)

const (
	ManifestName    = "manifest.json"
	DefaultParallel = 4
	ddlContentType  = "application/sql"
	jsonContentType = "application/json"
	metaKeyTable    = "Table"
	metaKeyRunID    = "Run-Id"
)

// Config selects where snapshots go and how hard to push.
type Config struct {
	Bucket   string
	Prefix   string
	Parallel int // concurrent uploads, DefaultParallel when <= 0

	// QueryTimeout bounds the read of one table. Zero means no bound.
	QueryTimeout time.Duration
}

// Entry is one uploaded table snapshot.
type Entry struct {
	Table string `json:"table"`
	Key   string `json:"key"`
	Size  int64  `json:"size"`
	ETag  string `json:"etag,omitempty"`
}

// Manifest describes a finished run. It is uploaded next to the snapshots.
type Manifest struct {
	RunID     string    `json:"run_id"`
	Catalog   string    `json:"catalog"`
	Bucket    string    `json:"bucket"`
	CreatedAt time.Time `json:"created_at"`
	Tables    []Entry   `json:"tables"`

	// Key is where the manifest itself was stored.
	Key string `json:"-"`
}

// Exporter uploads DDL snapshots. It is safe for concurrent use; each Run
// is independent.
type Exporter struct {
	store  filestore.Store
	tables *schema.TableReader
	cfg    Config

	newID func() string
	now   func() time.Time
}

// New returns an Exporter. tables may be nil for a default reader.
func New(store filestore.Store, tables *schema.TableReader, cfg Config) *Exporter {
	if tables == nil {
		tables = schema.NewTableReader()
	}
	if cfg.Parallel <= 0 {
		cfg.Parallel = DefaultParallel
	}
	return &Exporter{
		store:  store,
		tables: tables,
		cfg:    cfg,
		newID:  func() string { return uuid.New().String() },
		now:    time.Now,
	}
}

// Run snapshots the named tables, or every base table of the current
// catalog when names is empty. A missing table fails the run. The first
// failure cancels the outstanding uploads; objects already written stay.
func (e *Exporter) Run(ctx context.Context, h database.Metadata, names []string) (*Manifest, error) {
	if e.cfg.Bucket == "" {
		return nil, errs.New(errs.ErrKindInvalidInput, "export bucket is not configured")
	}

	catalog, err := h.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		if names, err = schema.ListTables(ctx, h); err != nil {
			return nil, err
		}
	}
	if err := e.store.EnsureBucket(ctx, e.cfg.Bucket); err != nil {
		return nil, err
	}

	m := &Manifest{
		RunID:     e.newID(),
		Catalog:   catalog,
		Bucket:    e.cfg.Bucket,
		CreatedAt: e.now().UTC(),
		Tables:    make([]Entry, len(names)),
	}
	log := logger.FromContext(ctx).With().Str("run_id", m.RunID).Str("bucket", m.Bucket).Logger()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Parallel)

	for i, name := range names {
		t, err := e.read(gctx, h, name)
		if err != nil {
			// an upload failure is the root cause of a cancelled read
			if werr := g.Wait(); werr != nil {
				return nil, werr
			}
			return nil, err
		}

		ddl := schema.WriteTable(t)
		key := filestore.Key(e.cfg.Prefix, m.RunID, t.Name+".sql")
		g.Go(func() error {
			info, err := e.store.PutObject(gctx, e.cfg.Bucket, key, strings.NewReader(ddl), int64(len(ddl)),
				filestore.PutOptions{
					ContentType: ddlContentType,
					Metadata:    map[string]string{metaKeyTable: t.Name, metaKeyRunID: m.RunID},
				})
			if err != nil {
				return err
			}
			m.Tables[i] = Entry{Table: t.Name, Key: key, Size: info.Size, ETag: info.ETag}
			log.DebugWith("table uploaded", map[string]any{"table": t.Name, "key": key, "size": info.Size})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.With().Err(err).Logger().Warn("export aborted, no manifest written")
		return nil, err
	}

	if err := e.putManifest(ctx, m); err != nil {
		return nil, err
	}
	log.InfoWith("export finished", map[string]any{"tables": len(m.Tables), "manifest": m.Key})
	return m, nil
}

func (e *Exporter) read(ctx context.Context, h database.Metadata, name string) (*schema.Table, error) {
	if e.cfg.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.QueryTimeout)
		defer cancel()
	}
	t, err := e.tables.Read(ctx, h, name)
	if err != nil {
		return nil, err
	}
	if t == nil || t.Name == "" {
		return nil, errs.Newf(errs.ErrKindNotFound, "table %q not found", name)
	}
	return t, nil
}

func (e *Exporter) putManifest(ctx context.Context, m *Manifest) error {
	body, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return errs.Wrap(errs.ErrKindInvalidData, "encode manifest", err)
	}
	key := filestore.Key(e.cfg.Prefix, m.RunID, ManifestName)
	_, err = e.store.PutObject(ctx, e.cfg.Bucket, key, bytes.NewReader(body), int64(len(body)),
		filestore.PutOptions{
			ContentType: jsonContentType,
			Metadata:    map[string]string{metaKeyRunID: m.RunID},
		})
	if err != nil {
		return err
	}
	m.Key = key
	return nil
}

// Verify stats every snapshot of m and reports the first one that is
// missing or whose size differs from the manifest.
func (e *Exporter) Verify(ctx context.Context, m *Manifest) error {
	for _, entry := range m.Tables {
		info, err := e.store.StatObject(ctx, m.Bucket, entry.Key)
		if err != nil {
			return err
		}
		if info.Size != entry.Size {
			return errs.Newf(errs.ErrKindInvalidData,
				"snapshot %s: stored size %d, manifest says %d", entry.Key, info.Size, entry.Size)
		}
	}
	return nil
}

// Runs lists the run IDs found under the configured prefix.
func (e *Exporter) Runs(ctx context.Context) ([]string, error) {
	prefix := filestore.Key(e.cfg.Prefix)
	if prefix != "" {
		prefix += "/"
	}
	objs, err := e.store.ListObjects(ctx, e.cfg.Bucket, filestore.ListOptions{Prefix: prefix})
	if err != nil {
		return nil, err
	}

	var runs []string
	for _, o := range objs {
		if !o.IsDir {
			continue
		}
		if id := strings.Trim(strings.TrimPrefix(o.Key, prefix), "/"); id != "" {
			runs = append(runs, id)
		}
	}
	return runs, nil
}
