package export

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/tabledef/internal/database"
	"github.com/koustreak/tabledef/internal/database/dbtest"
	"github.com/koustreak/tabledef/internal/errs"
	"github.com/koustreak/tabledef/internal/filestore"
)

// --- in-memory store ---

type memObject struct {
	body []byte
	opts filestore.PutOptions
}

type memStore struct {
	mu      sync.Mutex
	buckets map[string]bool
	objects map[string]memObject // bucket + "/" + key

	// failKey fails PutObject for keys containing it.
	failKey string
}

var _ filestore.Store = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{buckets: map[string]bool{}, objects: map[string]memObject{}}
}

func (s *memStore) Ping(ctx context.Context) error { return nil }
func (s *memStore) Close() error                   { return nil }

func (s *memStore) EnsureBucket(ctx context.Context, bucket string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buckets[bucket] = true
	return nil
}

func (s *memStore) PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, opts filestore.PutOptions) (*filestore.ObjectInfo, error) {
	if s.failKey != "" && strings.Contains(key, s.failKey) {
		return nil, errs.New(errs.ErrKindPermissionDenied, "put "+key)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.buckets[bucket] {
		return nil, errs.New(errs.ErrKindNotFound, "no bucket "+bucket)
	}
	s.objects[bucket+"/"+key] = memObject{body: body, opts: opts}
	return &filestore.ObjectInfo{Key: key, Size: int64(len(body)), ETag: "etag-" + key}, nil
}

func (s *memStore) StatObject(ctx context.Context, bucket, key string) (*filestore.ObjectInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects[bucket+"/"+key]
	if !ok {
		return nil, errs.New(errs.ErrKindNotFound, "no object "+key)
	}
	return &filestore.ObjectInfo{Key: key, Size: int64(len(obj.body))}, nil
}

func (s *memStore) ListObjects(ctx context.Context, bucket string, opts filestore.ListOptions) ([]filestore.ObjectInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := map[string]bool{}
	var out []filestore.ObjectInfo
	for full := range s.objects {
		key, ok := strings.CutPrefix(full, bucket+"/")
		if !ok || !strings.HasPrefix(key, opts.Prefix) {
			continue
		}
		rest := strings.TrimPrefix(key, opts.Prefix)
		if dir, _, nested := strings.Cut(rest, "/"); nested && !opts.Recursive {
			if !seen[dir] {
				seen[dir] = true
				out = append(out, filestore.ObjectInfo{Key: opts.Prefix + dir + "/", IsDir: true})
			}
			continue
		}
		out = append(out, filestore.ObjectInfo{Key: key})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (s *memStore) get(bucket, key string) (memObject, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects[bucket+"/"+key]
	return obj, ok
}

// --- fixtures ---

func catalog() *dbtest.Metadata {
	idCol := func() database.ColumnRow {
		return database.ColumnRow{
			Name: dbtest.Str("id"), DataType: database.TypeInteger, TypeName: dbtest.Str("INT"),
			ColumnSize: 11, IsNullable: dbtest.Str("NO"), IsAutoIncrement: dbtest.Str("YES"),
		}
	}
	pk := []database.IndexRow{{IndexName: dbtest.Str("PRIMARY"), ColumnName: dbtest.Str("id")}}

	m := dbtest.New("shop")
	for _, name := range []string{"users", "orders", "items"} {
		m.Add(name, &dbtest.Table{
			CreateTable: ") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4",
			Columns:     []database.ColumnRow{idCol()},
			Indexes:     pk,
		})
	}
	return m
}

func newExporter(store *memStore) *Exporter {
	e := New(store, nil, Config{Bucket: "schemas", Prefix: "tabledef", Parallel: 2})
	e.newID = func() string { return "run-1" }
	e.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return e
}

// --- tests ---

func TestRun_AllTables(t *testing.T) {
	store := newMemStore()
	e := newExporter(store)

	m, err := e.Run(context.Background(), catalog(), nil)
	require.NoError(t, err)

	assert.Equal(t, "run-1", m.RunID)
	assert.Equal(t, "shop", m.Catalog)
	assert.Equal(t, "tabledef/run-1/manifest.json", m.Key)
	require.Len(t, m.Tables, 3)
	for i, name := range []string{"users", "orders", "items"} {
		assert.Equal(t, name, m.Tables[i].Table, "manifest keeps request order")
		assert.Equal(t, "tabledef/run-1/"+name+".sql", m.Tables[i].Key)
	}

	obj, ok := store.get("schemas", "tabledef/run-1/users.sql")
	require.True(t, ok)
	assert.Equal(t, "CREATE TABLE users (\n  id INT(11) NOT NULL AUTO_INCREMENT,\n  PRIMARY KEY (id)\n) DEFAULT CHARSET=utf8mb4;\n", string(obj.body))
	assert.Equal(t, "application/sql", obj.opts.ContentType)
	assert.Equal(t, "users", obj.opts.Metadata["Table"])
	assert.Equal(t, int64(len(obj.body)), m.Tables[0].Size)

	raw, ok := store.get("schemas", m.Key)
	require.True(t, ok)
	var stored Manifest
	require.NoError(t, json.Unmarshal(raw.body, &stored))
	assert.Equal(t, m.Tables, stored.Tables)
	assert.Equal(t, m.CreatedAt, stored.CreatedAt)

	require.NoError(t, e.Verify(context.Background(), m))
}

func TestRun_NamedTables(t *testing.T) {
	store := newMemStore()
	m, err := newExporter(store).Run(context.Background(), catalog(), []string{"items"})
	require.NoError(t, err)

	require.Len(t, m.Tables, 1)
	_, ok := store.get("schemas", "tabledef/run-1/users.sql")
	assert.False(t, ok)
}

func TestRun_MissingTable(t *testing.T) {
	store := newMemStore()
	_, err := newExporter(store).Run(context.Background(), catalog(), []string{"users", "ghost"})
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))

	_, ok := store.get("schemas", "tabledef/run-1/manifest.json")
	assert.False(t, ok, "no manifest for a failed run")
}

func TestRun_UploadFailure(t *testing.T) {
	store := newMemStore()
	store.failKey = "orders"

	_, err := newExporter(store).Run(context.Background(), catalog(), nil)
	require.Error(t, err)
	assert.True(t, errs.IsPermissionDenied(err))
}

func TestRun_MetadataFailure(t *testing.T) {
	m := catalog()
	m.Err = errs.New(errs.ErrKindConnectionFailed, "gone")

	_, err := newExporter(newMemStore()).Run(context.Background(), m, nil)
	assert.True(t, errs.IsConnectionFailed(err))
}

func TestRun_NoBucket(t *testing.T) {
	e := New(newMemStore(), nil, Config{})
	_, err := e.Run(context.Background(), catalog(), nil)
	assert.True(t, errs.IsInvalidInput(err))
}

func TestVerify_SizeMismatch(t *testing.T) {
	store := newMemStore()
	e := newExporter(store)
	m, err := e.Run(context.Background(), catalog(), []string{"users"})
	require.NoError(t, err)

	m.Tables[0].Size++
	assert.True(t, errs.IsInvalidData(e.Verify(context.Background(), m)))

	m.Tables[0].Key = "tabledef/run-1/nope.sql"
	assert.True(t, errs.IsNotFound(e.Verify(context.Background(), m)))
}

func TestRuns(t *testing.T) {
	store := newMemStore()
	e := newExporter(store)
	ids := []string{"run-a", "run-b"}
	for _, id := range ids {
		e.newID = func() string { return id }
		_, err := e.Run(context.Background(), catalog(), []string{"users"})
		require.NoError(t, err)
	}

	runs, err := e.Runs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ids, runs)
}

func TestNew_DefaultsAndRunIDs(t *testing.T) {
	e := New(newMemStore(), nil, Config{Bucket: "b"})
	assert.Equal(t, DefaultParallel, e.cfg.Parallel)
	assert.NotNil(t, e.tables)

	a, b := e.newID(), e.newID()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newExporter(newMemStore()).Run(ctx, catalog(), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
