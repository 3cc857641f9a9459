// Package config loads the tabledef YAML configuration.
//
// A file only needs the keys it changes; everything else keeps the value of
// the owning package's DefaultConfig. ${VAR} references in credentials are
// expanded from the environment.
//
//	database:
//	  dsn: ${TABLEDEF_DSN}
//	  query_timeout: 30s
//	log:
//	  level: debug
//	filestore:
//	  endpoint: localhost:9000
//	  access_key: ${MINIO_ACCESS_KEY}
//	  secret_key: ${MINIO_SECRET_KEY}
//	  bucket: schemas
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.yaml.in/yaml/v3"

	"github.com/koustreak/tabledef/internal/database"
	"github.com/koustreak/tabledef/internal/errs"
	"github.com/koustreak/tabledef/internal/filestore"
	"github.com/koustreak/tabledef/internal/logger"
	"github.com/koustreak/tabledef/internal/server"
)

// Config is the root of the configuration file.
type Config struct {
	Database  database.Config  `yaml:"database"`
	Log       logger.Config    `yaml:"log"`
	Reader    ReaderConfig     `yaml:"reader"`
	FileStore filestore.Config `yaml:"filestore"`
	Server    server.Config    `yaml:"server"`
}

// ReaderConfig tunes the schema readers.
type ReaderConfig struct {
	// PrefetchPrimaryKey reads indexes before columns so that each column's
	// primary key flag is populated.
	PrefetchPrimaryKey bool `yaml:"prefetch_primary_key"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Database:  *database.DefaultConfig(""),
		Log:       *logger.DefaultConfig(),
		FileStore: *filestore.DefaultConfig("", "", ""),
		Server:    *server.DefaultConfig(),
	}
}

// LoadFile reads and validates the file at path.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "open config", err)
	}
	defer f.Close()

	cfg, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Load decodes YAML from r over Default. Unknown keys are rejected. The
// result is not validated: callers apply flag overrides first, then call
// Validate.
func Load(r io.Reader) (*Config, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "read config", err)
	}

	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "decode config", err)
	}
	expandEnv(cfg)
	return cfg, nil
}

func expandEnv(cfg *Config) {
	cfg.Database.DSN = os.ExpandEnv(cfg.Database.DSN)
	cfg.Database.Host = os.ExpandEnv(cfg.Database.Host)
	cfg.Database.User = os.ExpandEnv(cfg.Database.User)
	cfg.Database.Password = os.ExpandEnv(cfg.Database.Password)
	cfg.FileStore.Endpoint = os.ExpandEnv(cfg.FileStore.Endpoint)
	cfg.FileStore.AccessKey = os.ExpandEnv(cfg.FileStore.AccessKey)
	cfg.FileStore.SecretKey = os.ExpandEnv(cfg.FileStore.SecretKey)
}

// --- validation ---

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("loglevel", func(fl validator.FieldLevel) bool {
		return logger.ValidLevel(fl.Field().String())
	})
	// report yaml key names rather than Go field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks every section. All violations are reported in one
// ErrKindInvalidInput error.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errs.Wrap(errs.ErrKindInvalidInput, "invalid config", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return errs.Newf(errs.ErrKindInvalidInput, "invalid config: %s", strings.Join(msgs, "; "))
}

// describe renders a field error as "database.port: max=65535".
func describe(fe validator.FieldError) string {
	_, path, _ := strings.Cut(fe.Namespace(), ".")
	if fe.Param() == "" {
		return path + ": " + fe.Tag()
	}
	return path + ": " + fe.Tag() + "=" + fe.Param()
}
