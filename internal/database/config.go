package database

import "time"

// Config holds all settings needed to connect to and pool a MySQL database.
type Config struct {
	// DSN is the full data source name. When set it wins over the
	// discrete connection fields below.
	// Example: "user:pass@tcp(localhost:3306)/mydb?parseTime=true"
	DSN string `yaml:"dsn"`

	Host     string `yaml:"host" validate:"required_without=DSN"`
	Port     int    `yaml:"port" validate:"omitempty,min=1,max=65535"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database" validate:"required_without=DSN"`

	// Pool tuning
	MaxConns        int32         `yaml:"max_conns" validate:"gte=0"`          // maximum number of open connections
	MaxIdleConns    int32         `yaml:"max_idle_conns" validate:"gte=0"`     // idle connections kept alive
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime" validate:"gte=0"`  // maximum time a connection may be reused
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" validate:"gte=0"` // maximum time a connection may sit idle

	// Timeouts
	ConnectTimeout time.Duration `yaml:"connect_timeout" validate:"gte=0"` // time limit for establishing a new connection
	QueryTimeout   time.Duration `yaml:"query_timeout" validate:"gte=0"`   // per-table read deadline (applied by callers)
}

// DefaultConfig returns pool settings suited to offline schema tooling:
// a handful of connections, short-lived, with generous query deadlines.
func DefaultConfig(dsn string) *Config {
	return &Config{
		DSN:             dsn,
		Port:            3306,
		MaxConns:        4,
		MaxIdleConns:    2,
		MaxConnLifetime: 30 * time.Minute,
		MaxConnIdleTime: 5 * time.Minute,
		ConnectTimeout:  10 * time.Second,
		QueryTimeout:    30 * time.Second,
	}
}
