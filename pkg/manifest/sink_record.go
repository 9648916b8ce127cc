package manifest

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
)

// RecordSink is the relational store receiving one wpwebhooks row per event.
type RecordSink struct {
	Dialect   Dialect `toml:"dialect"` // postgres | sqlite
	DSN       string  `toml:"dsn"`     // wins over host/credentials when set; file path for sqlite
	Host      string  `toml:"host"`
	Port      int     `toml:"port"`
	Database  string  `toml:"database"`
	Username  string  `toml:"username"`
	Password  string  `toml:"password"`
	SSLMode   string  `toml:"ssl_mode"`   // postgres only; default "disable"
	TimeoutMS int     `toml:"timeout_ms"` // connect timeout; default 5000
	Debug     bool    `toml:"debug"`      // log every query via bundebug
}

// ConnString builds the driver DSN from the discrete fields when DSN is empty.
func (r RecordSink) ConnString() string {
	if r.DSN != "" {
		return r.DSN
	}
	switch r.Dialect {
	case DialectPostgres:
		port := r.Port
		if port == 0 {
			port = 5432
		}
		u := url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(r.Username, r.Password),
			Host:   net.JoinHostPort(r.Host, strconv.Itoa(port)),
			Path:   "/" + r.Database,
		}
		q := url.Values{}
		q.Set("sslmode", r.SSLMode)
		if r.TimeoutMS > 0 {
			q.Set("connect_timeout", strconv.Itoa(max(1, r.TimeoutMS/1000)))
		}
		u.RawQuery = q.Encode()
		return u.String()
	case DialectSQLite:
		return fmt.Sprintf("file:%s?cache=shared&_busy_timeout=%d", r.Database, r.TimeoutMS)
	}
	return ""
}
