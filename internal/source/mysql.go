package source

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strconv"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver

	"github.com/dbsmedya/goshape/internal/config"
	"github.com/dbsmedya/goshape/internal/sqlutil"
	"github.com/dbsmedya/goshape/internal/value"
)

// MySQL streams the rows of one query as records. Each row becomes an
// object with a key per column, in result-set column order.
type MySQL struct {
	db      *sql.DB
	rows    *sql.Rows
	columns []string
	values  []interface{}
	ptrs    []interface{}
}

// OpenMySQL connects with dsn, verifies the connection and starts query.
func OpenMySQL(ctx context.Context, dsn, query string) (*MySQL, error) {
	db, err := openWithRetry(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to source database: %w", err)
	}

	m, err := NewMySQL(ctx, db, query)
	if err != nil {
		db.Close()
		return nil, err
	}
	m.db = db
	return m, nil
}

// NewMySQL starts query on an existing handle. The caller keeps ownership
// of db; Close then only releases the row cursor.
func NewMySQL(ctx context.Context, db *sql.DB, query string) (*MySQL, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("run source query: %w", err)
	}

	columns, err := rows.Columns()
	if err != nil {
		rows.Close()
		return nil, fmt.Errorf("read result columns: %w", err)
	}

	values := make([]interface{}, len(columns))
	ptrs := make([]interface{}, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}

	return &MySQL{
		rows:    rows,
		columns: columns,
		values:  values,
		ptrs:    ptrs,
	}, nil
}

// Next returns the next row as a record, or io.EOF after the last row.
func (m *MySQL) Next() (value.Value, error) {
	if !m.rows.Next() {
		if err := m.rows.Err(); err != nil {
			return value.Value{}, fmt.Errorf("read row: %w", err)
		}
		return value.Value{}, io.EOF
	}

	if err := m.rows.Scan(m.ptrs...); err != nil {
		return value.Value{}, fmt.Errorf("scan row: %w", err)
	}

	obj := value.NewObject()
	for i, col := range m.columns {
		obj.Set(col, cellValue(m.values[i]))
	}
	return value.ObjectValue(obj), nil
}

// Close releases the cursor and, when this source opened the connection,
// the connection pool as well.
func (m *MySQL) Close() error {
	var errs []error

	if m.rows != nil {
		if err := m.rows.Close(); err != nil {
			errs = append(errs, fmt.Errorf("rows close: %w", err))
		}
	}

	if m.db != nil {
		if err := m.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("database close: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors closing source: %v", errs)
	}
	return nil
}

// cellValue maps a driver value onto the JSON model. The MySQL driver
// returns int64 for integers, float64 for floats and []byte for strings,
// decimals and blobs; parseTime=true makes temporal columns arrive as
// time.Time, which land as RFC 3339 strings. Unsigned bigints keep their
// exact decimal form.
func cellValue(v interface{}) value.Value {
	switch c := v.(type) {
	case nil:
		return value.NullValue()
	case bool:
		return value.BoolValue(c)
	case int64:
		return value.IntValue(c)
	case int:
		return value.IntValue(int64(c))
	case int32:
		return value.IntValue(int64(c))
	case uint64:
		return value.NumberValue(value.Number(strconv.FormatUint(c, 10)))
	case float64:
		return value.FloatValue(c)
	case float32:
		return value.FloatValue(float64(c))
	case []byte:
		return value.StringValue(string(c))
	case string:
		return value.StringValue(c)
	case time.Time:
		return value.StringValue(c.Format(time.RFC3339))
	default:
		return value.StringValue(fmt.Sprint(c))
	}
}

// openWithRetry opens the pool and pings with exponential backoff.
func openWithRetry(ctx context.Context, dsn string) (*sql.DB, error) {
	var db *sql.DB
	var err error

	maxRetries := 3
	backoff := time.Second

	for i := 0; i < maxRetries; i++ {
		db, err = open(dsn)
		if err == nil {
			if pingErr := db.PingContext(ctx); pingErr == nil {
				return db, nil
			} else {
				db.Close()
				err = pingErr
			}
		}

		if i < maxRetries-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
				backoff *= 2 // Exponential backoff
			}
		}
	}

	return nil, fmt.Errorf("failed after %d retries: %w", maxRetries, err)
}

// open creates the connection pool. Limits stay small; a shape run holds
// a single streaming cursor.
func open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(10 * time.Minute)
	return db, nil
}

// BuildDSN constructs a MySQL DSN from the source configuration.
func BuildDSN(cfg *config.SourceConfig) string {
	// Format: user:password@tcp(host:port)/database?params
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
	)

	if cfg.Database != "" {
		dsn += cfg.Database
	}

	// Add TLS configuration
	params := "?parseTime=true"
	switch cfg.TLS {
	case "disable":
		params += "&tls=false"
	case "required":
		params += "&tls=true"
	case "preferred", "":
		params += "&tls=preferred"
	}

	return dsn + params
}

// BuildQuery resolves the source query. An explicit query wins; a table
// reference becomes a full-table scan with the name validated and quoted.
func BuildQuery(query, table string) (string, error) {
	if query != "" {
		return query, nil
	}
	if table == "" {
		return "", fmt.Errorf("no source query: set a query or a table")
	}
	quoted, err := sqlutil.QuoteTable(table)
	if err != nil {
		return "", fmt.Errorf("invalid source table: %w", err)
	}
	return "SELECT * FROM " + quoted, nil
}
