// internal/checks/querydb.go - database query probe
package checks

import (
    "context"
    "encoding/json"
    "fmt"
    "time"

    "github.com/jackc/pgx/v5"
    "github.com/jackc/pgx/v5/stdlib"

    "bpmon/internal/database"
)

const queryTimeout = 10 * time.Second

// QueryDBCheck opens a connection with the configured credentials and runs a
// read query. The query only has to execute; its rows are not inspected.
type QueryDBCheck struct {
    URL      string
    Username string
    Password string
    Query    string
    Timeout  time.Duration
}

func newQueryDB(payload json.RawMessage) (Checker, error) {
    var doc struct {
        URL      string `json:"BDURL"`
        Username string `json:"USERNAME"`
        Password string `json:"PASSWORD"`
        Query    string `json:"QUERY"`
    }
    if err := json.Unmarshal(payload, &doc); err != nil {
        return nil, fmt.Errorf("failed to parse querydb payload: %w", err)
    }

    return &QueryDBCheck{
        URL:      doc.URL,
        Username: doc.Username,
        Password: doc.Password,
        Query:    doc.Query,
        Timeout:  queryTimeout,
    }, nil
}

func (q *QueryDBCheck) Kind() database.TaskKind {
    return database.KindQueryDB
}

func (q *QueryDBCheck) Probe(ctx context.Context) (database.TaskStatus, string) {
    cfg, err := pgx.ParseConfig(q.URL)
    if err != nil {
        return database.TaskFail, fmt.Sprintf("invalid connection URL %s: %v", q.URL, err)
    }
    cfg.User = q.Username
    cfg.Password = q.Password
    cfg.ConnectTimeout = q.Timeout

    db := stdlib.OpenDB(*cfg)
    defer db.Close()

    ctx, cancel := context.WithTimeout(ctx, q.Timeout)
    defer cancel()

    rows, err := db.QueryContext(ctx, q.Query)
    if err != nil {
        return database.TaskFail, fmt.Sprintf("database query failed: %v", err)
    }
    defer rows.Close()

    return database.TaskSuccess, fmt.Sprintf("query executed successfully: %s", q.Query)
}
