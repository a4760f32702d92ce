// internal/checks/httpcheck.go - HTTP reachability probe
package checks

import (
    "context"
    "encoding/json"
    "fmt"
    "net/http"
    "time"

    "bpmon/internal/database"
)

const httpTimeout = 10 * time.Second

// HTTPCheck issues a GET against a URL. Any status in [200,400) counts as
// reachable; redirects are not followed.
type HTTPCheck struct {
    URL     string
    Timeout time.Duration

    client *http.Client
}

func newHTTPCheck(payload json.RawMessage) (Checker, error) {
    var doc struct {
        URL string `json:"URL"`
    }
    if err := json.Unmarshal(payload, &doc); err != nil {
        return nil, fmt.Errorf("failed to parse httpcheck payload: %w", err)
    }

    return &HTTPCheck{
        URL:     doc.URL,
        Timeout: httpTimeout,
        client: &http.Client{
            Timeout: httpTimeout,
            CheckRedirect: func(req *http.Request, via []*http.Request) error {
                return http.ErrUseLastResponse
            },
        },
    }, nil
}

func (h *HTTPCheck) Kind() database.TaskKind {
    return database.KindHTTPCheck
}

func (h *HTTPCheck) Probe(ctx context.Context) (database.TaskStatus, string) {
    req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.URL, nil)
    if err != nil {
        return database.TaskFail, fmt.Sprintf("invalid URL %s: %v", h.URL, err)
    }

    resp, err := h.client.Do(req)
    if err != nil {
        return database.TaskFail, fmt.Sprintf("failed to reach URL %s: %v", h.URL, err)
    }
    defer resp.Body.Close()

    if resp.StatusCode >= 200 && resp.StatusCode < 400 {
        return database.TaskSuccess, fmt.Sprintf("successfully connected to URL %s (HTTP %d)", h.URL, resp.StatusCode)
    }
    return database.TaskFail, fmt.Sprintf("received error response from URL %s (HTTP %d)", h.URL, resp.StatusCode)
}
