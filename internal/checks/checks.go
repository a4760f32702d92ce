// internal/checks/checks.go - check variant registry and payload validation
package checks

import (
    "context"
    "encoding/json"
    "fmt"

    "bpmon/internal/database"
)

// Checker performs one synchronous probe. Probe never returns an error: any
// network, parsing or protocol failure is converted into a FAIL outcome with
// a human-readable description. Each variant enforces its own timeout.
type Checker interface {
    Kind() database.TaskKind
    Probe(ctx context.Context) (database.TaskStatus, string)
}

type builder func(payload json.RawMessage) (Checker, error)

var registry = map[database.TaskKind]builder{
    database.KindPing:        newPing,
    database.KindHTTPCheck:   newHTTPCheck,
    database.KindQueryDB:     newQueryDB,
    database.KindSFTPConnect: newSFTPConnect,
}

// requiredFields lists the payload keys each variant needs. Missing or empty
// keys are rejected at task-creation time, not at probe time.
var requiredFields = map[database.TaskKind][]string{
    database.KindPing:        {"HOST", "RESPONSIBLEPARTY"},
    database.KindHTTPCheck:   {"URL"},
    database.KindQueryDB:     {"BDURL", "USERNAME", "PASSWORD", "QUERY"},
    database.KindSFTPConnect: {"HOST", "PORT", "USERNAME", "PASSWORD", "DIRECTORY"},
}

// New builds the checker for a task kind from its payload. The payload must
// already have passed ValidatePayload.
func New(kind database.TaskKind, payload json.RawMessage) (Checker, error) {
    build, ok := registry[kind]
    if !ok {
        return nil, fmt.Errorf("unknown task kind: %s", kind)
    }
    return build(payload)
}

// ValidatePayload checks that a payload is valid JSON and carries every
// required field for the given kind, with no empty values.
func ValidatePayload(kind database.TaskKind, payload json.RawMessage) error {
    fields, ok := requiredFields[kind]
    if !ok {
        return fmt.Errorf("unknown task kind: %s", kind)
    }

    var doc map[string]json.RawMessage
    if err := json.Unmarshal(payload, &doc); err != nil {
        return fmt.Errorf("payload is not a JSON object: %w", err)
    }

    for _, field := range fields {
        raw, present := doc[field]
        if !present {
            return fmt.Errorf("missing required field: %s", field)
        }
        var s string
        if err := json.Unmarshal(raw, &s); err == nil && s == "" {
            return fmt.Errorf("field %s cannot be empty", field)
        }
    }
    return nil
}

// ResponsibleParty extracts the RESPONSIBLEPARTY address from a payload, or
// returns an empty string when the field is absent or unreadable.
func ResponsibleParty(payload json.RawMessage) string {
    var doc struct {
        ResponsibleParty string `json:"RESPONSIBLEPARTY"`
    }
    if err := json.Unmarshal(payload, &doc); err != nil {
        return ""
    }
    return doc.ResponsibleParty
}
