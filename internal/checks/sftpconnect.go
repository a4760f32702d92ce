// internal/checks/sftpconnect.go - SFTP connectivity probe
package checks

import (
    "context"
    "encoding/json"
    "fmt"
    "net"
    "time"

    "github.com/pkg/sftp"
    "golang.org/x/crypto/ssh"

    "bpmon/internal/database"
)

const sftpConnectTimeout = 1 * time.Second

// SFTPConnectCheck opens an authenticated session and lists the configured
// remote directory. The connect timeout is short on purpose: if the server
// does not answer almost immediately it is considered down.
type SFTPConnectCheck struct {
    Host      string
    Port      int
    Username  string
    Password  string
    Directory string
    Timeout   time.Duration
}

func newSFTPConnect(payload json.RawMessage) (Checker, error) {
    var doc struct {
        Host      string      `json:"HOST"`
        Port      json.Number `json:"PORT"`
        Username  string      `json:"USERNAME"`
        Password  string      `json:"PASSWORD"`
        Directory string      `json:"DIRECTORY"`
    }
    if err := json.Unmarshal(payload, &doc); err != nil {
        return nil, fmt.Errorf("failed to parse sftpconnect payload: %w", err)
    }

    port, err := doc.Port.Int64()
    if err != nil {
        return nil, fmt.Errorf("invalid PORT value %q: %w", doc.Port.String(), err)
    }

    return &SFTPConnectCheck{
        Host:      doc.Host,
        Port:      int(port),
        Username:  doc.Username,
        Password:  doc.Password,
        Directory: doc.Directory,
        Timeout:   sftpConnectTimeout,
    }, nil
}

func (s *SFTPConnectCheck) Kind() database.TaskKind {
    return database.KindSFTPConnect
}

func (s *SFTPConnectCheck) Probe(ctx context.Context) (database.TaskStatus, string) {
    addr := net.JoinHostPort(s.Host, fmt.Sprintf("%d", s.Port))

    conn, err := ssh.Dial("tcp", addr, &ssh.ClientConfig{
        User:            s.Username,
        Auth:            []ssh.AuthMethod{ssh.Password(s.Password)},
        HostKeyCallback: ssh.InsecureIgnoreHostKey(),
        Timeout:         s.Timeout,
    })
    if err != nil {
        return database.TaskFail, fmt.Sprintf("SFTP connection to %s failed: %v", addr, err)
    }
    defer conn.Close()

    client, err := sftp.NewClient(conn)
    if err != nil {
        return database.TaskFail, fmt.Sprintf("failed to open SFTP channel on %s: %v", addr, err)
    }
    defer client.Close()

    if _, err := client.ReadDir(s.Directory); err != nil {
        return database.TaskFail, fmt.Sprintf("failed to list remote directory %s on %s: %v", s.Directory, addr, err)
    }
    return database.TaskSuccess, fmt.Sprintf("SFTP connection to %s successful, listed %s", addr, s.Directory)
}
