// internal/database/boltstore.go - BoltDB implementation of Store
package database

import (
    "context"
    "encoding/json"
    "fmt"
    "os"
    "path/filepath"
    "time"

    "github.com/google/uuid"
    "go.etcd.io/bbolt"
)

var (
    ProcessesBucket    = []byte("processes")
    SubprocessesBucket = []byte("subprocesses")
    ActivitiesBucket   = []byte("activities")
    SystemsBucket      = []byte("systems")
    InterfacesBucket   = []byte("interfaces")
    TasksBucket        = []byte("tasks")
    ResultsBucket      = []byte("results")
    ErrorsBucket       = []byte("task_errors")
)

type BoltStore struct {
    db   *bbolt.DB
    path string
}

func NewBoltStore(path string) (Store, error) {
    // Create directory if it doesn't exist
    if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
        return nil, fmt.Errorf("failed to create data directory: %w", err)
    }

    db, err := bbolt.Open(path, 0600, &bbolt.Options{
        Timeout: 1 * time.Second,
    })
    if err != nil {
        return nil, fmt.Errorf("failed to open BoltDB: %w", err)
    }

    store := &BoltStore{db: db, path: path}

    if err := store.initBuckets(); err != nil {
        db.Close()
        return nil, fmt.Errorf("failed to initialize buckets: %w", err)
    }

    return store, nil
}

func (s *BoltStore) initBuckets() error {
    return s.db.Update(func(tx *bbolt.Tx) error {
        buckets := [][]byte{
            ProcessesBucket, SubprocessesBucket, ActivitiesBucket,
            SystemsBucket, InterfacesBucket, TasksBucket,
            ResultsBucket, ErrorsBucket,
        }
        for _, bucket := range buckets {
            if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
                return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
            }
        }
        return nil
    })
}

func (s *BoltStore) Close() error {
    return s.db.Close()
}

// put marshals an entity and stores it under key in bucket.
func put(tx *bbolt.Tx, bucket []byte, key string, v interface{}) error {
    data, err := json.Marshal(v)
    if err != nil {
        return fmt.Errorf("failed to marshal entity: %w", err)
    }
    return tx.Bucket(bucket).Put([]byte(key), data)
}

func (s *BoltStore) get(bucket []byte, id string, v interface{}) error {
    return s.db.View(func(tx *bbolt.Tx) error {
        data := tx.Bucket(bucket).Get([]byte(id))
        if data == nil {
            return ErrNotFound
        }
        return json.Unmarshal(data, v)
    })
}

func (s *BoltStore) GetProcesses(ctx context.Context) ([]Process, error) {
    var procs []Process
    err := s.db.View(func(tx *bbolt.Tx) error {
        return tx.Bucket(ProcessesBucket).ForEach(func(k, v []byte) error {
            var p Process
            if err := json.Unmarshal(v, &p); err != nil {
                return fmt.Errorf("failed to unmarshal process %s: %w", k, err)
            }
            procs = append(procs, p)
            return nil
        })
    })
    return procs, err
}

func (s *BoltStore) GetProcess(ctx context.Context, id string) (*Process, error) {
    var p Process
    if err := s.get(ProcessesBucket, id, &p); err != nil {
        return nil, err
    }
    return &p, nil
}

func (s *BoltStore) CreateProcess(ctx context.Context, p *Process) error {
    if p.ID == "" {
        p.ID = uuid.New().String()
    }
    if p.Status == "" {
        p.Status = StatusUnrun
    }
    p.CreatedAt = time.Now()
    p.UpdatedAt = time.Now()

    return s.db.Update(func(tx *bbolt.Tx) error {
        return put(tx, ProcessesBucket, p.ID, p)
    })
}

func (s *BoltStore) UpdateProcess(ctx context.Context, p *Process) error {
    p.UpdatedAt = time.Now()
    return s.db.Update(func(tx *bbolt.Tx) error {
        return put(tx, ProcessesBucket, p.ID, p)
    })
}

func (s *BoltStore) GetSubprocesses(ctx context.Context) ([]Subprocess, error) {
    return s.subprocesses("")
}

func (s *BoltStore) GetSubprocessesByProcess(ctx context.Context, processID string) ([]Subprocess, error) {
    return s.subprocesses(processID)
}

func (s *BoltStore) subprocesses(processID string) ([]Subprocess, error) {
    var sps []Subprocess
    err := s.db.View(func(tx *bbolt.Tx) error {
        return tx.Bucket(SubprocessesBucket).ForEach(func(k, v []byte) error {
            var sp Subprocess
            if err := json.Unmarshal(v, &sp); err != nil {
                return fmt.Errorf("failed to unmarshal subprocess %s: %w", k, err)
            }
            if processID != "" && sp.ProcessID != processID {
                return nil
            }
            sps = append(sps, sp)
            return nil
        })
    })
    return sps, err
}

func (s *BoltStore) GetSubprocess(ctx context.Context, id string) (*Subprocess, error) {
    var sp Subprocess
    if err := s.get(SubprocessesBucket, id, &sp); err != nil {
        return nil, err
    }
    return &sp, nil
}

func (s *BoltStore) CreateSubprocess(ctx context.Context, sp *Subprocess) error {
    if sp.ID == "" {
        sp.ID = uuid.New().String()
    }
    if sp.Status == "" {
        sp.Status = StatusUnrun
    }
    sp.CreatedAt = time.Now()
    sp.UpdatedAt = time.Now()

    return s.db.Update(func(tx *bbolt.Tx) error {
        if tx.Bucket(ProcessesBucket).Get([]byte(sp.ProcessID)) == nil {
            return fmt.Errorf("process %s: %w", sp.ProcessID, ErrNotFound)
        }
        return put(tx, SubprocessesBucket, sp.ID, sp)
    })
}

func (s *BoltStore) UpdateSubprocess(ctx context.Context, sp *Subprocess) error {
    sp.UpdatedAt = time.Now()
    return s.db.Update(func(tx *bbolt.Tx) error {
        return put(tx, SubprocessesBucket, sp.ID, sp)
    })
}

func (s *BoltStore) GetActivities(ctx context.Context) ([]Activity, error) {
    return s.activities("")
}

func (s *BoltStore) GetActivitiesBySubprocess(ctx context.Context, subprocessID string) ([]Activity, error) {
    return s.activities(subprocessID)
}

func (s *BoltStore) activities(subprocessID string) ([]Activity, error) {
    var acts []Activity
    err := s.db.View(func(tx *bbolt.Tx) error {
        return tx.Bucket(ActivitiesBucket).ForEach(func(k, v []byte) error {
            var a Activity
            if err := json.Unmarshal(v, &a); err != nil {
                return fmt.Errorf("failed to unmarshal activity %s: %w", k, err)
            }
            if subprocessID != "" && a.SubprocessID != subprocessID {
                return nil
            }
            acts = append(acts, a)
            return nil
        })
    })
    return acts, err
}

func (s *BoltStore) GetActivity(ctx context.Context, id string) (*Activity, error) {
    var a Activity
    if err := s.get(ActivitiesBucket, id, &a); err != nil {
        return nil, err
    }
    return &a, nil
}

func (s *BoltStore) CreateActivity(ctx context.Context, a *Activity) error {
    if a.ID == "" {
        a.ID = uuid.New().String()
    }
    if a.Status == "" {
        a.Status = StatusUnrun
    }
    a.CreatedAt = time.Now()
    a.UpdatedAt = time.Now()

    return s.db.Update(func(tx *bbolt.Tx) error {
        if tx.Bucket(SubprocessesBucket).Get([]byte(a.SubprocessID)) == nil {
            return fmt.Errorf("subprocess %s: %w", a.SubprocessID, ErrNotFound)
        }
        return put(tx, ActivitiesBucket, a.ID, a)
    })
}

func (s *BoltStore) UpdateActivity(ctx context.Context, a *Activity) error {
    a.UpdatedAt = time.Now()
    return s.db.Update(func(tx *bbolt.Tx) error {
        return put(tx, ActivitiesBucket, a.ID, a)
    })
}

func (s *BoltStore) GetSystems(ctx context.Context) ([]System, error) {
    var systems []System
    err := s.db.View(func(tx *bbolt.Tx) error {
        return tx.Bucket(SystemsBucket).ForEach(func(k, v []byte) error {
            var sys System
            if err := json.Unmarshal(v, &sys); err != nil {
                return fmt.Errorf("failed to unmarshal system %s: %w", k, err)
            }
            systems = append(systems, sys)
            return nil
        })
    })
    return systems, err
}

func (s *BoltStore) GetSystem(ctx context.Context, id string) (*System, error) {
    var sys System
    if err := s.get(SystemsBucket, id, &sys); err != nil {
        return nil, err
    }
    return &sys, nil
}

func (s *BoltStore) CreateSystem(ctx context.Context, sys *System) error {
    if sys.ID == "" {
        sys.ID = uuid.New().String()
    }
    if sys.Status == "" {
        sys.Status = StatusUnrun
    }
    sys.CreatedAt = time.Now()
    sys.UpdatedAt = time.Now()

    return s.db.Update(func(tx *bbolt.Tx) error {
        return put(tx, SystemsBucket, sys.ID, sys)
    })
}

func (s *BoltStore) UpdateSystem(ctx context.Context, sys *System) error {
    sys.UpdatedAt = time.Now()
    return s.db.Update(func(tx *bbolt.Tx) error {
        return put(tx, SystemsBucket, sys.ID, sys)
    })
}

func (s *BoltStore) GetInterfaces(ctx context.Context) ([]Interface, error) {
    var ifaces []Interface
    err := s.db.View(func(tx *bbolt.Tx) error {
        return tx.Bucket(InterfacesBucket).ForEach(func(k, v []byte) error {
            var iface Interface
            if err := json.Unmarshal(v, &iface); err != nil {
                return fmt.Errorf("failed to unmarshal interface %s: %w", k, err)
            }
            ifaces = append(ifaces, iface)
            return nil
        })
    })
    return ifaces, err
}

func (s *BoltStore) GetInterface(ctx context.Context, id string) (*Interface, error) {
    var iface Interface
    if err := s.get(InterfacesBucket, id, &iface); err != nil {
        return nil, err
    }
    return &iface, nil
}

func (s *BoltStore) CreateInterface(ctx context.Context, iface *Interface) error {
    if iface.ID == "" {
        iface.ID = uuid.New().String()
    }
    if iface.Status == "" {
        iface.Status = StatusUnrun
    }
    iface.CreatedAt = time.Now()
    iface.UpdatedAt = time.Now()

    return s.db.Update(func(tx *bbolt.Tx) error {
        b := tx.Bucket(SystemsBucket)
        if b.Get([]byte(iface.OriginSystemID)) == nil {
            return fmt.Errorf("origin system %s: %w", iface.OriginSystemID, ErrNotFound)
        }
        if b.Get([]byte(iface.DestinationSystemID)) == nil {
            return fmt.Errorf("destination system %s: %w", iface.DestinationSystemID, ErrNotFound)
        }
        return put(tx, InterfacesBucket, iface.ID, iface)
    })
}

func (s *BoltStore) UpdateInterface(ctx context.Context, iface *Interface) error {
    iface.UpdatedAt = time.Now()
    return s.db.Update(func(tx *bbolt.Tx) error {
        return put(tx, InterfacesBucket, iface.ID, iface)
    })
}
