// Package ledger is the durable record of which users have completed
// verification. The default backend is a flat JSON file holding an array of
// user ids; a MySQL backend is available for deployments that prefer it.
package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Ledger is a monotonic set of verified user ids. There is no un-verify
// operation.
type Ledger interface {
	IsVerified(userID string) (bool, error)
	MarkVerified(userID string) error
	Close() error
}

// FileLedger persists the set as a JSON string array, rewritten in full
// after every insert.
type FileLedger struct {
	mu    sync.Mutex
	path  string
	users map[string]struct{}
}

// OpenFile loads the ledger from path. A missing file yields an empty
// ledger; a file that exists but does not parse is an error, because
// silently resetting it would un-verify every member.
func OpenFile(path string) (*FileLedger, error) {
	l := &FileLedger{path: path, users: make(map[string]struct{})}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return l, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read ledger %s: %w", path, err)
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("parse ledger %s: %w", path, err)
	}
	for _, id := range ids {
		l.users[id] = struct{}{}
	}
	return l, nil
}

func (l *FileLedger) IsVerified(userID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.users[userID]
	return ok, nil
}

// MarkVerified inserts the user and rewrites the file. On a write failure
// the insert is rolled back so the in-memory set never claims more than the
// file holds.
func (l *FileLedger) MarkVerified(userID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.users[userID]; ok {
		return nil
	}
	l.users[userID] = struct{}{}

	if err := l.persist(); err != nil {
		delete(l.users, userID)
		return err
	}
	return nil
}

// persist writes the whole set through a temp file in the same directory
// and renames it into place, so a crash mid-write leaves the previous
// ledger intact. Caller holds the lock.
func (l *FileLedger) persist() error {
	ids := make([]string, 0, len(l.users))
	for id := range l.users {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}

	dir := filepath.Dir(l.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(l.path)+".tmp")
	if err != nil {
		return fmt.Errorf("create temp ledger: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp ledger: %w", err)
	}
	if err := os.Rename(tmp.Name(), l.path); err != nil {
		return fmt.Errorf("replace ledger %s: %w", l.path, err)
	}
	return nil
}

func (l *FileLedger) Close() error { return nil }
