package fs

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/aretw0/strata/pkg/core"
)

// maxLedgerLine bounds the size of a single ledger record when reading.
const maxLedgerLine = 16 << 20

// Ledger is an append-only JSON Lines file. Records are never rewritten.
type Ledger struct {
	path     string
	readOnly bool
	mu       sync.Mutex
}

// NewLedger returns a ledger backed by the file at path. The file and its
// directory are created on the first append.
func NewLedger(path string, readOnly bool) *Ledger {
	return &Ledger{path: path, readOnly: readOnly}
}

// Path returns the location of the ledger file.
func (l *Ledger) Path() string { return l.path }

// AppendLine writes one record. The record must be a single-line JSON object.
// When AppendLine returns nil the record is on disk after every record
// appended before it.
func (l *Ledger) AppendLine(ctx context.Context, line string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if l.readOnly {
		return core.ErrReadOnly
	}

	line = strings.TrimRight(line, "\r\n")
	if strings.ContainsAny(line, "\r\n") {
		return fmt.Errorf("%w: record spans several lines", core.ErrInvalidRecord)
	}
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "{") || !json.Valid([]byte(trimmed)) {
		return fmt.Errorf("%w: record is not a JSON object", core.ErrInvalidRecord)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("failed to create ledger directory: %w", err)
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open ledger: %w", err)
	}
	if _, err := f.WriteString(line + "\n"); err != nil {
		f.Close()
		return fmt.Errorf("failed to append to ledger: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("failed to sync ledger: %w", err)
	}
	return f.Close()
}

// ReadAllLines returns every non-blank record in append order. A missing
// ledger file reads as empty.
func (l *Ledger) ReadAllLines(ctx context.Context) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if os.IsNotExist(err) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	defer f.Close()

	lines := []string{}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLedgerLine)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}
	return lines, nil
}

var _ core.Ledger = (*Ledger)(nil)
