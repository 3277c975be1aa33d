// internal/tradelog/tradelog.go
package tradelog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// TradeRecord is one line of the append-only trade journal. TxHash is nil
// when the trade never landed, which serializes as JSON null and keeps failed
// attempts auditable.
type TradeRecord struct {
	Timestamp    time.Time `json:"timestamp"`
	Action       string    `json:"action"`
	TokenAddress string    `json:"token_address"`
	Price        float64   `json:"price"`
	TxHash       *string   `json:"tx_hash"`
}

// Journal appends trade records as JSON lines. Safe for concurrent use; the
// file is opened with O_APPEND so each line lands atomically.
type Journal struct {
	mu   sync.Mutex
	file *os.File
	dir  string
}

// Open creates dir if needed and opens the journal file inside it.
func Open(dir string) (*Journal, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create trade log directory: %w", err)
	}

	f, err := os.OpenFile(filepath.Join(dir, "trades.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open trade log: %w", err)
	}
	return &Journal{file: f, dir: dir}, nil
}

// Record appends one trade record.
func (j *Journal) Record(rec TradeRecord) error {
	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode trade record: %w", err)
	}
	line = append(line, '\n')

	j.mu.Lock()
	defer j.mu.Unlock()
	if _, err := j.file.Write(line); err != nil {
		return fmt.Errorf("failed to write trade record: %w", err)
	}
	return nil
}

// SaveTokenInfo writes the launch metadata of a token next to the journal,
// one file per mint, so a position can be inspected after the fact.
func (j *Journal) SaveTokenInfo(mint string, info any) error {
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode token info: %w", err)
	}
	path := filepath.Join(j.dir, mint+".txt")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to save token info: %w", err)
	}
	return nil
}

func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.file.Close()
}
