// Package worker mirrors the ledger event stream into a local CSV export
// file. The mirror is an append-only journal: deleted events are noted in
// the log but rows already exported stay put.
package worker

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"expensed/internal/amqp"
)

var exportHeader = []string{"Date", "Description", "Amount"}

// CSVExporter appends created expenses to a CSV file, writing the header
// when it creates the file.
type CSVExporter struct {
	mu   sync.Mutex
	path string
	file *os.File
	w    *csv.Writer
}

func NewCSVExporter(path string) (*CSVExporter, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create export directory: %w", err)
		}
	}

	info, err := os.Stat(path)
	fresh := os.IsNotExist(err) || (err == nil && info.Size() == 0)

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open export file: %w", err)
	}

	e := &CSVExporter{
		path: path,
		file: file,
		w:    csv.NewWriter(file),
	}

	if fresh {
		if err := e.w.Write(exportHeader); err != nil {
			file.Close()
			return nil, fmt.Errorf("write export header: %w", err)
		}
		e.w.Flush()
		if err := e.w.Error(); err != nil {
			file.Close()
			return nil, fmt.Errorf("flush export header: %w", err)
		}
	}

	return e, nil
}

// HandleEvent processes one ledger event. Returning an error makes the
// consumer requeue the message, so only I/O failures count as errors.
func (e *CSVExporter) HandleEvent(msg *amqp.LedgerEventMessage) error {
	switch msg.Type {
	case amqp.EventExpenseCreated:
		return e.appendRow(msg)
	case amqp.EventExpenseDeleted:
		slog.Info("Expense deleted upstream; export file keeps its row",
			"expense_id", msg.ExpenseID, "user_id", msg.OwnerID)
		return nil
	default:
		slog.Warn("Unknown ledger event type", "type", msg.Type)
		return nil
	}
}

func (e *CSVExporter) appendRow(msg *amqp.LedgerEventMessage) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	row := []string{msg.Date, msg.Description, FormatAmount(msg.AmountCents)}
	if err := e.w.Write(row); err != nil {
		return fmt.Errorf("write export row: %w", err)
	}
	e.w.Flush()
	if err := e.w.Error(); err != nil {
		return fmt.Errorf("flush export row: %w", err)
	}

	slog.Info("Expense exported",
		"expense_id", msg.ExpenseID,
		"user_id", msg.OwnerID,
		"amount_cents", msg.AmountCents,
		"file", e.path)

	return nil
}

func (e *CSVExporter) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.w.Flush()
	if err := e.w.Error(); err != nil {
		e.file.Close()
		return err
	}
	return e.file.Close()
}

// FormatAmount renders cents as a fixed two-decimal string, e.g. 450 ->
// "4.50" and -1250 -> "-12.50".
func FormatAmount(cents int64) string {
	neg := cents < 0
	if neg {
		cents = -cents
	}
	s := strconv.FormatInt(cents/100, 10) + "." + fmt.Sprintf("%02d", cents%100)
	if neg {
		return "-" + s
	}
	return s
}
