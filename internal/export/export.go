// Package export renders a resolved dataset to portable artifacts. Every
// artifact records which source served the data so a consumer can tell a
// cloud export from an offline-backup export.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerlite/ledgerlite/internal/ledger"
	"github.com/ledgerlite/ledgerlite/internal/provider"
)

// FormatVersion is the export envelope schema version. It tracks the
// snapshot schema: both serialize the same Dataset shape.
const FormatVersion = "1.0.0"

// Envelope is the top-level export artifact.
type Envelope struct {
	Version    string         `json:"version"`
	ExportedAt time.Time      `json:"exportedAt"`
	UserID     string         `json:"userId"`
	DataSource string         `json:"dataSource"`
	Data       ledger.Dataset `json:"data"`
}

// NewEnvelope wraps a resolved dataset with provenance metadata.
func NewEnvelope(userID string, source provider.Tag, data ledger.Dataset) Envelope {
	return Envelope{
		Version:    FormatVersion,
		ExportedAt: time.Now().UTC(),
		UserID:     userID,
		DataSource: source.Label(),
		Data:       data,
	}
}

// WriteJSON streams the envelope as indented JSON.
func WriteJSON(w io.Writer, env Envelope) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(env); err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	return nil
}

// ReadJSON parses an envelope previously written by WriteJSON.
func ReadJSON(r io.Reader) (Envelope, error) {
	var env Envelope
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		return Envelope{}, fmt.Errorf("decode export: %w", err)
	}
	return env, nil
}

// WriteCSV renders the dated money domains (expenses, then income) as a
// single spreadsheet. The first row records provenance so the artifact
// stays self-describing outside the envelope.
func WriteCSV(w io.Writer, env Envelope) error {
	cw := csv.NewWriter(w)

	rows := [][]string{
		{"exportedAt", env.ExportedAt.Format(time.RFC3339), "dataSource", env.DataSource, "user", env.UserID},
		{"type", "date", "amount", "category", "source", "forValue", "card", "note"},
	}
	for _, e := range env.Data.Expenses {
		rows = append(rows, []string{
			"expense", e.Date.Format("2006-01-02"), e.Amount.StringFixed(2),
			e.Category, "", e.ForValue, e.CardID, e.Note,
		})
	}
	for _, inc := range env.Data.Income {
		rows = append(rows, []string{
			"income", inc.Date.Format("2006-01-02"), inc.Amount.StringFixed(2),
			"", inc.Source, "", "", inc.Note,
		})
	}

	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// Totals sums the expense and income amounts of the exported dataset.
func (e Envelope) Totals() (expenses, income decimal.Decimal) {
	for _, exp := range e.Data.Expenses {
		expenses = expenses.Add(exp.Amount)
	}
	for _, inc := range e.Data.Income {
		income = income.Add(inc.Amount)
	}
	return expenses, income
}
