package core

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// FormatInvoiceNumber renders an invoice number as INV#YYMMDDNNN, where NNN
// is the zero-padded daily sequence.
func FormatInvoiceNumber(date time.Time, seq int64) string {
	return fmt.Sprintf("INV#%s%03d", date.Format("060102"), seq)
}

// nextInvoiceNumber allocates the next invoice number for a date inside the
// caller's transaction. The per-day counter row is upserted atomically, so
// concurrent invoice creation (including around a day boundary) can never
// yield duplicate numbers — the row update serializes the allocators.
func nextInvoiceNumber(ctx context.Context, tx pgx.Tx, date time.Time) (string, error) {
	var seq int64
	err := tx.QueryRow(ctx, `
		INSERT INTO invoice_sequences (seq_date, last_number)
		VALUES ($1, 1)
		ON CONFLICT (seq_date)
		DO UPDATE SET last_number = invoice_sequences.last_number + 1
		RETURNING last_number`,
		date.Format("2006-01-02"),
	).Scan(&seq)
	if err != nil {
		return "", fmt.Errorf("advance invoice sequence for %s: %w", date.Format("2006-01-02"), err)
	}
	return FormatInvoiceNumber(date, seq), nil
}
