package sheets

import (
	"context"

	"fintrack/internal/core"
)

// Ports for outbound adapters.
type (
	// TransactionWriter appends ledger rows to an external spreadsheet.
	TransactionWriter interface {
		Append(ctx context.Context, tx core.Transaction) (rowRef string, err error)
		AppendAll(ctx context.Context, txs []core.Transaction) (rowRef string, err error)
	}

	// ExportedLister reports which transaction refs are already in the sheet.
	ExportedLister interface {
		ExportedRefs(ctx context.Context) (map[string]bool, error)
	}

	Exporter interface {
		TransactionWriter
		ExportedLister
	}
)
