package google

import (
	"fmt"
	"strings"

	"fintrack/internal/core"
)

// Sheet columns: A date, B kind, C category, D amount, E transaction id,
// F user id, G transaction ref.
const (
	appendColumns = "A:G"
	refColumn     = "G:G"
)

func transactionRow(tx core.Transaction) []any {
	return []any{
		tx.Date.String(),
		tx.Kind.String(),
		tx.Category,
		tx.Amount.String(),
		tx.ID,
		tx.UserID,
		tx.Ref,
	}
}

// parseRefColumn collects transaction refs, skipping blanks and the header.
func parseRefColumn(values [][]any) map[string]bool {
	refs := make(map[string]bool, len(values))
	for _, row := range values {
		if len(row) == 0 {
			continue
		}
		ref := strings.TrimSpace(fmt.Sprint(row[0]))
		if ref == "" || strings.EqualFold(ref, "ref") || strings.EqualFold(ref, "transaction ref") {
			continue
		}
		refs[ref] = true
	}
	return refs
}
