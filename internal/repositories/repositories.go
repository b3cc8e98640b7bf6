package repositories

import (
	"database/sql"
	"fmt"
)

// rowQuerier is satisfied by both *sql.DB and *sql.Tx.
type rowQuerier interface {
	QueryRow(query string, args ...any) *sql.Row
}

// NextSequence advances the single-row counter in {table}_sequence and returns the new value.
//
// Run it on the transaction that inserts the row so a rolled-back insert leaves the counter untouched.
func NextSequence(q rowQuerier, table string) (int, error) {
	var seq int
	query := fmt.Sprintf("UPDATE %s_sequence SET value = value + 1 WHERE id = 1 RETURNING value", table)
	if err := q.QueryRow(query).Scan(&seq); err != nil {
		return 0, fmt.Errorf("failed to advance %s sequence: %w", table, err)
	}
	return seq, nil
}
