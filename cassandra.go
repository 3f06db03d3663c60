// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package cassandra builds executable CQL requests. A Statement is either an
// ad hoc query with a declared number of parameters or the result of binding
// a PreparedStatement. Values are bound by position or by name, query options
// are set on the Statement, and the finished Statement is handed to an
// Executor.
//
// Every Statement and PreparedStatement owns one resource handle. Close
// releases it; Close is idempotent and should be deferred right after
// construction:
//
//	stmt, err := cassandra.NewStatementFromQuery(`SELECT * FROM ks.t WHERE k = ?`)
//	if err != nil {
//		return err
//	}
//	defer stmt.Close()
//
//	if _, err := stmt.BindString(0, "key"); err != nil {
//		return err
//	}
//	res, err := executor.Execute(ctx, stmt).Wait()
package cassandra

import (
	"strings"

	"github.com/cassandra-go/cassandra/internal/mapping"
)

// VerifyAllocationCounters panics if a Statement or PreparedStatement handle
// has not been released.
var VerifyAllocationCounters = mapping.VerifyAllocationCounters

// CountPlaceholders returns the number of '?' placeholders in query.
func CountPlaceholders(query string) int {
	return strings.Count(query, "?")
}
