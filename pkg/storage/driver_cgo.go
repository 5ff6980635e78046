//go:build !purego

package storage

import _ "github.com/mattn/go-sqlite3"

// driverName is the database/sql driver registered for SQLiteStore. The
// default build uses the cgo-based mattn driver; building with -tags
// purego links modernc.org/sqlite instead (see driver_purego.go), for
// deployments that cannot use cgo.
const driverName = "sqlite3"
