//go:build purego

package storage

import _ "modernc.org/sqlite"

const driverName = "sqlite"
