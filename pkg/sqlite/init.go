// Package sqlite registers the "sqlite3_vec" database/sql driver: go-sqlite3
// with the sqlite-vec extension loaded on every connection.
package sqlite

import (
	"database/sql"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	"github.com/mattn/go-sqlite3"
)

const DriverName = "sqlite3_vec"

func init() {
	sqlite_vec.Auto()

	sql.Register(DriverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			_, err := conn.Exec("PRAGMA foreign_keys = ON", nil)
			return err
		},
	})
}
