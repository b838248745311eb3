// Package database persists trust reports and batch job snapshots in a
// local SQLite database.
//
// Reports are stored as JSON blobs with queryable summary columns, so
// history listings never deserialize full reports.
package database
