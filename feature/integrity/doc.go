// Package integrity provides operational health checks for the reconciler.
//
// # Checks Provided
//
//   - Storage: the configured bucket exists and the records prefix holds at least one object.
//     With ?fix=true the bucket is created and an empty marker object is written at the prefix.
//   - Database: every job table exists with the columns and declared types of its gorm model
//     (SHOW COLUMNS on MySQL, PRAGMA table_info on sqlite).
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks without fixing.
//   - GET /integrity/storage : Runs the storage check (supports ?fix=true).
//   - GET /integrity/database : Runs the schema check.
package integrity
