// Package models defines persisted entities and repository interfaces for plcopy.
//
//   - [TransferRun] : one execution of a playlist transfer, from listing to its terminal state
//
// Persistent entities implement the [Model] interface providing ID, timestamps and validation.
// The [Repository] interface defines standard CRUD operations for database access.
package models
