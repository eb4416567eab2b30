// Package persistence defines the storage models and repository contracts for
// the meeting_rooms and reservations tables. Implementations live in the
// sqlite and postgres subpackages and share the migrations in migration.
package persistence
