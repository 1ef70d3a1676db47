// Package storage defines the persistence interfaces for content units,
// topics, notes and summaries, plus the serialization used by backends.
// Records are stored as JSON, matching the metadata contract of the
// vector store so both halves of the system stay inspectable with the
// same tooling.
package storage
