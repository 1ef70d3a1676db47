// Package mock provides deterministic in-memory test doubles for the ai
// interfaces: an FNV-seeded embedder, a scripted-response completer, and a
// first-sentence summarizer.
package mock
