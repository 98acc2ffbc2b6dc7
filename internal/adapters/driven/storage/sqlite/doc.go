// Package sqlite provides a unified SQLite-based implementation of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements two port interfaces
// through a single database connection:
//
//   - DocumentStore: documents and chunks, keyed by content hash
//   - VectorIndex: named embedding collections with brute-force cosine search
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Applied versions are recorded in schema_migrations.
//
// # Data Location
//
// By default, the database is stored at ~/.sercha-rag/data/rag.db
//
// # Thread Safety
//
// All operations are thread-safe. Concurrent inserts of the same content hash
// are decided by the UNIQUE(sha256) constraint; exactly one insert wins.
package sqlite
