// Package domain defines the core business entities for sercha-rag.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A content-addressed source document
//   - Chunk: A retrievable unit of a document's text
//   - VectorRecord / Hit: Embeddings going into and coming out of the index
//   - AnswerResult: The structured outcome of a question
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
