// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - Normaliser / NormaliserRegistry: Text extraction from raw bytes
//   - PostProcessor / PostProcessorPipeline: Chunking of extracted text
//   - DocumentStore: Content-addressed document and chunk persistence
//   - VectorIndex: Embedding storage and cosine search
//   - EmbeddingService: Text to vector
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
//   - LLMService: Answer generation. Without it, ask degrades to an error
//     status while retrieval keeps working.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
