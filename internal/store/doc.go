// Package store persists every pipeline record in SQLite.
//
// The Store manages database connections, schema migrations, and the CRUD
// surface for assets, consolidated metadata, derivatives, OCR documents and
// blocks, transcripts, annotations, snippets, collections, and processor
// settings. Every "replace" operation (metadata, derivatives, OCR,
// transcripts) deletes prior rows and inserts the new set inside one
// transaction so readers never observe a transient empty state.
//
// Substring searches over OCR blocks, transcript text, and annotation bodies
// are case-insensitive by contract.
package store
