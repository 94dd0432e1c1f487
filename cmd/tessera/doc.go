// Package main hosts the Tessera CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into pipeline
// operations: registering records and assets, running metadata extraction and
// derivative generation, OCR and transcription, annotation management,
// snippet exports, and IIIF manifest assembly. It centralizes configuration
// resolution and structured logging setup so subcommands can focus on user
// experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
