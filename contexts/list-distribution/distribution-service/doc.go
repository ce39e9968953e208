// Package distributionservice splits uploaded contact lists across the newest agents.
//
// Layering:
// - domain: contact/batch entities, the tabular ingestor and the equal-share distributor
// - application: upload/list/export use cases and outbox workers
// - ports: worker directory, batch repository, outbox, clock and id boundaries
// - adapters: HTTP handler, csv/xlsx/xls decoding, in-memory store and postgres repository
// - transport: module-private DTOs for HTTP contracts
//
// Boundary notes:
// - Agents are read through ports.WorkerDirectory only; this module never imports identity-access.
// - Batches are immutable once persisted.
package distributionservice
