// Package repositories implements SQLite persistence for client-side state.
//
// Key Implementations:
//   - [KVStore] : key/value storage backing [session.Session] (the bearer token lives under "token")
//   - [DraftRepository] : edit sessions saved locally, one per project
//
// Drafts carry a sequence number for stable, human-readable ordering (draft #3) independent of UUIDs
// and timestamps. [NextSequence] atomically increments the per-table counter in its sequence table.
//
// Nothing here is shared with the server; deleting the database only loses the token and drafts.
package repositories
