// Package repositories implements SQLite persistence for client-side state.
//
// Key Implementations:
//   - [TokenRepository] : the persisted bearer token, one row under a fixed key
//   - [RecordingRepository] : locally captured recordings and their transcripts
//
// Recordings carry a sequence number for stable, human-readable ordering
// independent of UUIDs and creation timestamps. The counter lives in the
// recordings_sequence table and is bumped inside the insert transaction.
package repositories
