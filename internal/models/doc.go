// Package models defines the client-side entities of the lecture notes service.
//
// Every value that arrives from the backend passes through exactly one
// normalization function before it reaches session or dashboard state:
//   - [NormalizeUser] : profile payloads from login, register and /api/auth/me
//   - [NormalizeFolder] : folder payloads from the files API
//   - [NormalizeFile] : file payloads nested in folders or returned by uploads
//
// The backend identifies documents by "_id" (a string, a number or an
// extended-JSON {"$oid": ...} object) while the client contract uses "id".
// Both collapse onto the canonical [ID] type.
//
// [Recording] is the only persisted entity; it is stored locally by the
// repositories package.
package models
