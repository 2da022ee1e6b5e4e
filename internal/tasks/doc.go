// Package tasks runs batch jobs over saved recordings with real-time progress reporting.
//
// # Operations
//
// [Engine] offers two jobs, both fanned out over a bounded worker pool and
// throttled by a shared rate limiter:
//
//  1. [Engine.BulkSummarize] : summarize each recording's transcript
//     - Recordings with an empty transcript fail without a request
//     - Notes are written per recording as Markdown and HTML
//     - A manifest.json in the output directory lists every outcome
//
//  2. [Engine.BulkUpload] : upload each recording's audio for transcription
//     - Successful uploads are marked in the [Marker], usually the recordings repository
//
// # Progress Reporting
//
// Both operations accept an optional progress channel. Sends use select with
// default, so a slow reader drops updates instead of stalling workers.
//
// One failed recording never stops the batch; per-item errors are collected in the result.
package tasks
