// Package dailydiesel maintains a daily ledger of Brent crude and ULSD
// diesel spot prices, both in USD per barrel, and reports the weekly
// diesel-over-Brent spread by email. It is designed to run unattended once
// a day and to recover from missed runs on its own.
//
// The core functionalities include:
//   - Ledger Management: One row per calendar day, gap-free, persisted as a
//     CSV file. Rows carry the two prices plus derived columns (ISO week,
//     day-over-day changes, 7 and 30 day rolling means, weekly spread).
//   - Forward-Fill Catch-Up: Days without a run or without a quotation are
//     filled by carrying the last known prices forward, so derived columns
//     stay well-defined.
//   - Deterministic Recompute: Derived columns are always recomputed from
//     scratch over the whole ledger, never patched incrementally.
//   - Reporting Gate: The weekly spread columns and the email are produced
//     only on the configured reporting weekday.
//   - Heartbeat: Every run records exactly one outcome in a small JSON file
//     that summarizes the pipeline state as operational or degraded.
//
// This package serves as the foundational logic for the `dd` command-line
// tool. Price providers, the SMTP notifier, and report rendering live in
// subpackages.
package dailydiesel
