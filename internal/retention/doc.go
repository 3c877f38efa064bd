// Package retention enforces age-based lifecycle rules on a department tree.
//
// Documents live under {base}/{department}/{Working|Archive|Final}. A document
// in Working whose modification time is strictly older than ArchiveAfterDays
// is moved to Archive; a document in Archive strictly older than
// DeleteAfterDays is removed. Final is never touched.
//
// Files matching an exclusion pattern (exact or suffix match) and files with
// an adjacent ".keep" retention marker are exempt from both transitions and
// from the expiring-soon scan.
//
// The engine assumes a single process owns the tree for the duration of a
// call. There is no locking; two overlapping runs on the same tree may
// interleave unpredictably.
package retention
