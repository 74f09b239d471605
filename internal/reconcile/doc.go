// Package reconcile merges freshly fetched draws into the local dataset.
//
// Policy:
//   - Draws are keyed by draw number
//   - A draw already present locally is never overwritten, even when the
//     feed now publishes different values for it
//   - Fetched draws missing a number or a date are skipped and reported
//   - The result is ordered by date, then draw number, ascending
package reconcile
