// Package store persists the draw dataset as a CSV file.
//
// The file has one header row followed by one row per draw, ordered as the
// reconciler left them. A missing file means the dataset has not been
// initialized yet. Every write goes to a temporary file in the same
// directory that is renamed over the target, so a failed run never leaves a
// partial dataset behind.
package store
