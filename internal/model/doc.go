// Package model defines the draw record shared by the fetcher, reconciler,
// reporter and storage layers.
//
// Conventions:
//   - Dates: civil dates stored as time.Time at UTC midnight
//   - Counts: plain ints, 0 when the source value is missing or invalid
//   - Draw numbers: positive ints, unique within a dataset
package model
