// Package geo holds the spatial and temporal value types the database is indexed by.
//
// Coordinates are fixed-point microdegrees, distances are millimetres and times of day are
// seconds since midnight. All values are immutable and safe to share between goroutines.
package geo
