// Package netex models the subset of NeTEx timetable entities stopnorway reads.
//
// Entities reference each other by ID. Nothing here resolves references; that is the job of
// the database package.
package netex
