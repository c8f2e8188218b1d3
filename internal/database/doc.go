// Package database resolves parsed NeTEx entities into journey specifications and
// journeys, and indexes them by map grid cell for box queries.
package database
