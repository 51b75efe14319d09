// Package domain models the current-weather snapshot and the outcomes of a
// weather sync.
//
// # Data Source
//
// Snapshots come from the OpenWeatherMap "current weather" endpoint
// (https://openweathermap.org/current). Only the fields the service renders
// are kept: the condition list, temperature, wind and the observation time.
//
// # Freshness
//
// A snapshot is fresh while fewer than 24 hours have passed since its
// observation timestamp. Exactly 24 hours is stale. Timestamps in the future
// are fresh. Freshness is always evaluated against the package clock
// (see [SetClock]) so tests can pin "now".
//
// # Sync outcomes
//
// One sync produces a short, ordered sequence of [Outcome] values:
//
//	Success(cached)        only when the cache holds a fresh snapshot
//	Refreshing(true)       only when coordinates were supplied
//	Refreshing(false)
//	Success(new) | Error(cause, cached-if-fresh)
//
// An Error outcome carries a snapshot only when the cache held a snapshot that
// was fresh at the moment the failure was reconciled.
//
// # Wind direction
//
// Degrees are bucketed into eight 45° compass points centered on North
// (0° and 360°). See [DegreesToHeading].
package domain
