// Package model defines the typed records returned by The Blue Alliance API.
//
// Records are plain values decoded from one JSON object each. Optional keys
// that are absent or null decode to nil (pointers, slices, maps and raw
// messages), which is the "no value" marker used throughout the package.
//
// # Identity
//
// Team identity and ordering key off the team number only:
//
//	a.Equal(b) // a.TeamNumber == b.TeamNumber
//	a.Less(b)  // a.TeamNumber <  b.TeamNumber
//
// # Dynamic metrics
//
// Ranking sort orders and extra stats vary by season. They are exposed as
// NamedValues, built by zipping the value list of a ranking against the
// parallel metadata list of the response and normalizing each display name
// with MetricName:
//
//	MetricName("Ranking Score") // "ranking_score"
//	MetricName("Auto+Climb")    // "auto_plusclimb"
package model
