package model

import (
	"encoding/json"
)

// Alliance colors.
const (
	AllianceRed  = "red"
	AllianceBlue = "blue"
)

// Match is a single match at an event. Simplified responses omit the score
// breakdown, videos and post-result time.
type Match struct {
	Key             string          `json:"key"`
	CompLevel       string          `json:"comp_level"`
	SetNumber       int             `json:"set_number"`
	MatchNumber     int             `json:"match_number"`
	Alliances       MatchAlliances  `json:"alliances"`
	WinningAlliance *string         `json:"winning_alliance"`
	EventKey        string          `json:"event_key"`
	Time            *Timestamp      `json:"time"`
	ActualTime      *Timestamp      `json:"actual_time"`
	PredictedTime   *Timestamp      `json:"predicted_time"`
	PostResultTime  *Timestamp      `json:"post_result_time"`
	ScoreBreakdown  json.RawMessage `json:"score_breakdown"`
	Videos          []MatchVideo    `json:"videos"`
}

// HasScoreBreakdown reports whether the opaque breakdown payload is set.
func (m Match) HasScoreBreakdown() bool {
	return len(m.ScoreBreakdown) > 0 && string(m.ScoreBreakdown) != "null"
}

// MatchAlliances holds both alliances of a match.
type MatchAlliances struct {
	Red  MatchAlliance `json:"red"`
	Blue MatchAlliance `json:"blue"`
}

// Get returns the alliance of a color.
func (a MatchAlliances) Get(color string) (MatchAlliance, bool) {
	switch color {
	case AllianceRed:
		return a.Red, true
	case AllianceBlue:
		return a.Blue, true
	default:
		return MatchAlliance{}, false
	}
}

// MatchAlliance is the score and team list of one alliance in a match.
type MatchAlliance struct {
	Score             *int     `json:"score"`
	TeamKeys          []string `json:"team_keys"`
	SurrogateTeamKeys []string `json:"surrogate_team_keys"`
	DQTeamKeys        []string `json:"dq_team_keys"`
}

// MatchVideo references a match recording.
type MatchVideo struct {
	Type string `json:"type"`
	Key  string `json:"key"`
}

// Zebra is the robot tracking data of a match.
type Zebra struct {
	Key       string                 `json:"key"`
	Times     []float64              `json:"times"`
	Alliances map[string][]ZebraTeam `json:"alliances"`
}

// ZebraTeam is the position track of one robot. Samples without a fix are nil.
type ZebraTeam struct {
	TeamKey string     `json:"team_key"`
	Xs      []*float64 `json:"xs"`
	Ys      []*float64 `json:"ys"`
}
