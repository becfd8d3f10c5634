package model

import (
	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
)

// EventTeamStatus is a team's standing at one event.
type EventTeamStatus struct {
	EventKey          string          `json:"event_key"`
	Qual              *QualStatus     `json:"qual"`
	Alliance          *TeamAlliance   `json:"alliance"`
	Playoff           *AllianceStatus `json:"playoff"`
	AllianceStatusStr string          `json:"alliance_status_str"`
	PlayoffStatusStr  string          `json:"playoff_status_str"`
	OverallStatusStr  string          `json:"overall_status_str"`
	NextMatchKey      *string         `json:"next_match_key"`
	LastMatchKey      *string         `json:"last_match_key"`
}

// TeamAlliance is the playoff alliance a team was on.
type TeamAlliance struct {
	Name   *string         `json:"name"`
	Number int             `json:"number"`
	Backup *AllianceBackup `json:"backup"`
	Pick   int             `json:"pick"`
}

// QualStatus is the qualification block of an EventTeamStatus.
type QualStatus struct {
	NumTeams      int          `json:"num_teams"`
	Status        string       `json:"status"`
	Ranking       *QualRanking `json:"ranking"`
	SortOrderInfo []MetricInfo `json:"sort_order_info"`
}

// QualRanking is a team's qualification ranking with named sort orders.
type QualRanking struct {
	Rank          *int        `json:"rank"`
	TeamKey       string      `json:"team_key"`
	DQ            int         `json:"dq"`
	MatchesPlayed int         `json:"matches_played"`
	QualAverage   *float64    `json:"qual_average"`
	Record        *Record     `json:"record"`
	SortOrders    NamedValues `json:"sort_orders"`
}

// UnmarshalJSON decodes the block and names the ranking's sort orders from
// sort_order_info.
func (q *QualStatus) UnmarshalJSON(data []byte) error {
	var raw struct {
		NumTeams int    `json:"num_teams"`
		Status   string `json:"status"`
		Ranking  *struct {
			Rank          *int      `json:"rank"`
			TeamKey       string    `json:"team_key"`
			DQ            int       `json:"dq"`
			MatchesPlayed int       `json:"matches_played"`
			QualAverage   *float64  `json:"qual_average"`
			Record        *Record   `json:"record"`
			SortOrders    []float64 `json:"sort_orders"`
		} `json:"ranking"`
		SortOrderInfo []MetricInfo `json:"sort_order_info"`
	}
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "decode qual status")
	}

	q.NumTeams = raw.NumTeams
	q.Status = raw.Status
	q.SortOrderInfo = raw.SortOrderInfo
	q.Ranking = nil
	if raw.Ranking != nil {
		q.Ranking = &QualRanking{
			Rank:          raw.Ranking.Rank,
			TeamKey:       raw.Ranking.TeamKey,
			DQ:            raw.Ranking.DQ,
			MatchesPlayed: raw.Ranking.MatchesPlayed,
			QualAverage:   raw.Ranking.QualAverage,
			Record:        raw.Ranking.Record,
			SortOrders:    NewNamedValues(raw.Ranking.SortOrders, raw.SortOrderInfo),
		}
	}
	return nil
}
