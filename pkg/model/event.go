package model

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
)

// Event is a competition event. Simplified responses stop after Year.
type Event struct {
	Key               string    `json:"key"`
	Name              string    `json:"name"`
	EventCode         string    `json:"event_code"`
	EventType         int       `json:"event_type"`
	District          *District `json:"district"`
	City              *string   `json:"city"`
	StateProv         *string   `json:"state_prov"`
	Country           *string   `json:"country"`
	StartDate         *Date     `json:"start_date"`
	EndDate           *Date     `json:"end_date"`
	Year              int       `json:"year"`
	ShortName         *string   `json:"short_name"`
	EventTypeString   *string   `json:"event_type_string"`
	Week              *int      `json:"week"`
	Address           *string   `json:"address"`
	PostalCode        *string   `json:"postal_code"`
	GmapsPlaceID      *string   `json:"gmaps_place_id"`
	GmapsURL          *string   `json:"gmaps_url"`
	Lat               *float64  `json:"lat"`
	Lng               *float64  `json:"lng"`
	LocationName      *string   `json:"location_name"`
	Timezone          *string   `json:"timezone"`
	Website           *string   `json:"website"`
	FirstEventID      *string   `json:"first_event_id"`
	FirstEventCode    *string   `json:"first_event_code"`
	Webcasts          []Webcast `json:"webcasts"`
	DivisionKeys      []string  `json:"division_keys"`
	ParentEventKey    *string   `json:"parent_event_key"`
	PlayoffType       *int      `json:"playoff_type"`
	PlayoffTypeString *string   `json:"playoff_type_string"`
}

// Webcast is a video stream of an event.
type Webcast struct {
	Type    string  `json:"type"`
	Channel string  `json:"channel"`
	Date    *Date   `json:"date"`
	File    *string `json:"file"`
}

// EventAlliance is a playoff alliance at an event.
type EventAlliance struct {
	Name     *string         `json:"name"`
	Backup   *AllianceBackup `json:"backup"`
	Declines []string        `json:"declines"`
	Picks    []string        `json:"picks"`
	Status   *AllianceStatus `json:"status"`
}

// AllianceBackup records a backup robot substitution.
type AllianceBackup struct {
	In  string `json:"in"`
	Out string `json:"out"`
}

// AllianceStatus is the playoff progress of an alliance.
type AllianceStatus struct {
	PlayoffAverage     *float64 `json:"playoff_average"`
	Level              *string  `json:"level"`
	Record             *Record  `json:"record"`
	CurrentLevelRecord *Record  `json:"current_level_record"`
	Status             *string  `json:"status"`
}

// Insights holds season-specific aggregate statistics of an event.
type Insights struct {
	Qual    json.RawMessage `json:"qual"`
	Playoff json.RawMessage `json:"playoff"`
}

// OPR metric names accepted by OPRs.Average.
const (
	MetricOPR  = "opr"
	MetricDPR  = "dpr"
	MetricCCWM = "ccwm"
)

// ErrUnknownMetric is returned by OPRs.Average for unsupported metric names.
var ErrUnknownMetric = errors.New("metric must be either 'opr', 'dpr', or 'ccwm'")

// ErrNoData is returned when an aggregate is requested over no values.
var ErrNoData = errors.New("no data")

// OPRs holds per-team offensive/defensive power ratings keyed by team key.
type OPRs struct {
	OPRs  map[string]float64 `json:"oprs"`
	DPRs  map[string]float64 `json:"dprs"`
	CCWMs map[string]float64 `json:"ccwms"`
}

// Average returns the mean of one metric over all teams. The metric name is
// case-insensitive.
func (o OPRs) Average(metric string) (float64, error) {
	var values map[string]float64
	switch strings.ToLower(metric) {
	case MetricOPR:
		values = o.OPRs
	case MetricDPR:
		values = o.DPRs
	case MetricCCWM:
		values = o.CCWMs
	default:
		return 0, errors.Wrapf(ErrUnknownMetric, "metric %q", metric)
	}
	if len(values) == 0 {
		return 0, errors.Wrapf(ErrNoData, "metric %q", metric)
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), nil
}

// Averages returns the mean of every metric that has data.
func (o OPRs) Averages() map[string]float64 {
	out := make(map[string]float64, 3)
	for _, metric := range []string{MetricOPR, MetricDPR, MetricCCWM} {
		if avg, err := o.Average(metric); err == nil {
			out[metric] = avg
		}
	}
	return out
}

// DistrictPoints holds the district points each team earned at an event.
type DistrictPoints struct {
	Points      map[string]TeamEventPoints `json:"points"`
	Tiebreakers map[string]Tiebreaker      `json:"tiebreakers"`
}

// TeamEventPoints is a team's district point breakdown at an event.
type TeamEventPoints struct {
	Total          int `json:"total"`
	AlliancePoints int `json:"alliance_points"`
	ElimPoints     int `json:"elim_points"`
	AwardPoints    int `json:"award_points"`
	QualPoints     int `json:"qual_points"`
}

// Tiebreaker holds district tiebreaker data for a team.
type Tiebreaker struct {
	HighestQualScores []int `json:"highest_qual_scores"`
	QualWins          int   `json:"qual_wins"`
}

// Ranking is a team's qualification ranking at an event.
type Ranking struct {
	Rank          int         `json:"rank"`
	TeamKey       string      `json:"team_key"`
	DQ            int         `json:"dq"`
	MatchesPlayed int         `json:"matches_played"`
	QualAverage   *float64    `json:"qual_average"`
	Record        *Record     `json:"record"`
	SortOrders    NamedValues `json:"sort_orders"`
	ExtraStats    NamedValues `json:"extra_stats"`
}

// Rankings is the ranking table of an event together with the metadata that
// names its dynamic metrics.
type Rankings struct {
	Rankings       []Ranking    `json:"rankings"`
	SortOrderInfo  []MetricInfo `json:"sort_order_info"`
	ExtraStatsInfo []MetricInfo `json:"extra_stats_info"`
}

type rawRanking struct {
	Rank          int       `json:"rank"`
	TeamKey       string    `json:"team_key"`
	DQ            int       `json:"dq"`
	MatchesPlayed int       `json:"matches_played"`
	QualAverage   *float64  `json:"qual_average"`
	Record        *Record   `json:"record"`
	SortOrders    []float64 `json:"sort_orders"`
	ExtraStats    []float64 `json:"extra_stats"`
}

// UnmarshalJSON decodes the table, then zips every ranking's value lists with
// the metric metadata.
func (r *Rankings) UnmarshalJSON(data []byte) error {
	var raw struct {
		Rankings       []rawRanking `json:"rankings"`
		SortOrderInfo  []MetricInfo `json:"sort_order_info"`
		ExtraStatsInfo []MetricInfo `json:"extra_stats_info"`
	}
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "decode rankings")
	}

	r.SortOrderInfo = raw.SortOrderInfo
	r.ExtraStatsInfo = raw.ExtraStatsInfo
	r.Rankings = make([]Ranking, 0, len(raw.Rankings))
	for _, rr := range raw.Rankings {
		r.Rankings = append(r.Rankings, Ranking{
			Rank:          rr.Rank,
			TeamKey:       rr.TeamKey,
			DQ:            rr.DQ,
			MatchesPlayed: rr.MatchesPlayed,
			QualAverage:   rr.QualAverage,
			Record:        rr.Record,
			SortOrders:    NewNamedValues(rr.SortOrders, raw.SortOrderInfo),
			ExtraStats:    NewNamedValues(rr.ExtraStats, raw.ExtraStatsInfo),
		})
	}
	sort.SliceStable(r.Rankings, func(i, j int) bool { return r.Rankings[i].Rank < r.Rankings[j].Rank })
	return nil
}

// ByTeam returns the ranking of a team key.
func (r Rankings) ByTeam(teamKey string) (Ranking, bool) {
	for _, rk := range r.Rankings {
		if rk.TeamKey == teamKey {
			return rk, true
		}
	}
	return Ranking{}, false
}
