package model

import (
	"fmt"
	"strconv"

	"github.com/cockroachdb/errors"
)

// District is a regional grouping of teams for one season.
type District struct {
	Abbreviation string `json:"abbreviation"`
	DisplayName  string `json:"display_name"`
	Key          string `json:"key"`
	Year         int    `json:"year"`
}

// DistrictKey returns the key of a district, e.g. (2022, "chs") -> "2022chs".
func DistrictKey(year int, abbreviation string) string {
	return fmt.Sprintf("%d%s", year, abbreviation)
}

// ParseDistrictKey splits a district key into its year and abbreviation.
// The display name is left empty.
func ParseDistrictKey(key string) (District, error) {
	if len(key) <= 4 {
		return District{}, errors.Wrapf(ErrInvalidKey, "district key %q", key)
	}
	year, err := strconv.Atoi(key[:4])
	if err != nil {
		return District{}, errors.Wrapf(ErrInvalidKey, "district key %q", key)
	}
	return District{
		Abbreviation: key[4:],
		Key:          key,
		Year:         year,
	}, nil
}

// DistrictRanking is a team's standing within a district.
type DistrictRanking struct {
	TeamKey     string               `json:"team_key"`
	Rank        int                  `json:"rank"`
	RookieBonus int                  `json:"rookie_bonus"`
	PointTotal  int                  `json:"point_total"`
	EventPoints []DistrictEventScore `json:"event_points"`
}

// DistrictEventScore is the district point breakdown a team earned at one event.
type DistrictEventScore struct {
	EventKey       string `json:"event_key"`
	DistrictCMP    bool   `json:"district_cmp"`
	Total          int    `json:"total"`
	AlliancePoints int    `json:"alliance_points"`
	ElimPoints     int    `json:"elim_points"`
	AwardPoints    int    `json:"award_points"`
	QualPoints     int    `json:"qual_points"`
}
