package model

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// TeamKeyPrefix is the league tag prepended to team numbers in team keys.
const TeamKeyPrefix = "frc"

// ErrInvalidKey is returned when a key does not have the expected shape.
var ErrInvalidKey = errors.New("invalid key")

// Team is a competition team. Simplified responses leave every field after
// StateProv/Country unset.
type Team struct {
	Key              string            `json:"key"`
	TeamNumber       int               `json:"team_number"`
	Nickname         string            `json:"nickname"`
	Name             string            `json:"name"`
	SchoolName       *string           `json:"school_name"`
	City             *string           `json:"city"`
	StateProv        *string           `json:"state_prov"`
	Country          *string           `json:"country"`
	Address          *string           `json:"address"`
	PostalCode       *string           `json:"postal_code"`
	GmapsPlaceID     *string           `json:"gmaps_place_id"`
	GmapsURL         *string           `json:"gmaps_url"`
	Lat              *float64          `json:"lat"`
	Lng              *float64          `json:"lng"`
	LocationName     *string           `json:"location_name"`
	Website          *string           `json:"website"`
	RookieYear       *int              `json:"rookie_year"`
	Motto            *string           `json:"motto"`
	HomeChampionship map[string]string `json:"home_championship"`
}

// ID returns the identity of the team, its number.
func (t Team) ID() int {
	return t.TeamNumber
}

// Equal reports whether both records describe the same team number,
// regardless of any other field.
func (t Team) Equal(other Team) bool {
	return t.TeamNumber == other.TeamNumber
}

// Less orders teams by number.
func (t Team) Less(other Team) bool {
	return t.TeamNumber < other.TeamNumber
}

// UniqueTeams returns teams deduplicated by number and sorted ascending.
// The first occurrence of each number wins.
func UniqueTeams(teams []Team) []Team {
	seen := make(map[int]struct{}, len(teams))
	out := make([]Team, 0, len(teams))
	for _, t := range teams {
		if _, ok := seen[t.ID()]; ok {
			continue
		}
		seen[t.ID()] = struct{}{}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// UniqueTeamKeys returns keys deduplicated and sorted by team number. Keys
// that do not parse sort after all valid keys, lexically.
func UniqueTeamKeys(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}

	sort.SliceStable(out, func(i, j int) bool {
		ni, erri := ParseTeamKey(out[i])
		nj, errj := ParseTeamKey(out[j])
		switch {
		case erri == nil && errj == nil:
			return ni < nj
		case erri == nil:
			return true
		case errj == nil:
			return false
		default:
			return out[i] < out[j]
		}
	})
	return out
}

// TeamKey returns the key of a team number, e.g. 4099 -> "frc4099".
func TeamKey(number int) string {
	return fmt.Sprintf("%s%d", TeamKeyPrefix, number)
}

// ParseTeamKey returns the team number of a key such as "frc4099".
func ParseTeamKey(key string) (int, error) {
	digits, ok := strings.CutPrefix(key, TeamKeyPrefix)
	if !ok || digits == "" {
		return 0, errors.Wrapf(ErrInvalidKey, "team key %q", key)
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 0 {
		return 0, errors.Wrapf(ErrInvalidKey, "team key %q", key)
	}
	return n, nil
}

// Robot is a named robot of a team for one season.
type Robot struct {
	Year      int    `json:"year"`
	RobotName string `json:"robot_name"`
	Key       string `json:"key"`
	TeamKey   string `json:"team_key"`
}

// Award is an award given at an event.
type Award struct {
	Name          string           `json:"name"`
	AwardType     int              `json:"award_type"`
	EventKey      string           `json:"event_key"`
	RecipientList []AwardRecipient `json:"recipient_list"`
	Year          int              `json:"year"`
}

// AwardRecipient is a team and/or person receiving an award.
type AwardRecipient struct {
	TeamKey *string `json:"team_key"`
	Awardee *string `json:"awardee"`
}

// Media is a piece of team media or a social media account.
type Media struct {
	Type       string          `json:"type"`
	ForeignKey string          `json:"foreign_key"`
	Details    json.RawMessage `json:"details"`
	Preferred  bool            `json:"preferred"`
	TeamKeys   []string        `json:"team_keys"`
	DirectURL  *string         `json:"direct_url"`
	ViewURL    *string         `json:"view_url"`
}
