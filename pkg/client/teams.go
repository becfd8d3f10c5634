package client

import (
	"context"
	"sort"
	"strings"

	"github.com/Sternrassler/tba-client/pkg/endpoint"
	"github.com/Sternrassler/tba-client/pkg/fanout"
	"github.com/Sternrassler/tba-client/pkg/model"
)

// TeamsQuery selects a team listing.
type TeamsQuery struct {
	// Page is the 500-team page index. Nil fetches every page up to the
	// configured page ceiling.
	Page *int
	// Years restricts the listing to teams active in the selected seasons.
	// A range is deduplicated and sorted by team number.
	Years fanout.Years
	// Mode is ModeFull or ModeSimple; use TeamKeys for keys.
	Mode Mode
}

type teamPage struct {
	year int // 0 = any year
	page int
}

func checkKey(kind, key string) error {
	if key == "" || strings.ContainsAny(key, "/?#") {
		return invalidArgument("%s key %q", kind, key)
	}
	return nil
}

func checkYears(years fanout.Years, required bool) error {
	if required && years.IsZero() {
		return invalidArgument("a year or year range is required")
	}
	if err := years.Validate(); err != nil {
		return invalidArgument("%v", err)
	}
	return nil
}

func (c *Client) teamPages(q TeamsQuery) []teamPage {
	years := []int{0}
	if !q.Years.IsZero() {
		years = q.Years.List()
	}

	var pages []int
	if q.Page != nil {
		pages = []int{*q.Page}
	} else {
		for p := 0; p < c.fetcher.Config().PageCeiling; p++ {
			pages = append(pages, p)
		}
	}

	units := make([]teamPage, 0, len(years)*len(pages))
	for _, y := range years {
		for _, p := range pages {
			units = append(units, teamPage{year: y, page: p})
		}
	}
	return units
}

func teamsPath(u teamPage, mode Mode) string {
	year := endpoint.Param{}
	if u.year != 0 {
		year = endpoint.Int("year", u.year)
	}
	return endpoint.Build("teams",
		year,
		endpoint.Int("page_num", u.page),
		endpoint.Bool("simple", mode == ModeSimple),
		endpoint.Bool("keys", mode == ModeKeys),
	)
}

func fanoutKind(q TeamsQuery) string {
	if _, single := q.Years.Single(); q.Years.IsZero() || single {
		return fanout.KindPages
	}
	return fanout.KindYears
}

// Team fetches a team by key ("frc4099") in ModeFull or ModeSimple.
func (c *Client) Team(ctx context.Context, key string, mode Mode) (*model.Team, error) {
	if err := mode.check(ModeFull, ModeSimple); err != nil {
		return nil, err
	}
	if err := checkKey("team", key); err != nil {
		return nil, err
	}
	return withSession(c, func(s *session) (*model.Team, error) {
		return getOne[model.Team](ctx, c, s, endpoint.Build("team",
			endpoint.String("key", key),
			endpoint.Bool("simple", mode == ModeSimple),
		))
	})
}

// Teams fetches a team listing. Multi-season listings are deduplicated and
// sorted by team number; otherwise pages are concatenated in order.
func (c *Client) Teams(ctx context.Context, q TeamsQuery) ([]model.Team, error) {
	if err := q.Mode.check(ModeFull, ModeSimple); err != nil {
		return nil, err
	}
	if err := checkYears(q.Years, false); err != nil {
		return nil, err
	}

	return withSession(c, func(s *session) ([]model.Team, error) {
		teams, err := fanout.Gather(ctx, c.fetcher, fanoutKind(q), c.teamPages(q), func(ctx context.Context, u teamPage) ([]model.Team, error) {
			return getList[model.Team](ctx, c, s, teamsPath(u, q.Mode))
		})
		if err != nil {
			return nil, err
		}
		if fanoutKind(q) == fanout.KindYears {
			return model.UniqueTeams(teams), nil
		}
		return teams, nil
	})
}

// TeamKeys fetches a team key listing. Multi-season listings are
// deduplicated and sorted by team number. q.Mode is ignored.
func (c *Client) TeamKeys(ctx context.Context, q TeamsQuery) ([]string, error) {
	if err := checkYears(q.Years, false); err != nil {
		return nil, err
	}

	return withSession(c, func(s *session) ([]string, error) {
		keys, err := fanout.Gather(ctx, c.fetcher, fanoutKind(q), c.teamPages(q), func(ctx context.Context, u teamPage) ([]string, error) {
			return getList[string](ctx, c, s, teamsPath(u, ModeKeys))
		})
		if err != nil {
			return nil, err
		}
		if fanoutKind(q) == fanout.KindYears {
			return model.UniqueTeamKeys(keys), nil
		}
		return keys, nil
	})
}

// TeamYearsParticipated returns the seasons a team competed in.
func (c *Client) TeamYearsParticipated(ctx context.Context, key string) ([]int, error) {
	if err := checkKey("team", key); err != nil {
		return nil, err
	}
	return withSession(c, func(s *session) ([]int, error) {
		return getList[int](ctx, c, s, endpoint.Build("team", endpoint.String("key", key), endpoint.Literal("years_participated")))
	})
}

// TeamDistricts returns the districts a team belonged to, restricted to
// years when set.
func (c *Client) TeamDistricts(ctx context.Context, key string, years fanout.Years) ([]model.District, error) {
	if err := checkKey("team", key); err != nil {
		return nil, err
	}
	if err := checkYears(years, false); err != nil {
		return nil, err
	}
	return withSession(c, func(s *session) ([]model.District, error) {
		districts, err := getList[model.District](ctx, c, s, endpoint.Build("team", endpoint.String("key", key), endpoint.Literal("districts")))
		if err != nil {
			return nil, err
		}
		return filterYears(districts, years, func(d model.District) int { return d.Year }), nil
	})
}

// TeamRobots returns the named robots of a team, restricted to years when set.
func (c *Client) TeamRobots(ctx context.Context, key string, years fanout.Years) ([]model.Robot, error) {
	if err := checkKey("team", key); err != nil {
		return nil, err
	}
	if err := checkYears(years, false); err != nil {
		return nil, err
	}
	return withSession(c, func(s *session) ([]model.Robot, error) {
		robots, err := getList[model.Robot](ctx, c, s, endpoint.Build("team", endpoint.String("key", key), endpoint.Literal("robots")))
		if err != nil {
			return nil, err
		}
		return filterYears(robots, years, func(r model.Robot) int { return r.Year }), nil
	})
}

// TeamAwards returns a team's awards. A single year is scoped by the server;
// a range is fetched once and filtered locally.
func (c *Client) TeamAwards(ctx context.Context, key string, years fanout.Years) ([]model.Award, error) {
	if err := checkKey("team", key); err != nil {
		return nil, err
	}
	if err := checkYears(years, false); err != nil {
		return nil, err
	}

	year := endpoint.Param{}
	if y, ok := years.Single(); ok {
		year = endpoint.Int("year", y)
	}
	return withSession(c, func(s *session) ([]model.Award, error) {
		awards, err := getList[model.Award](ctx, c, s, endpoint.Build("team", endpoint.String("key", key), endpoint.Literal("awards"), year))
		if err != nil {
			return nil, err
		}
		if _, single := years.Single(); single {
			return awards, nil
		}
		return filterYears(awards, years, func(a model.Award) int { return a.Year }), nil
	})
}

func teamEventsPath(key string, year int, mode Mode) string {
	yearParam := endpoint.Param{}
	if year != 0 {
		yearParam = endpoint.Int("year", year)
	}
	return endpoint.Build("team",
		endpoint.String("key", key),
		endpoint.Literal("events"),
		yearParam,
		endpoint.Bool("simple", mode == ModeSimple),
		endpoint.Bool("keys", mode == ModeKeys),
	)
}

// teamEvents fetches every event when years is unset and fans out per season
// otherwise.
func teamEvents[T any](ctx context.Context, c *Client, key string, years fanout.Years, mode Mode) ([]T, error) {
	return withSession(c, func(s *session) ([]T, error) {
		if years.IsZero() {
			return getList[T](ctx, c, s, teamEventsPath(key, 0, mode))
		}
		return fanout.ByYear(ctx, c.fetcher, years, func(ctx context.Context, year int) ([]T, error) {
			return getList[T](ctx, c, s, teamEventsPath(key, year, mode))
		})
	})
}

// TeamEvents returns the events a team attended in ModeFull or ModeSimple.
func (c *Client) TeamEvents(ctx context.Context, key string, years fanout.Years, mode Mode) ([]model.Event, error) {
	if err := mode.check(ModeFull, ModeSimple); err != nil {
		return nil, err
	}
	if err := checkKey("team", key); err != nil {
		return nil, err
	}
	if err := checkYears(years, false); err != nil {
		return nil, err
	}
	return teamEvents[model.Event](ctx, c, key, years, mode)
}

// TeamEventKeys returns the keys of the events a team attended.
func (c *Client) TeamEventKeys(ctx context.Context, key string, years fanout.Years) ([]string, error) {
	if err := checkKey("team", key); err != nil {
		return nil, err
	}
	if err := checkYears(years, false); err != nil {
		return nil, err
	}
	return teamEvents[string](ctx, c, key, years, ModeKeys)
}

// TeamEventStatuses returns the team's status at every event of a season,
// ordered by event key. Events without a status are skipped.
func (c *Client) TeamEventStatuses(ctx context.Context, key string, year int) ([]model.EventTeamStatus, error) {
	if err := checkKey("team", key); err != nil {
		return nil, err
	}
	if year <= 0 {
		return nil, invalidArgument("statuses require a year")
	}

	return withSession(c, func(s *session) ([]model.EventTeamStatus, error) {
		var byEvent map[string]*model.EventTeamStatus
		path := endpoint.Build("team", endpoint.String("key", key), endpoint.Literal("events"), endpoint.Int("year", year), endpoint.Literal("statuses"))
		if err := c.getJSON(ctx, s, path, &byEvent); err != nil {
			return nil, err
		}

		out := make([]model.EventTeamStatus, 0, len(byEvent))
		for eventKey, status := range byEvent {
			if status == nil {
				continue
			}
			status.EventKey = eventKey
			out = append(out, *status)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].EventKey < out[j].EventKey })
		return out, nil
	})
}

func teamMatchesPath(key string, year int, mode Mode) string {
	return endpoint.Build("team",
		endpoint.String("key", key),
		endpoint.Literal("matches"),
		endpoint.Int("year", year),
		endpoint.Bool("simple", mode == ModeSimple),
		endpoint.Bool("keys", mode == ModeKeys),
	)
}

// TeamMatches returns a team's matches in the selected seasons.
func (c *Client) TeamMatches(ctx context.Context, key string, years fanout.Years, mode Mode) ([]model.Match, error) {
	if err := mode.check(ModeFull, ModeSimple); err != nil {
		return nil, err
	}
	if err := checkKey("team", key); err != nil {
		return nil, err
	}
	if err := checkYears(years, true); err != nil {
		return nil, err
	}
	return withSession(c, func(s *session) ([]model.Match, error) {
		return fanout.ByYear(ctx, c.fetcher, years, func(ctx context.Context, year int) ([]model.Match, error) {
			return getList[model.Match](ctx, c, s, teamMatchesPath(key, year, mode))
		})
	})
}

// TeamMatchKeys returns the keys of a team's matches in the selected seasons.
func (c *Client) TeamMatchKeys(ctx context.Context, key string, years fanout.Years) ([]string, error) {
	if err := checkKey("team", key); err != nil {
		return nil, err
	}
	if err := checkYears(years, true); err != nil {
		return nil, err
	}
	return withSession(c, func(s *session) ([]string, error) {
		return fanout.ByYear(ctx, c.fetcher, years, func(ctx context.Context, year int) ([]string, error) {
			return getList[string](ctx, c, s, teamMatchesPath(key, year, ModeKeys))
		})
	})
}

// TeamMedia returns a team's media in the selected seasons, optionally only
// media carrying tag (e.g. "avatar").
func (c *Client) TeamMedia(ctx context.Context, key string, years fanout.Years, tag string) ([]model.Media, error) {
	if err := checkKey("team", key); err != nil {
		return nil, err
	}
	if err := checkYears(years, true); err != nil {
		return nil, err
	}

	return withSession(c, func(s *session) ([]model.Media, error) {
		return fanout.ByYear(ctx, c.fetcher, years, func(ctx context.Context, year int) ([]model.Media, error) {
			path := endpoint.Build("team",
				endpoint.String("key", key),
				endpoint.Literal("media"),
				endpoint.Bool("tag", tag != ""),
				endpoint.OptString("media_tag", optional(tag)),
				endpoint.Int("year", year),
			)
			return getList[model.Media](ctx, c, s, path)
		})
	})
}

// TeamSocialMedia returns a team's registered social media accounts.
func (c *Client) TeamSocialMedia(ctx context.Context, key string) ([]model.Media, error) {
	if err := checkKey("team", key); err != nil {
		return nil, err
	}
	return withSession(c, func(s *session) ([]model.Media, error) {
		return getList[model.Media](ctx, c, s, endpoint.Build("team", endpoint.String("key", key), endpoint.Literal("social_media")))
	})
}

func teamEventPath(teamKey, eventKey, sub string, mode Mode) string {
	return endpoint.Build("team",
		endpoint.String("key", teamKey),
		endpoint.Literal("event"),
		endpoint.String("event_key", eventKey),
		endpoint.Literal(sub),
		endpoint.Bool("simple", mode == ModeSimple),
		endpoint.Bool("keys", mode == ModeKeys),
	)
}

func checkTeamEvent(teamKey, eventKey string) error {
	if err := checkKey("team", teamKey); err != nil {
		return err
	}
	return checkKey("event", eventKey)
}

// TeamEventMatches returns the matches a team played at an event.
func (c *Client) TeamEventMatches(ctx context.Context, teamKey, eventKey string, mode Mode) ([]model.Match, error) {
	if err := mode.check(ModeFull, ModeSimple); err != nil {
		return nil, err
	}
	if err := checkTeamEvent(teamKey, eventKey); err != nil {
		return nil, err
	}
	return withSession(c, func(s *session) ([]model.Match, error) {
		return getList[model.Match](ctx, c, s, teamEventPath(teamKey, eventKey, "matches", mode))
	})
}

// TeamEventMatchKeys returns the keys of the matches a team played at an event.
func (c *Client) TeamEventMatchKeys(ctx context.Context, teamKey, eventKey string) ([]string, error) {
	if err := checkTeamEvent(teamKey, eventKey); err != nil {
		return nil, err
	}
	return withSession(c, func(s *session) ([]string, error) {
		return getList[string](ctx, c, s, teamEventPath(teamKey, eventKey, "matches", ModeKeys))
	})
}

// TeamEventAwards returns the awards a team won at an event.
func (c *Client) TeamEventAwards(ctx context.Context, teamKey, eventKey string) ([]model.Award, error) {
	if err := checkTeamEvent(teamKey, eventKey); err != nil {
		return nil, err
	}
	return withSession(c, func(s *session) ([]model.Award, error) {
		return getList[model.Award](ctx, c, s, teamEventPath(teamKey, eventKey, "awards", ModeFull))
	})
}

// TeamEventStatus returns a team's status at an event, or nil when TBA has
// none.
func (c *Client) TeamEventStatus(ctx context.Context, teamKey, eventKey string) (*model.EventTeamStatus, error) {
	if err := checkTeamEvent(teamKey, eventKey); err != nil {
		return nil, err
	}
	return withSession(c, func(s *session) (*model.EventTeamStatus, error) {
		status, err := getOne[model.EventTeamStatus](ctx, c, s, teamEventPath(teamKey, eventKey, "status", ModeFull))
		if err != nil || status == nil {
			return nil, err
		}
		status.EventKey = eventKey
		return status, nil
	})
}

func filterYears[T any](items []T, years fanout.Years, year func(T) int) []T {
	if years.IsZero() {
		return items
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		if years.Contains(year(item)) {
			out = append(out, item)
		}
	}
	return out
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
