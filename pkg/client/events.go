package client

import (
	"context"
	"encoding/json"

	"github.com/Sternrassler/tba-client/pkg/endpoint"
	"github.com/Sternrassler/tba-client/pkg/fanout"
	"github.com/Sternrassler/tba-client/pkg/model"
)

func eventPath(key string, params ...endpoint.Param) string {
	return endpoint.Build("event", append([]endpoint.Param{endpoint.String("key", key)}, params...)...)
}

func eventsPath(year int, mode Mode) string {
	return endpoint.Build("events",
		endpoint.Int("year", year),
		endpoint.Bool("simple", mode == ModeSimple),
		endpoint.Bool("keys", mode == ModeKeys),
	)
}

// Event fetches an event by key ("2023mdbet") in ModeFull or ModeSimple.
func (c *Client) Event(ctx context.Context, key string, mode Mode) (*model.Event, error) {
	if err := mode.check(ModeFull, ModeSimple); err != nil {
		return nil, err
	}
	if err := checkKey("event", key); err != nil {
		return nil, err
	}
	return withSession(c, func(s *session) (*model.Event, error) {
		return getOne[model.Event](ctx, c, s, eventPath(key, endpoint.Bool("simple", mode == ModeSimple)))
	})
}

// Events returns the events of the selected seasons in season order.
func (c *Client) Events(ctx context.Context, years fanout.Years, mode Mode) ([]model.Event, error) {
	if err := mode.check(ModeFull, ModeSimple); err != nil {
		return nil, err
	}
	if err := checkYears(years, true); err != nil {
		return nil, err
	}
	return withSession(c, func(s *session) ([]model.Event, error) {
		return fanout.ByYear(ctx, c.fetcher, years, func(ctx context.Context, year int) ([]model.Event, error) {
			return getList[model.Event](ctx, c, s, eventsPath(year, mode))
		})
	})
}

// EventKeys returns the event keys of the selected seasons in season order.
func (c *Client) EventKeys(ctx context.Context, years fanout.Years) ([]string, error) {
	if err := checkYears(years, true); err != nil {
		return nil, err
	}
	return withSession(c, func(s *session) ([]string, error) {
		return fanout.ByYear(ctx, c.fetcher, years, func(ctx context.Context, year int) ([]string, error) {
			return getList[string](ctx, c, s, eventsPath(year, ModeKeys))
		})
	})
}

// EventAlliances returns the playoff alliances of an event.
func (c *Client) EventAlliances(ctx context.Context, key string) ([]model.EventAlliance, error) {
	if err := checkKey("event", key); err != nil {
		return nil, err
	}
	return withSession(c, func(s *session) ([]model.EventAlliance, error) {
		return getList[model.EventAlliance](ctx, c, s, eventPath(key, endpoint.Literal("alliances")))
	})
}

// EventAwards returns the awards given at an event.
func (c *Client) EventAwards(ctx context.Context, key string) ([]model.Award, error) {
	if err := checkKey("event", key); err != nil {
		return nil, err
	}
	return withSession(c, func(s *session) ([]model.Award, error) {
		return getList[model.Award](ctx, c, s, eventPath(key, endpoint.Literal("awards")))
	})
}

// EventInsights returns the aggregate statistics of an event, or nil when
// TBA has none.
func (c *Client) EventInsights(ctx context.Context, key string) (*model.Insights, error) {
	if err := checkKey("event", key); err != nil {
		return nil, err
	}
	return withSession(c, func(s *session) (*model.Insights, error) {
		return getOne[model.Insights](ctx, c, s, eventPath(key, endpoint.Literal("insights")))
	})
}

// EventOPRs returns the power ratings of an event. Missing data yields empty
// maps.
func (c *Client) EventOPRs(ctx context.Context, key string) (*model.OPRs, error) {
	if err := checkKey("event", key); err != nil {
		return nil, err
	}
	return withSession(c, func(s *session) (*model.OPRs, error) {
		oprs, err := getOne[model.OPRs](ctx, c, s, eventPath(key, endpoint.Literal("oprs")))
		if err != nil {
			return nil, err
		}
		if oprs == nil {
			oprs = &model.OPRs{}
		}
		if oprs.OPRs == nil {
			oprs.OPRs = map[string]float64{}
		}
		if oprs.DPRs == nil {
			oprs.DPRs = map[string]float64{}
		}
		if oprs.CCWMs == nil {
			oprs.CCWMs = map[string]float64{}
		}
		return oprs, nil
	})
}

// EventPredictions returns the raw prediction payload of an event; its shape
// changes every season.
func (c *Client) EventPredictions(ctx context.Context, key string) (json.RawMessage, error) {
	if err := checkKey("event", key); err != nil {
		return nil, err
	}
	return withSession(c, func(s *session) (json.RawMessage, error) {
		var raw json.RawMessage
		if err := c.getJSON(ctx, s, eventPath(key, endpoint.Literal("predictions")), &raw); err != nil {
			return nil, err
		}
		return raw, nil
	})
}

// EventRankings returns the ranking table of an event, or nil when TBA has
// none.
func (c *Client) EventRankings(ctx context.Context, key string) (*model.Rankings, error) {
	if err := checkKey("event", key); err != nil {
		return nil, err
	}
	return withSession(c, func(s *session) (*model.Rankings, error) {
		return getOne[model.Rankings](ctx, c, s, eventPath(key, endpoint.Literal("rankings")))
	})
}

// EventDistrictPoints returns the district points earned at an event, or nil
// for non-district events.
func (c *Client) EventDistrictPoints(ctx context.Context, key string) (*model.DistrictPoints, error) {
	if err := checkKey("event", key); err != nil {
		return nil, err
	}
	return withSession(c, func(s *session) (*model.DistrictPoints, error) {
		return getOne[model.DistrictPoints](ctx, c, s, eventPath(key, endpoint.Literal("district_points")))
	})
}

// EventTeams returns the teams attending an event in ModeFull or ModeSimple.
func (c *Client) EventTeams(ctx context.Context, key string, mode Mode) ([]model.Team, error) {
	if err := mode.check(ModeFull, ModeSimple); err != nil {
		return nil, err
	}
	if err := checkKey("event", key); err != nil {
		return nil, err
	}
	return withSession(c, func(s *session) ([]model.Team, error) {
		return getList[model.Team](ctx, c, s, eventPath(key, endpoint.Literal("teams"), endpoint.Bool("simple", mode == ModeSimple)))
	})
}

// EventTeamKeys returns the keys of the teams attending an event.
func (c *Client) EventTeamKeys(ctx context.Context, key string) ([]string, error) {
	if err := checkKey("event", key); err != nil {
		return nil, err
	}
	return withSession(c, func(s *session) ([]string, error) {
		return getList[string](ctx, c, s, eventPath(key, endpoint.Literal("teams"), endpoint.Literal("keys")))
	})
}

// EventMatches returns the matches of an event in ModeFull or ModeSimple.
func (c *Client) EventMatches(ctx context.Context, key string, mode Mode) ([]model.Match, error) {
	if err := mode.check(ModeFull, ModeSimple); err != nil {
		return nil, err
	}
	if err := checkKey("event", key); err != nil {
		return nil, err
	}
	return withSession(c, func(s *session) ([]model.Match, error) {
		return getList[model.Match](ctx, c, s, eventPath(key, endpoint.Literal("matches"), endpoint.Bool("simple", mode == ModeSimple)))
	})
}

// EventMatchKeys returns the keys of the matches of an event.
func (c *Client) EventMatchKeys(ctx context.Context, key string) ([]string, error) {
	if err := checkKey("event", key); err != nil {
		return nil, err
	}
	return withSession(c, func(s *session) ([]string, error) {
		return getList[string](ctx, c, s, eventPath(key, endpoint.Literal("matches"), endpoint.Literal("keys")))
	})
}
