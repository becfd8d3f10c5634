package client

import (
	"context"

	"github.com/Sternrassler/tba-client/pkg/endpoint"
	"github.com/Sternrassler/tba-client/pkg/fanout"
	"github.com/Sternrassler/tba-client/pkg/model"
)

func districtPath(key, sub string, mode Mode) string {
	return endpoint.Build("district",
		endpoint.String("key", key),
		endpoint.Literal(sub),
		endpoint.Bool("simple", mode == ModeSimple),
		endpoint.Bool("keys", mode == ModeKeys),
	)
}

// Districts returns the districts of the selected seasons in season order.
func (c *Client) Districts(ctx context.Context, years fanout.Years) ([]model.District, error) {
	if err := checkYears(years, true); err != nil {
		return nil, err
	}
	return withSession(c, func(s *session) ([]model.District, error) {
		return fanout.ByYear(ctx, c.fetcher, years, func(ctx context.Context, year int) ([]model.District, error) {
			return getList[model.District](ctx, c, s, endpoint.Build("districts", endpoint.Int("year", year)))
		})
	})
}

// DistrictEvents returns the events of a district ("2022chs").
func (c *Client) DistrictEvents(ctx context.Context, key string, mode Mode) ([]model.Event, error) {
	if err := mode.check(ModeFull, ModeSimple); err != nil {
		return nil, err
	}
	if err := checkKey("district", key); err != nil {
		return nil, err
	}
	return withSession(c, func(s *session) ([]model.Event, error) {
		return getList[model.Event](ctx, c, s, districtPath(key, "events", mode))
	})
}

// DistrictEventKeys returns the event keys of a district.
func (c *Client) DistrictEventKeys(ctx context.Context, key string) ([]string, error) {
	if err := checkKey("district", key); err != nil {
		return nil, err
	}
	return withSession(c, func(s *session) ([]string, error) {
		return getList[string](ctx, c, s, districtPath(key, "events", ModeKeys))
	})
}

// DistrictTeams returns the teams of a district.
func (c *Client) DistrictTeams(ctx context.Context, key string, mode Mode) ([]model.Team, error) {
	if err := mode.check(ModeFull, ModeSimple); err != nil {
		return nil, err
	}
	if err := checkKey("district", key); err != nil {
		return nil, err
	}
	return withSession(c, func(s *session) ([]model.Team, error) {
		return getList[model.Team](ctx, c, s, districtPath(key, "teams", mode))
	})
}

// DistrictTeamKeys returns the team keys of a district.
func (c *Client) DistrictTeamKeys(ctx context.Context, key string) ([]string, error) {
	if err := checkKey("district", key); err != nil {
		return nil, err
	}
	return withSession(c, func(s *session) ([]string, error) {
		return getList[string](ctx, c, s, districtPath(key, "teams", ModeKeys))
	})
}

// DistrictRankings returns the point standings of a district.
func (c *Client) DistrictRankings(ctx context.Context, key string) ([]model.DistrictRanking, error) {
	if err := checkKey("district", key); err != nil {
		return nil, err
	}
	return withSession(c, func(s *session) ([]model.DistrictRanking, error) {
		return getList[model.DistrictRanking](ctx, c, s, districtPath(key, "rankings", ModeFull))
	})
}
