package client

import (
	"context"
	"encoding/json"

	"github.com/Sternrassler/tba-client/pkg/endpoint"
	"github.com/Sternrassler/tba-client/pkg/model"
)

// Match fetches a match by key ("2023mdbet_qm1") in ModeFull or ModeSimple.
// Timeseries and zebra data are separate operations.
func (c *Client) Match(ctx context.Context, key string, mode Mode) (*model.Match, error) {
	if err := mode.check(ModeFull, ModeSimple); err != nil {
		return nil, err
	}
	if err := checkKey("match", key); err != nil {
		return nil, err
	}
	return withSession(c, func(s *session) (*model.Match, error) {
		return getOne[model.Match](ctx, c, s, endpoint.Build("match",
			endpoint.String("key", key),
			endpoint.Bool("simple", mode == ModeSimple),
		))
	})
}

// MatchTimeseries returns the raw per-frame game data of a match.
func (c *Client) MatchTimeseries(ctx context.Context, key string) ([]json.RawMessage, error) {
	if err := checkKey("match", key); err != nil {
		return nil, err
	}
	return withSession(c, func(s *session) ([]json.RawMessage, error) {
		return getList[json.RawMessage](ctx, c, s, endpoint.Build("match", endpoint.String("key", key), endpoint.Literal("timeseries")))
	})
}

// MatchZebra returns the robot tracking data of a match, or nil when the
// match was not tracked.
func (c *Client) MatchZebra(ctx context.Context, key string) (*model.Zebra, error) {
	if err := checkKey("match", key); err != nil {
		return nil, err
	}
	return withSession(c, func(s *session) (*model.Zebra, error) {
		return getOne[model.Zebra](ctx, c, s, endpoint.Build("match", endpoint.String("key", key), endpoint.Literal("zebra_motionworks")))
	})
}
