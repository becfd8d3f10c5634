package client

import (
	"context"

	"github.com/Sternrassler/tba-client/pkg/endpoint"
	"github.com/Sternrassler/tba-client/pkg/model"
)

// Status returns the state of the TBA API.
func (c *Client) Status(ctx context.Context) (*model.APIStatus, error) {
	return withSession(c, func(s *session) (*model.APIStatus, error) {
		return getOne[model.APIStatus](ctx, c, s, endpoint.Build("status"))
	})
}
