package api

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rickgao/eedraws/internal/model"
)

// RoundsResult holds the normalized draws and the raw body they came from.
type RoundsResult struct {
	Draws []model.Draw
	Raw   []byte
}

// FetchRounds fetches the rounds feed. Draws are returned in feed order,
// which is not guaranteed to be chronological.
func (c *Client) FetchRounds(ctx context.Context) (*RoundsResult, error) {
	body, err := c.doRequest(ctx)
	if err != nil {
		return nil, err
	}

	var resp RoundsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &ParseError{URL: c.url, Err: err}
	}
	if resp.Rounds == nil {
		return nil, &ParseError{URL: c.url, Err: errors.New(`missing "rounds" key`)}
	}

	draws := resp.ToModel()
	c.logger.Debug("fetched rounds",
		"url", c.url,
		"rounds", len(draws),
		"bytes", len(body),
	)

	return &RoundsResult{Draws: draws, Raw: body}, nil
}

// GetRounds fetches the rounds feed and returns only the normalized draws.
func (c *Client) GetRounds(ctx context.Context) ([]model.Draw, error) {
	res, err := c.FetchRounds(ctx)
	if err != nil {
		return nil, err
	}
	return res.Draws, nil
}
