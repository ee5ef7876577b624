package client

import (
	"context"
	"net/http"
)

// LienClient covers the statute table, deadline projection and eligibility.
type LienClient struct {
	client *Client
}

// States lists every modeled state plus the DEFAULT fallback.
func (c *LienClient) States(ctx context.Context) ([]StateInfo, error) {
	var resp struct {
		States []StateInfo `json:"states"`
	}
	if err := c.client.do(ctx, http.MethodGet, "/states", nil, &resp); err != nil {
		return nil, err
	}
	return resp.States, nil
}

func (c *LienClient) Deadline(ctx context.Context, req *DeadlineRequest) (*DeadlineResult, error) {
	var out DeadlineResult
	if err := c.client.do(ctx, http.MethodPost, "/lien/deadline", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Deadlines projects a batch; results keep the request order.
func (c *LienClient) Deadlines(ctx context.Context, reqs []DeadlineRequest) ([]DeadlineResult, error) {
	body := struct {
		Requests []DeadlineRequest `json:"requests"`
	}{reqs}
	var resp struct {
		Cases []DeadlineResult `json:"cases"`
	}
	if err := c.client.do(ctx, http.MethodPost, "/lien/deadlines", body, &resp); err != nil {
		return nil, err
	}
	return resp.Cases, nil
}

func (c *LienClient) Eligibility(ctx context.Context, req *EligibilityRequest) (*EligibilityResult, error) {
	var out EligibilityResult
	if err := c.client.do(ctx, http.MethodPost, "/lien/eligibility", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

//Personal.AI order the ending
