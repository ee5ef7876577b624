package client

import (
	"context"
	"mime"
	"net/http"

	"github.com/turtacn/LienPilot/pkg/errors"
)

// CollectionsClient covers collection sequences and lien status exports.
type CollectionsClient struct {
	client *Client
}

func (c *CollectionsClient) Sequence(ctx context.Context, in *SequenceInput) (*Sequence, error) {
	var out Sequence
	if err := c.client.do(ctx, http.MethodPost, "/sequences", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Export returns the summary and rows. With req.Store set the rows are
// omitted and the stored object is named instead.
func (c *CollectionsClient) Export(ctx context.Context, req *ExportRequest) (*Export, error) {
	if req == nil {
		return nil, errors.InvalidParam("export request is required")
	}
	var out Export
	if err := c.client.do(ctx, http.MethodPost, "/exports", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExportCSV returns the export as CSV bytes.
func (c *CollectionsClient) ExportCSV(ctx context.Context, req *ExportRequest) ([]byte, error) {
	if req == nil {
		return nil, errors.InvalidParam("export request is required")
	}
	if req.Store {
		return nil, errors.InvalidParam("stored exports are returned as JSON; use Export")
	}
	resp, err := c.client.send(ctx, http.MethodPost, "/exports?format=csv", req, "text/csv")
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// filenameFrom extracts the filename parameter of a Content-Disposition.
func filenameFrom(disposition string) string {
	if disposition == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return ""
	}
	return params["filename"]
}

//Personal.AI order the ending
