package client

import (
	"context"
	"net/http"
	"strconv"

	"github.com/turtacn/LienPilot/pkg/errors"
)

// NoticesClient covers notice-of-intent advice, letters and documents.
type NoticesClient struct {
	client *Client
}

func (c *NoticesClient) Advise(ctx context.Context, req *AdviceRequest) (*AdviceResult, error) {
	var out AdviceResult
	if err := c.client.do(ctx, http.MethodPost, "/noi/advise", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *NoticesClient) Letter(ctx context.Context, req *NoticeRequest) (*LetterResult, error) {
	var out LetterResult
	if err := c.client.do(ctx, http.MethodPost, "/noi/letter", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Render returns the PDF inline. req.Store must be false; use
// RenderAndStore to keep the document server side.
func (c *NoticesClient) Render(ctx context.Context, req *RenderRequest) (*Document, error) {
	if req == nil {
		return nil, errors.InvalidParam("render request is required")
	}
	if req.Store {
		return nil, errors.InvalidParam("use RenderAndStore for stored documents")
	}
	resp, err := c.client.send(ctx, http.MethodPost, "/noi/render", req, "application/pdf")
	if err != nil {
		return nil, err
	}
	doc := &Document{
		Filename:    filenameFrom(resp.Header.Get("Content-Disposition")),
		ContentType: resp.Header.Get("Content-Type"),
		Data:        resp.Body,
	}
	doc.Pages, _ = strconv.Atoi(resp.Header.Get("X-Document-Pages"))
	doc.Cached, _ = strconv.ParseBool(resp.Header.Get("X-Document-Cached"))
	return doc, nil
}

// RenderAndStore renders, uploads and returns the stored object.
func (c *NoticesClient) RenderAndStore(ctx context.Context, req *RenderRequest) (*StoredDocument, error) {
	if req == nil {
		return nil, errors.InvalidParam("render request is required")
	}
	body := *req
	body.Store = true
	var out StoredDocument
	if err := c.client.do(ctx, http.MethodPost, "/noi/render", &body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

//Personal.AI order the ending
