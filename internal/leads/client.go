// Package leads mediates every read and write of lead records. Each call is a
// single request scoped to the session's organisation; callers own any
// caching.
package leads

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/kingrea/leads-admin/internal/lead"
	"github.com/kingrea/leads-admin/internal/session"
	"github.com/kingrea/leads-admin/internal/transport"
)

// ListResponse is the body of GET /organisations/{id}/leads.
type ListResponse struct {
	Status string      `json:"status"`
	Count  int         `json:"count"`
	Data   []lead.Lead `json:"data"`
}

// Client is the leads API client. It holds no lead state of its own.
type Client struct {
	doer   transport.Doer
	users  session.UserProvider
	logger *zap.Logger
}

// Option customizes client construction.
type Option func(*Client)

// WithLogger overrides the default no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient builds a client over doer. users supplies the organisation that
// scopes List.
func NewClient(doer transport.Doer, users session.UserProvider, opts ...Option) *Client {
	c := &Client{
		doer:   doer,
		users:  users,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// List returns the leads of the current user's organisation. It fails with
// ErrAuthentication, without calling the API, when no usable session exists.
func (c *Client) List(ctx context.Context) ([]lead.Lead, error) {
	var user *session.User
	if c.users != nil {
		user = c.users.StoredUser()
	}
	if user == nil || user.OrganisationID == 0 {
		err := fmt.Errorf("leads %s: %w", OpList, ErrAuthentication)
		c.logger.Error("list leads", zap.String("op", string(OpList)), zap.Error(err))
		return nil, err
	}
	res := transport.Decode[ListResponse](c.doer.Do(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/organisations/%d/leads", user.OrganisationID),
	}))
	body, err := res.Unwrap()
	if err != nil {
		return nil, c.fail(OpList, err)
	}
	if body.Data == nil {
		return []lead.Lead{}, nil
	}
	return body.Data, nil
}

// Create stores a new lead and returns it with its server-assigned id and
// timestamps.
func (c *Client) Create(ctx context.Context, payload lead.CreateLeadPayload) (lead.Lead, error) {
	res := transport.Decode[lead.Lead](c.doer.Do(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   "/leads",
		Body:   payload,
	}))
	created, err := res.Unwrap()
	if err == nil && created.ID == 0 {
		err = errMissingID
	}
	if err != nil {
		return lead.Lead{}, c.fail(OpCreate, err)
	}
	return created, nil
}

// Update applies a partial update to lead id and returns the stored result.
func (c *Client) Update(ctx context.Context, id int64, payload lead.UpdatePayload) (lead.Lead, error) {
	res := transport.Decode[lead.Lead](c.doer.Do(ctx, transport.Request{
		Method: http.MethodPut,
		Path:   fmt.Sprintf("/leads/%d", id),
		Body:   payload,
	}))
	updated, err := res.Unwrap()
	if err == nil && updated.ID == 0 {
		err = errMissingID
	}
	if err != nil {
		return lead.Lead{}, c.fail(OpUpdate, err, zap.Int64("lead_id", id))
	}
	return updated, nil
}

// Delete removes lead id remotely.
func (c *Client) Delete(ctx context.Context, id int64) error {
	res := c.doer.Do(ctx, transport.Request{
		Method: http.MethodDelete,
		Path:   fmt.Sprintf("/leads/%d", id),
	})
	if _, err := res.Unwrap(); err != nil {
		return c.fail(OpDelete, err, zap.Int64("lead_id", id))
	}
	return nil
}

// fail logs a failed operation once and converts it into an *OpError.
func (c *Client) fail(op Op, cause error, fields ...zap.Field) error {
	message := opFallbacks[op]
	var terr *transport.Error
	if errors.As(cause, &terr) && (terr.Kind == transport.KindRejected || terr.Kind == transport.KindUnauthorized) {
		if msg := strings.TrimSpace(terr.Message); msg != "" {
			message = msg
		}
	}
	fields = append([]zap.Field{zap.String("op", string(op)), zap.Error(cause)}, fields...)
	c.logger.Error(string(op)+" lead request failed", fields...)
	return &OpError{Op: op, Kind: opSentinels[op], Message: message, Err: cause}
}
