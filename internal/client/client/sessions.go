package client

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/investdesk/internal/client/models"
)

type sessionResponse struct {
	ID        int64   `json:"id"`
	UserID    int64   `json:"userId"`
	CreatedAt int64   `json:"createdAt"`
	IP        string  `json:"ip"`
	Location  *string `json:"location"`
	IsCurrent bool    `json:"isCurrent"`
}

func (s sessionResponse) toModel() models.Session {
	return models.Session{
		ID:        s.ID,
		UserID:    s.UserID,
		CreatedAt: time.UnixMilli(s.CreatedAt),
		IP:        s.IP,
		Location:  s.Location,
		IsCurrent: s.IsCurrent,
	}
}

// Sessions lists the caller's sessions in server order.
func (c *HTTPClient) Sessions(ctx context.Context) ([]models.Session, error) {
	var resp []sessionResponse
	if err := c.gw.Do(ctx, &Request{Method: http.MethodGet, Path: "/auth/sessions"}, &resp); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	sessions := make([]models.Session, 0, len(resp))
	for _, s := range resp {
		sessions = append(sessions, s.toModel())
	}
	return sessions, nil
}

// DeleteSession revokes another device's session. ErrForbidden for the
// caller's current session, ErrNotFound for an id it does not own.
func (c *HTTPClient) DeleteSession(ctx context.Context, id int64) error {
	req := &Request{Method: http.MethodDelete, Path: "/auth/sessions/" + strconv.FormatInt(id, 10)}
	if err := c.gw.Do(ctx, req, nil); err != nil {
		return fmt.Errorf("delete session %d: %w", id, err)
	}
	return nil
}
