package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/Abdurahmanit/review-service/internal/domain"
	"github.com/Abdurahmanit/review-service/internal/platform/logger"
)

// UserClient resolves user profiles from the user service.
type UserClient struct {
	api *jsonClient
}

func NewUserClient(baseURL string, timeout time.Duration, log *logger.Logger) *UserClient {
	return &UserClient{api: newJSONClient(baseURL, timeout, log.Named("UserClient"))}
}

func (c *UserClient) GetUser(ctx context.Context, userID, token string) (*domain.UserProfile, error) {
	var resp struct {
		User *domain.UserProfile `json:"user"`
	}
	if err := c.api.do(ctx, http.MethodGet, "/api/v1/user/"+url.PathEscape(userID), token, nil, &resp); err != nil {
		return nil, fmt.Errorf("get user %s: %w", userID, err)
	}
	if resp.User == nil {
		return nil, fmt.Errorf("get user %s: %w", userID, domain.ErrNotFound)
	}
	if resp.User.ID == "" {
		resp.User.ID = userID
	}
	return resp.User, nil
}
