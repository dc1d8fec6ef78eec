package clients

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// UserClient talks to the user service, which keeps the cumulative per-user
// score.
type UserClient struct {
	baseURL string
	http    *http.Client
}

func NewUserClient(baseURL string, timeout time.Duration) *UserClient {
	return &UserClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// UpdateScore adjusts the user's cumulative score by scoreChange. The user
// service takes the delta as a bare JSON number.
func (uc *UserClient) UpdateScore(ctx context.Context, userID string, scoreChange int) error {
	endpoint := uc.baseURL + "/api/users/" + url.PathEscape(userID) + "/score"
	body := bytes.NewBufferString(strconv.Itoa(scoreChange))

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, endpoint, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := uc.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("user service returned status %d", resp.StatusCode)
	}
	return nil
}
