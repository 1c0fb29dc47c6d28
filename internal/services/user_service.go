package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"social-service/internal/apperrors"
)

var ErrUserNotFound = errors.New("user not found")

// UserDirectory resolves user ids owned by the auth service.
type UserDirectory interface {
	GetUserByID(ctx context.Context, id int64) (*UserDTO, error)
}

// UserService is the HTTP client for the auth service's user lookup.
type UserService struct {
	client  *http.Client
	baseURL string
}

type UserDTO struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

func NewUserService(baseURL string) *UserService {
	return &UserService{
		client:  &http.Client{Timeout: 5 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (s *UserService) GetUserByID(ctx context.Context, id int64) (*UserDTO, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/auth/user/%d", s.baseURL, id), nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrUserNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth service returned status %d", resp.StatusCode)
	}

	var user UserDTO
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// lookupUser maps directory failures onto coded errors.
func lookupUser(ctx context.Context, users UserDirectory, id int64) (*UserDTO, error) {
	user, err := users.GetUserByID(ctx, id)
	if errors.Is(err, ErrUserNotFound) {
		return nil, apperrors.New(apperrors.CodeNotFound, "user not found")
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "user directory unavailable", err)
	}
	return user, nil
}
