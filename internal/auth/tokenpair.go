package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"
)

// TokenPairVerifier exchanges an access/refresh pair against the external
// auth service. The exchange is a single call and is never retried.
type TokenPairVerifier struct {
	baseURL string
	client  *http.Client
	db      *gorm.DB
}

func NewTokenPairVerifier(baseURL string, gdb *gorm.DB) *TokenPairVerifier {
	return &TokenPairVerifier{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 15 * time.Second},
		db:      gdb,
	}
}

type tokenVerifyReq struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type tokenVerifyResp struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

func (v *TokenPairVerifier) Verify(ctx context.Context, cred Credential) (*Identity, error) {
	if cred.Bearer == "" {
		return nil, ErrMissing
	}
	// This scheme needs the pair; a lone access token is an incomplete
	// credential, not an absent one.
	if cred.Refresh == "" {
		return nil, ErrMalformed
	}

	b, err := json.Marshal(tokenVerifyReq{
		AccessToken:  cred.Bearer,
		RefreshToken: cred.Refresh,
	})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/v1/token/verify", v.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth service: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrInvalid
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4*1024))
		return nil, fmt.Errorf("auth service: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var decoded tokenVerifyResp
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("auth service: decode: %w", err)
	}
	if decoded.UserID == "" {
		return nil, ErrInvalid
	}

	return lookupIdentity(ctx, v.db, decoded.UserID)
}
