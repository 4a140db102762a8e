// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Credentials is a token and the account it belongs to, as returned by the
// auth endpoints.
type Credentials struct {
	Token string `json:"token"`
	Email string `json:"email"`
}

type authRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string `json:"token"`
	User  struct {
		Email string `json:"email"`
	} `json:"user"`
}

// Login exchanges an email and password for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (Credentials, error) {
	return c.authenticate(ctx, "/auth/login", email, password)
}

// Signup registers a new account and returns its first bearer token.
func (c *Client) Signup(ctx context.Context, email, password string) (Credentials, error) {
	return c.authenticate(ctx, "/auth/signup", email, password)
}

func (c *Client) authenticate(ctx context.Context, path, email, password string) (Credentials, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return Credentials{}, fmt.Errorf("%w: email and password required", ErrUnauthorized)
	}

	// Auth requests carry no bearer token, only the body.
	req, err := c.newRequest(ctx, http.MethodPost, path, authRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return Credentials{}, err
	}
	req.Header.Del("Authorization")

	body, err := c.roundTrip(req, path)
	if err != nil {
		return Credentials{}, err
	}

	var resp authResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Credentials{}, fmt.Errorf("failed to parse auth response: %w", err)
	}
	if resp.Token == "" {
		return Credentials{}, fmt.Errorf("%w: no token in response", ErrUnauthorized)
	}

	creds := Credentials{Token: resp.Token, Email: resp.User.Email}
	if creds.Email == "" {
		creds.Email = email
	}
	return creds, nil
}
