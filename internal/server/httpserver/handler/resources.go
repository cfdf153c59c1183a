package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/yndnr/stakewatch/internal/core/service"
)

// TokenHeader carries the bearer token on protected user routes.
const TokenHeader = "token"

// Ping answers 200 with an empty object for every method.
func Ping(context.Context, *Request) Result {
	return Empty(http.StatusOK)
}

// Users serves account CRUD.
type Users struct {
	svc *service.UserService
}

// NewUsers creates the users resource.
func NewUsers(svc *service.UserService) *Users {
	return &Users{svc: svc}
}

// Post creates a user.
func (h *Users) Post(ctx context.Context, req *Request) Result {
	err := h.svc.Create(ctx, &service.CreateUserRequest{
		FirstName:    req.String("firstName"),
		LastName:     req.String("lastName"),
		Phone:        req.String("phone"),
		Password:     req.String("password"),
		TOSAgreement: req.Bool("tosAgreement"),
	})
	if err != nil {
		return failed(ctx, "create user", err)
	}
	return Empty(http.StatusOK)
}

// Get returns the user named by the phone query parameter.
func (h *Users) Get(ctx context.Context, req *Request) Result {
	view, err := h.svc.Get(ctx, req.QueryValue("phone"), req.Headers.Get(TokenHeader))
	if err != nil {
		return failed(ctx, "read user", err)
	}
	return OK(view)
}

// Put updates the supplied fields of a user.
func (h *Users) Put(ctx context.Context, req *Request) Result {
	err := h.svc.Update(ctx, &service.UpdateUserRequest{
		Phone:     req.String("phone"),
		FirstName: req.String("firstName"),
		LastName:  req.String("lastName"),
		Password:  req.String("password"),
	}, req.Headers.Get(TokenHeader))
	if err != nil {
		return failed(ctx, "update user", err)
	}
	return Empty(http.StatusOK)
}

// Delete removes the user named by the phone query parameter.
func (h *Users) Delete(ctx context.Context, req *Request) Result {
	if err := h.svc.Delete(ctx, req.QueryValue("phone"), req.Headers.Get(TokenHeader)); err != nil {
		return failed(ctx, "delete user", err)
	}
	return Empty(http.StatusOK)
}

// Tokens serves the token lifecycle.
type Tokens struct {
	svc *service.TokenService
}

// NewTokens creates the tokens resource.
func NewTokens(svc *service.TokenService) *Tokens {
	return &Tokens{svc: svc}
}

// Post issues a token for matching credentials.
func (h *Tokens) Post(ctx context.Context, req *Request) Result {
	tok, err := h.svc.Issue(ctx, &service.IssueTokenRequest{
		Phone:    req.String("phone"),
		Password: req.String("password"),
	})
	if err != nil {
		return failed(ctx, "issue token", err)
	}
	return OK(tok)
}

// Get returns the token named by the id query parameter.
func (h *Tokens) Get(ctx context.Context, req *Request) Result {
	tok, err := h.svc.Get(ctx, req.QueryValue("id"))
	if err != nil {
		return failed(ctx, "read token", err)
	}
	return OK(tok)
}

// Put extends an unexpired token.
func (h *Tokens) Put(ctx context.Context, req *Request) Result {
	_, err := h.svc.Extend(ctx, &service.ExtendTokenRequest{
		ID:     req.String("id"),
		Extend: req.Bool("extend"),
	})
	if err != nil {
		return failed(ctx, "extend token", err)
	}
	return Empty(http.StatusOK)
}

// Delete revokes the token named by the id query parameter.
func (h *Tokens) Delete(ctx context.Context, req *Request) Result {
	if err := h.svc.Revoke(ctx, req.QueryValue("id")); err != nil {
		return failed(ctx, "revoke token", err)
	}
	return Empty(http.StatusOK)
}

// Validators serves the validator snapshot.
type Validators struct {
	svc *service.ValidatorService
}

// NewValidators creates the validators resource.
func NewValidators(svc *service.ValidatorService) *Validators {
	return &Validators{svc: svc}
}

// Post starts an ad hoc history rebuild and returns at once.
func (h *Validators) Post(_ context.Context, req *Request) Result {
	h.svc.Rebuild(epochNum(req.Body["epochNum"]))
	return Empty(http.StatusOK)
}

// Get serves /validators (a page) and /validators/count.
func (h *Validators) Get(ctx context.Context, req *Request) Result {
	switch {
	case len(req.Segments) == 1:
		page, err := h.svc.List(ctx, req.Page, req.Limit)
		if err != nil {
			return h.snapshotFailure(ctx, err)
		}
		return OK(page)
	case len(req.Segments) == 2 && req.Segments[1] == "count":
		count, err := h.svc.Count(ctx)
		if err != nil {
			return h.snapshotFailure(ctx, err)
		}
		return OK(count)
	default:
		return Empty(http.StatusNotFound)
	}
}

// Put is accepted and does nothing.
func (h *Validators) Put(context.Context, *Request) Result {
	return Empty(http.StatusOK)
}

// Delete is accepted and does nothing.
func (h *Validators) Delete(context.Context, *Request) Result {
	return Empty(http.StatusOK)
}

func (h *Validators) snapshotFailure(ctx context.Context, err error) Result {
	if service.IsSnapshotMissing(err) {
		return Empty(http.StatusNotFound)
	}
	return failed(ctx, "read snapshot", err)
}

// epochNum accepts the lower bound as a JSON string or number.
func epochNum(v any) string {
	switch n := v.(type) {
	case string:
		return strings.TrimSpace(n)
	case json.Number:
		return n.String()
	default:
		return ""
	}
}
