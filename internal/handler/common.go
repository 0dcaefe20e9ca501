package handler // handler defines the HTTP handlers

import (
	"fmt"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/tickethub/helpdesk-api/internal/apierr"
	"github.com/tickethub/helpdesk-api/internal/middleware"
)

// currentUser returns the identity attached by the identity middleware.
// Protected handlers call this first and reject before touching the store
// when no identity was attached.
func currentUser(c echo.Context) (*middleware.Identity, error) {
	id := middleware.CurrentIdentity(c)
	if id == nil {
		return nil, apierr.ErrMissingCredentials
	}
	return id, nil
}

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// pageParams holds the parsed ?page and ?limit query values.
type pageParams struct {
	Page   int
	Limit  int
	Offset int
}

// parsePage reads pagination query parameters, applying defaults and
// clamping out-of-range values instead of erroring.
func parsePage(c echo.Context) pageParams {
	page := 1
	if v, err := strconv.Atoi(c.QueryParam("page")); err == nil && v > 0 {
		page = v
	}
	limit := defaultPageLimit
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v > 0 {
		limit = v
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return pageParams{Page: page, Limit: limit, Offset: (page - 1) * limit}
}

// listMeta describes one page of an owned collection.
type listMeta struct {
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
	Page       int `json:"page"`
}

// listResponse is the pagination envelope: absolute prev/next links (only
// for pages that exist), counts, and the page data.
type listResponse struct {
	Links map[string]string `json:"links"`
	Meta  listMeta          `json:"meta"`
	Data  any               `json:"data"`
}

// paginate builds the list envelope. totalPages is ceil(totalItems/limit),
// so concatenating all pages in order reproduces the owned set exactly.
func paginate(c echo.Context, totalItems int, p pageParams, data any) listResponse {
	totalPages := 0
	if totalItems > 0 {
		totalPages = (totalItems + p.Limit - 1) / p.Limit
	}

	links := map[string]string{}
	base := fmt.Sprintf("%s://%s%s", c.Scheme(), c.Request().Host, c.Request().URL.Path)
	if p.Page > 1 {
		links["prev"] = fmt.Sprintf("%s?page=%d&limit=%d", base, p.Page-1, p.Limit)
	}
	if p.Page < totalPages {
		links["next"] = fmt.Sprintf("%s?page=%d&limit=%d", base, p.Page+1, p.Limit)
	}

	return listResponse{
		Links: links,
		Meta:  listMeta{TotalItems: totalItems, TotalPages: totalPages, Page: p.Page},
		Data:  data,
	}
}
