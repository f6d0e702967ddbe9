// internal/core/query_params.go
package core

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Default and limit constants for listings. A zero limit returns every row.
const (
	DefaultLimit = 0
	MaxLimit     = 1000
	DefaultOrder = "asc"
)

// ListQueryOptions holds parsed listing query parameters
type ListQueryOptions struct {
	Limit  int
	Offset int

	// Order applies to ranked listings: "asc" or "desc"
	Order string
}

// ParseListQueryOptions extracts pagination and ordering from query parameters.
func ParseListQueryOptions(queryParams url.Values) (*ListQueryOptions, error) {
	opts := &ListQueryOptions{
		Limit:  DefaultLimit,
		Offset: 0,
		Order:  DefaultOrder,
	}

	if limitStr := queryParams.Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return nil, fmt.Errorf("invalid 'limit' parameter: must be an integer")
		}
		if limit < 1 {
			return nil, fmt.Errorf("invalid 'limit' parameter: must be at least 1")
		}
		if limit > MaxLimit {
			return nil, fmt.Errorf("invalid 'limit' parameter: maximum is %d", MaxLimit)
		}
		opts.Limit = limit
	}

	if offsetStr := queryParams.Get("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil {
			return nil, fmt.Errorf("invalid 'offset' parameter: must be an integer")
		}
		if offset < 0 {
			return nil, fmt.Errorf("invalid 'offset' parameter: must be non-negative")
		}
		if opts.Limit == 0 {
			return nil, fmt.Errorf("invalid 'offset' parameter: requires 'limit'")
		}
		opts.Offset = offset
	}

	if order := queryParams.Get("order"); order != "" {
		lowerOrder := strings.ToLower(order)
		if lowerOrder != "asc" && lowerOrder != "desc" {
			return nil, fmt.Errorf("invalid 'order' parameter: must be 'asc' or 'desc'")
		}
		opts.Order = lowerOrder
	}

	return opts, nil
}
