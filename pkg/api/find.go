package api

import (
	"fmt"
	"math"
	"net/url"
	"strconv"

	"github.com/adfharrison1/hippodb/pkg/domain"
	"github.com/adfharrison1/hippodb/pkg/query"
)

// paginationParams are reserved query parameters; every other parameter is
// an equality condition on a field path.
var paginationParams = map[string]bool{
	"limit":  true,
	"offset": true,
	"after":  true,
	"before": true,
}

// parseQueryValue converts a query-string value to the JSON value it most
// likely denotes.
func parseQueryValue(value string) interface{} {
	switch value {
	case "true":
		return true
	case "false":
		return false
	case "null":
		return nil
	}
	// ParseFloat also accepts "Inf" and "NaN", which are strings here
	if num, err := strconv.ParseFloat(value, 64); err == nil && !math.IsNaN(num) && !math.IsInf(num, 0) {
		return num
	}
	return value
}

// parseQueryFilter builds an equality filter from the query parameters,
// ignoring pagination parameters. It returns nil when there are none.
func parseQueryFilter(params url.Values) (query.Filter, error) {
	fields := make(map[string]interface{})
	for key, values := range params {
		if paginationParams[key] || len(values) == 0 {
			continue
		}
		fields[key] = parseQueryValue(values[0]) // Take first value if multiple provided
	}
	return query.Equality(fields)
}

// parsePagination reads limit, offset, after and before.
func parsePagination(params url.Values) (*domain.PaginationOptions, error) {
	options := domain.DefaultPaginationOptions()

	if v := params.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid limit %q", domain.ErrInvalidFilter, v)
		}
		options.Limit = limit
	}
	if v := params.Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid offset %q", domain.ErrInvalidFilter, v)
		}
		options.Offset = offset
	}
	options.After = params.Get("after")
	options.Before = params.Get("before")

	if err := options.Validate(); err != nil {
		return nil, err
	}
	return options, nil
}

// filterDescription renders a filter for log lines.
func filterDescription(filter query.Filter) string {
	if filter == nil {
		return "no filter"
	}
	return "filter " + filter.String()
}
