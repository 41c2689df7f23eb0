package utils

import (
	"net/http"
	"strconv"
)

const maxPageSize = 100

// GetPaginationParams reads ?page and ?limit, defaulting to 1 and 20.
func GetPaginationParams(r *http.Request) (int, int) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit < 1 {
		limit = 20
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	return page, limit
}
