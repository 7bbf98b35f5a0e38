package api

import (
	"net/http"
	"strconv"
)

// maxPage keeps (page-1)*pageSize well inside an int64 OFFSET.
const (
	defaultPageSize = 20
	maxPageSize     = 100
	maxPage         = 1_000_000
)

func pageParams(r *http.Request) (int, int, error) {
	q := r.URL.Query()

	page := 1
	if raw := q.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxPage {
			return 0, 0, badRequest("page must be between 1 and " + strconv.Itoa(maxPage))
		}
		page = n
	}

	pageSize, _ := strconv.Atoi(q.Get("page_size"))
	if pageSize < 1 || pageSize > maxPageSize {
		pageSize = defaultPageSize
	}
	return page, pageSize, nil
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id < 1 {
		return 0, badRequest("invalid " + name)
	}
	return id, nil
}

// queryID parses an optional numeric query parameter.
func queryID(r *http.Request, name string) (*int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return nil, badRequest("invalid " + name)
	}
	return &id, nil
}
