// Package handlers implements the REST endpoints of the catalog API.
package handlers

import (
	"net/http"
	"strings"

	"catalog-backend/application/ports"
	"catalog-backend/pkg/common"
)

const maxBodyBytes = 1 << 20

// csv splits a comma-separated query value, dropping blanks.
func csv(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// viewOptions reads the fields / includeFields query parameters.
func viewOptions(r *http.Request) ports.ViewOptions {
	view := ports.ViewOptions{
		Fields:        csv(r.URL.Query().Get("fields")),
		IncludeFields: true,
	}
	if r.URL.Query().Get("includeFields") == "false" {
		view.IncludeFields = false
	}
	return view
}

// pageParams reads limit and the opaque offset token.
func pageParams(r *http.Request, defaultLimit, maxLimit int) (int, *common.Cursor, error) {
	params := common.ExtractPaginationParams(r, defaultLimit, maxLimit)
	cursor, err := common.DecodeCursor(params.Offset)
	if err != nil {
		return 0, nil, err
	}
	return params.Limit, cursor, nil
}
