package common

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strconv"

	"catalog-backend/pkg/errors"
)

// Cursor marks a position in a listing ordered by descending sort_id.
// The next page starts strictly below SortID.
type Cursor struct {
	SortID int64 `json:"sortId"`
}

// EncodeCursor serializes a cursor into an opaque base64 token.
func EncodeCursor(sortID int64) string {
	data, _ := json.Marshal(Cursor{SortID: sortID})
	return base64.StdEncoding.EncodeToString(data)
}

// DecodeCursor parses an opaque page token. An empty token means the first
// page and yields a nil cursor. Tokens that are not base64-encoded JSON of
// the expected shape are a validation error, never a server fault.
func DecodeCursor(token string) (*Cursor, error) {
	if token == "" {
		return nil, nil
	}

	data, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, errors.NewValidationError("offset token is not valid base64")
	}

	var cursor Cursor
	if err := json.Unmarshal(data, &cursor); err != nil {
		return nil, errors.NewValidationError("offset token is malformed")
	}
	return &cursor, nil
}

// Page is one window of a listing plus the token for the next window.
// NextOffset is empty on the terminal page.
type Page[T any] struct {
	Count      int    `json:"count"`
	Results    []T    `json:"results"`
	NextOffset string `json:"nextOffset,omitempty"`
}

// PaginationParams represents the client-controlled paging inputs.
type PaginationParams struct {
	Limit  int
	Offset string
}

// ExtractPaginationParams extracts paging inputs from the request,
// clamping the limit into [1, maxLimit].
func ExtractPaginationParams(r *http.Request, defaultLimit, maxLimit int) PaginationParams {
	params := PaginationParams{
		Limit:  defaultLimit,
		Offset: r.URL.Query().Get("offset"),
	}

	if limit := r.URL.Query().Get("limit"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil && n > 0 {
			if n > maxLimit {
				n = maxLimit
			}
			params.Limit = n
		}
	}

	return params
}
