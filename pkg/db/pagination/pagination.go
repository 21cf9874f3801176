package pagination

import (
	"encoding/base64"
	"encoding/json"
)

type Pagination struct {
	PageToken string `form:"page_token"`
	PageSize  int    `form:"page_size,default=20" validate:"gte=1,lte=250"`
}

// Cursor marks the position of the last row of a page. Rows are keyed by
// snowflake ID, which is already creation-ordered.
type Cursor struct {
	ID string `json:"id,omitempty"`
}

type PageInfo struct {
	NextPageToken string `json:"next_page_token"`
	HasMore       bool   `json:"has_more"`
}

func EncodeCursor(data Cursor) (string, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

func DecodeCursor(data string) (*Cursor, error) {
	b, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, err
	}

	var cursor Cursor
	if err := json.Unmarshal(b, &cursor); err != nil {
		return nil, err
	}

	return &cursor, nil
}

// Page trims an over-fetched result set (limit+1 rows) to the page size and
// reports whether more rows remain.
func Page[T any](rows []T, limit int, cursorOf func(T) string) ([]T, PageInfo) {
	if len(rows) == 0 {
		return rows, PageInfo{}
	}

	info := PageInfo{}
	if len(rows) > limit {
		info.HasMore = true
		rows = rows[:limit]
	}
	info.NextPageToken = cursorOf(rows[len(rows)-1])
	return rows, info
}
