package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"resty.dev/v3"
)

// getList fetches path and decodes a list that the backend may return
// either bare or wrapped as {key: [...], total: n}. total falls back to
// the list length.
func getList[T any](ctx context.Context, c *Client, path, key string, build func(*resty.Request)) ([]T, int, error) {
	var raw json.RawMessage
	if err := c.get(ctx, path, build, &raw); err != nil {
		return nil, 0, err
	}
	return decodeList[T](raw, key)
}

func decodeList[T any](raw json.RawMessage, key string) ([]T, int, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []T{}, 0, nil
	}

	if raw[0] == '[' {
		var items []T
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, 0, fmt.Errorf("decode %s: %w", key, err)
		}
		return nonNilSlice(items), len(items), nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, 0, fmt.Errorf("decode %s: %w", key, err)
	}
	items := []T{}
	if list, ok := envelope[key]; ok && !bytes.Equal(bytes.TrimSpace(list), []byte("null")) {
		if err := json.Unmarshal(list, &items); err != nil {
			return nil, 0, fmt.Errorf("decode %s: %w", key, err)
		}
	}
	total := len(items)
	if t, ok := envelope["total"]; ok {
		_ = json.Unmarshal(t, &total)
	}
	return nonNilSlice(items), total, nil
}

func nonNilSlice[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
