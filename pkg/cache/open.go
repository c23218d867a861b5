package cache

import (
	"context"
	"fmt"
	"net/url"
)

// Open returns the backend for rawURL. An empty URL opens a FileCache in
// dir, or a NullCache when dir is empty too.
//
// Supported schemes: file (path from the URL), redis, rediss, mongodb,
// mongodb+srv.
func Open(ctx context.Context, rawURL, dir string) (Cache, error) {
	if rawURL == "" {
		if dir == "" {
			return NewNullCache(), nil
		}
		return NewFileCache(dir)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse cache url: %w", err)
	}
	switch u.Scheme {
	case "file":
		return NewFileCache(u.Path)
	case "redis", "rediss":
		return NewRedisCache(ctx, rawURL)
	case "mongodb", "mongodb+srv":
		return NewMongoCache(ctx, rawURL)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
}
