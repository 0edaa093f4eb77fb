package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jonwraymond/rescache/cache"
)

// Resource is the raw content of one file.
type Resource struct {
	Key    string
	Path   string
	Data   []byte
	Loaded time.Time
}

// FileFactory returns a factory that reads the file named by each key.
//
// A key with no file fails with an error matching both ErrNotFound and
// fs.ErrNotExist.
func FileFactory(cfg Config) (cache.Factory[Resource], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.checkRoot(); err != nil {
		return nil, err
	}

	return func(ctx context.Context, key string) (*Resource, error) {
		path, err := cfg.resolve(key)
		if err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %q: %w", ErrNotFound, key, err)
		}
		if err != nil {
			return nil, fmt.Errorf("loader: read %q: %w", key, err)
		}

		return &Resource{
			Key:    key,
			Path:   path,
			Data:   data,
			Loaded: time.Now(),
		}, nil
	}, nil
}

// YAMLFactory returns a factory that decodes the file named by each key
// into a new T.
func YAMLFactory[T any](cfg Config) (cache.Factory[T], error) {
	files, err := FileFactory(cfg)
	if err != nil {
		return nil, err
	}

	return func(ctx context.Context, key string) (*T, error) {
		res, err := files(ctx, key)
		if err != nil {
			return nil, err
		}

		v := new(T)
		if err := yaml.Unmarshal(res.Data, v); err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrDecode, key, err)
		}
		return v, nil
	}, nil
}
