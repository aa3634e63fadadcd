// Package nopcache is the cache used when no backend is configured or the
// backend never came up.
package nopcache

import (
	"context"
	"time"
)

type Cache struct{}

func New() Cache { return Cache{} }

func (Cache) Get(context.Context, string) ([]byte, bool) { return nil, false }

func (Cache) Set(context.Context, string, []byte, time.Duration) {}

func (Cache) Remove(context.Context, ...string) {}

func (Cache) RemoveByPrefix(context.Context, string) {}

func (Cache) Exists(context.Context, string) bool { return false }
