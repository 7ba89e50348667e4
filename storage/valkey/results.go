// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package valkey implements storage.ResultCache on a Valkey (or Redis
// compatible) server.
package valkey

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/poiesic/assessor/storage"
	"github.com/valkey-io/valkey-go"
)

const defaultPrefix = "assessor"

// ResultCache stores serialized recommendations in Valkey.
type ResultCache struct {
	client valkey.Client
	prefix string
}

var _ storage.ResultCache = (*ResultCache)(nil)

// Open connects to addr, which is either host:port or a valkey:// / redis:// URL,
// and verifies the connection with a PING.
func Open(ctx context.Context, addr, prefix string) (*ResultCache, error) {
	opt, err := clientOptions(addr)
	if err != nil {
		return nil, fmt.Errorf("invalid valkey address %q: %w", addr, err)
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		return nil, fmt.Errorf("failed to create valkey client: %w", err)
	}
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("valkey ping failed: %w", err)
	}
	return New(client, prefix), nil
}

// New wraps an existing client.
func New(client valkey.Client, prefix string) *ResultCache {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &ResultCache{client: client, prefix: prefix}
}

func clientOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}

// Get implements storage.ResultCache.
func (c *ResultCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	cmd := c.client.B().Get().Key(c.entryKey(key)).Build()
	payload, err := c.client.Do(ctx, cmd).AsBytes()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return payload, true, nil
}

// Set implements storage.ResultCache. Sub-second TTLs are rounded up to one second.
func (c *ResultCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	builder := c.client.B().Set().Key(c.entryKey(key)).Value(valkey.BinaryString(value))
	var cmd valkey.Completed
	if ttl > 0 {
		if ttl < time.Second {
			ttl = time.Second
		}
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	return c.client.Do(ctx, cmd).Error()
}

// Close closes the client.
func (c *ResultCache) Close() error {
	c.client.Close()
	return nil
}

func (c *ResultCache) entryKey(key string) string {
	return fmt.Sprintf("%s:rec:%s", c.prefix, key)
}
