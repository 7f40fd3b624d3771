// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package cache opens the Valkey (Redis-compatible) connection that
// holds user sessions.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

// pingTimeout bounds the startup check when ctx has no deadline.
const pingTimeout = 5 * time.Second

// Options locates a Valkey server.
type Options struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Addr is the host:port pair handed to the client.
func (o Options) Addr() string {
	return net.JoinHostPort(o.Host, o.Port)
}

// Connect opens a client and pings it once. A server that does not
// answer is an error and the client is closed again.
func Connect(ctx context.Context, o Options) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     o.Addr(),
		Password: o.Password,
		DB:       o.DB,
	})

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, pingTimeout)
		defer cancel()
	}
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping valkey at %s: %w", o.Addr(), err)
	}

	slog.Info("valkey connected", "addr", o.Addr(), "db", o.DB)
	return client, nil
}

// Check adapts a client to a readiness probe.
func Check(client *redis.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}
