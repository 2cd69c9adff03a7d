// Package repository provides the data access layer on top of MongoDB.
package repository

import (
	"context"
	"time"
)

// opTimeout bounds every store operation. The source system ran without
// timeouts; a hung database call here fails the request instead of the pool.
const opTimeout = 5 * time.Second

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, opTimeout)
}
