package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"whatsapp-reseller/internal/domain/model"
	"whatsapp-reseller/internal/domain/ports/adapter"
)

var _ adapter.ReplayGuard = (*ReplayGuard)(nil)

// ReplayGuard records a digest of every callback payload that was processed.
type ReplayGuard struct {
	client RedisClient
	ttl    time.Duration
}

func NewReplayGuard(client RedisClient, ttl time.Duration) *ReplayGuard {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &ReplayGuard{client: client, ttl: ttl}
}

func (g *ReplayGuard) Seen(ctx context.Context, p model.CallbackPayload) (bool, error) {
	return g.client.Exists(ctx, ReplayKey(p))
}

func (g *ReplayGuard) Mark(ctx context.Context, p model.CallbackPayload) error {
	return g.client.Set(ctx, ReplayKey(p), "1", g.ttl)
}

// ReplayKey digests the fields that identify one gateway notification.
func ReplayKey(p model.CallbackPayload) string {
	h := sha256.Sum256([]byte(strings.Join([]string{
		p.MerchantCode, p.MerchantOrderID, p.Amount, p.ResultCode, p.Reference, p.Signature,
	}, "|")))
	return "callback_seen:" + hex.EncodeToString(h[:])
}
