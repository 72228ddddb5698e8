package app

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jcmexdev/payment-service/internal/payment-service/core/domain"
	"github.com/jcmexdev/payment-service/internal/payment-service/core/dto"
	"github.com/jcmexdev/payment-service/internal/payment-service/core/mappers"
)

// idempotencyRecord is the value kept under an idempotency key. OrderID stays
// empty while the request holding the key has not persisted yet.
type idempotencyRecord struct {
	OrderID     string `json:"orderId,omitempty"`
	Fingerprint string `json:"fingerprint"`
}

// claim is a key reserved by the current request.
type claim struct {
	key         string
	idemKey     string
	fingerprint string
}

// fingerprint hashes the request payload so a key reused with a different
// body can be told apart from a retry.
func fingerprint(in dto.OrderDTO) string {
	raw, _ := json.Marshal(in)
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// reserve claims idemKey for this request with SET NX. A nil claim and a nil
// order mean idempotency is off for the call, either because there is no key
// or no cache, or because the cache is unreachable. When another request holds
// the key, reserve waits up to the configured window for it to settle and
// returns the order it created.
func (s *OrderService) reserve(ctx context.Context, idemKey string, in dto.OrderDTO) (*claim, *dto.OrderDTO, error) {
	if s.opts.cache == nil || idemKey == "" {
		return nil, nil, nil
	}
	c := &claim{
		key:         s.opts.cache.GenerateKey(opCreateOrder, idemKey),
		idemKey:     idemKey,
		fingerprint: fingerprint(in),
	}
	pending, err := json.Marshal(idempotencyRecord{Fingerprint: c.fingerprint})
	if err != nil {
		return nil, nil, err
	}

	deadline := time.Now().Add(s.opts.replayWait)
	for {
		won, err := s.opts.cache.SetNX(ctx, c.key, string(pending), s.opts.ttl)
		if err != nil {
			slog.WarnContext(ctx, "idempotency reserve failed", "idempotency_key", idemKey, "error", err)
			return nil, nil, nil
		}
		if won {
			return c, nil, nil
		}

		prior, done, err := s.settled(ctx, c)
		if err != nil || done {
			return nil, prior, err
		}

		if time.Now().After(deadline) {
			return nil, nil, fmt.Errorf("key %q is still in progress: %w", idemKey, domain.ErrConflict)
		}
		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		case <-time.After(s.opts.replayPoll):
		}
	}
}

// settled inspects the record held under a key this request lost. done is
// false while the holder is still in flight or the key has just been freed.
func (s *OrderService) settled(ctx context.Context, c *claim) (*dto.OrderDTO, bool, error) {
	raw, err := s.opts.cache.Get(ctx, c.key)
	if err != nil {
		return nil, true, fmt.Errorf("key %q lookup: %v: %w", c.idemKey, err, domain.ErrConflict)
	}
	if raw == "" {
		return nil, false, nil
	}

	var rec idempotencyRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, true, fmt.Errorf("key %q holds an unreadable record: %w", c.idemKey, domain.ErrConflict)
	}
	if rec.Fingerprint != c.fingerprint {
		return nil, true, fmt.Errorf("key %q was used with a different payload: %w", c.idemKey, domain.ErrConflict)
	}
	if rec.OrderID == "" {
		return nil, false, nil
	}

	id, err := uuid.Parse(rec.OrderID)
	if err != nil {
		return nil, true, fmt.Errorf("key %q holds an unreadable record: %w", c.idemKey, domain.ErrConflict)
	}
	o, ok, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, true, err
	}
	if !ok {
		// The order is gone from storage; free the key and compete for it again.
		s.opts.forget(ctx, c.key)
		return nil, false, nil
	}
	prior := mappers.OrderToDTO(o)
	return &prior, true, nil
}

// settle points the claimed key at the persisted order.
func (s *OrderService) settle(ctx context.Context, c *claim, orderID uuid.UUID) {
	if c == nil {
		return
	}
	raw, _ := json.Marshal(idempotencyRecord{OrderID: orderID.String(), Fingerprint: c.fingerprint})
	if err := s.opts.cache.Set(ctx, c.key, string(raw), s.opts.ttl); err != nil {
		slog.WarnContext(ctx, "idempotency store failed", "idempotency_key", c.idemKey, "error", err)
	}
}

// release frees the key after a failed save so a retry can run the pipeline.
func (s *OrderService) release(ctx context.Context, c *claim) {
	if c == nil {
		return
	}
	s.opts.forget(context.WithoutCancel(ctx), c.key)
}
