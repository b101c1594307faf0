package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/nurpe/dumpster-rentals/internal/wizard"
)

const draftKeyPrefix = "wizard:draft:"

// DraftStore keeps wizard sessions as JSON values that expire after ttl of
// inactivity.
type DraftStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewDraftStore(rdb *redis.Client, ttl time.Duration) *DraftStore {
	return &DraftStore{rdb: rdb, ttl: ttl}
}

func draftKey(id uuid.UUID) string {
	return draftKeyPrefix + id.String()
}

func (s *DraftStore) Load(ctx context.Context, id uuid.UUID) (*wizard.Wizard, error) {
	raw, err := s.rdb.Get(ctx, draftKey(id)).Bytes()
	if err != nil {
		if isNil(err) {
			return nil, wizard.ErrDraftNotFound
		}
		return nil, err
	}

	var w wizard.Wizard
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

func (s *DraftStore) Save(ctx context.Context, w *wizard.Wizard) error {
	raw, err := json.Marshal(w)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, draftKey(w.ID), raw, s.ttl).Err()
}

func (s *DraftStore) Delete(ctx context.Context, id uuid.UUID) error {
	return s.rdb.Del(ctx, draftKey(id)).Err()
}
