// Package catalog stores board games in Redis.
//
// Layout, all under one key prefix:
//
//	{p}:ids               ZSET  record id -> insertion sequence
//	{p}:seq               STRING sequence counter
//	{p}:doc:{id}          HASH  scalar fields of one record
//	{p}:exp:{id}          ZSET  expansion id -> sequence (list order)
//	{p}:expname:{id}      HASH  expansion id -> cached name
//	{p}:base:{bid}        SET   ids whose baseGame == bid
//	{p}:listed:{eid}      SET   ids whose expansions contain eid
//
// Link primitives run as Lua scripts so concurrent writers cannot lose updates.
// The scripts derive some keys from the prefix, so the store expects a single
// Redis node or a prefix in one hash slot.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/cuihairu/tabletop/internal/ports"
	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

var _ ports.BoardGameStore = (*Store)(nil)

const maxWatchRetries = 16

var addExpansionScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then return -1 end
if redis.call('ZSCORE', KEYS[2], ARGV[2]) then return 0 end
local seq = redis.call('INCR', KEYS[5])
redis.call('ZADD', KEYS[2], seq, ARGV[2])
redis.call('HSET', KEYS[3], ARGV[2], ARGV[3])
redis.call('SADD', KEYS[4], ARGV[1])
redis.call('HSET', KEYS[1], 'updatedAt', ARGV[4])
return 1
`)

var removeExpansionScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then return -1 end
redis.call('ZREM', KEYS[2], ARGV[2])
redis.call('HDEL', KEYS[3], ARGV[2])
redis.call('SREM', KEYS[4], ARGV[1])
redis.call('HSET', KEYS[1], 'updatedAt', ARGV[3])
return 1
`)

var setBaseGameScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then return -1 end
local old = redis.call('HGET', KEYS[1], 'baseGame')
if old then redis.call('SREM', ARGV[3] .. old, ARGV[1]) end
redis.call('HSET', KEYS[1], 'baseGame', ARGV[2], 'updatedAt', ARGV[4])
redis.call('SADD', ARGV[3] .. ARGV[2], ARGV[1])
return 1
`)

// Store implements ports.BoardGameStore on a go-redis client.
type Store struct {
	cli    redis.UniversalClient
	prefix string
	now    func() time.Time
}

// New dials url (redis://...) and returns a store using prefix for every key.
func New(url, prefix string) (*Store, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis parse url: %w", err)
	}
	return NewFromClient(redis.NewClient(opt), prefix), nil
}

func NewFromClient(cli redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = "tabletop"
	}
	return &Store{cli: cli, prefix: prefix, now: time.Now}
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error { return s.cli.Ping(ctx).Err() }

func (s *Store) Close() error { return s.cli.Close() }

func (s *Store) idsKey() string              { return s.prefix + ":ids" }
func (s *Store) seqKey() string              { return s.prefix + ":seq" }
func (s *Store) docKey(id string) string     { return s.prefix + ":doc:" + id }
func (s *Store) expKey(id string) string     { return s.prefix + ":exp:" + id }
func (s *Store) expNameKey(id string) string { return s.prefix + ":expname:" + id }
func (s *Store) basePrefix() string          { return s.prefix + ":base:" }
func (s *Store) baseKey(bid string) string   { return s.basePrefix() + bid }
func (s *Store) listedKey(eid string) string { return s.prefix + ":listed:" + eid }

func (s *Store) Get(ctx context.Context, id string) (*ports.BoardGame, error) {
	out, err := s.load(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ports.ErrNotFound
	}
	return out[0], nil
}

func (s *Store) List(ctx context.Context) ([]*ports.BoardGame, error) {
	ids, err := s.cli.ZRange(ctx, s.idsKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	return s.load(ctx, ids)
}

func (s *Store) Query(ctx context.Context, f ports.Filter) ([]*ports.BoardGame, error) {
	var key string
	switch {
	case f.Field == ports.FieldBaseGame && f.Op == ports.OpEqual:
		key = s.baseKey(f.Value)
	case f.Field == ports.FieldExpansions && f.Op == ports.OpArrayContains:
		key = s.listedKey(f.Value)
	default:
		return nil, fmt.Errorf("%w: %s %s", ports.ErrUnsupportedQuery, f.Field, f.Op)
	}
	members, err := s.cli.SMembers(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return []*ports.BoardGame{}, nil
	}
	// keep insertion order
	scores, err := s.cli.ZMScore(ctx, s.idsKey(), members...).Result()
	if err != nil {
		return nil, err
	}
	type ranked struct {
		id    string
		score float64
	}
	rs := make([]ranked, 0, len(members))
	for i, m := range members {
		rs = append(rs, ranked{m, scores[i]})
	}
	sort.SliceStable(rs, func(i, j int) bool { return rs[i].score < rs[j].score })
	ids := make([]string, 0, len(rs))
	for _, r := range rs {
		ids = append(ids, r.id)
	}
	return s.load(ctx, ids)
}

func (s *Store) Add(ctx context.Context, g *ports.BoardGame) (string, error) {
	cp := g.Clone()
	cp.ID = uuid.NewString()
	now := s.now()
	cp.CreatedAt, cp.UpdatedAt = now, now
	seq, err := s.cli.Incr(ctx, s.seqKey()).Result()
	if err != nil {
		return "", err
	}
	_, err = s.cli.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		s.writeDoc(ctx, pipe, cp)
		pipe.ZAdd(ctx, s.idsKey(), redis.Z{Score: float64(seq), Member: cp.ID})
		return nil
	})
	if err != nil {
		return "", err
	}
	return cp.ID, nil
}

// Put replaces g.ID wholesale, creating it when absent.
func (s *Store) Put(ctx context.Context, g *ports.BoardGame) error {
	if g == nil || g.ID == "" {
		return errors.New("put: missing id")
	}
	cp := g.Clone()
	return s.watch(ctx, cp.ID, func(tx *redis.Tx) error {
		old, err := s.readLinks(ctx, tx, cp.ID)
		if err != nil {
			return err
		}
		now := s.now()
		cp.UpdatedAt = now
		if old.exists {
			cp.CreatedAt = old.createdAt
		} else {
			cp.CreatedAt = now
		}
		var seq int64
		if !old.exists {
			if seq, err = tx.Incr(ctx, s.seqKey()).Result(); err != nil {
				return err
			}
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			s.dropDoc(ctx, pipe, cp.ID, old)
			s.writeDoc(ctx, pipe, cp)
			if !old.exists {
				pipe.ZAdd(ctx, s.idsKey(), redis.Z{Score: float64(seq), Member: cp.ID})
			}
			return nil
		})
		return err
	})
}

// PutFields rewrites the scalar hash of an existing record. The exp, expname
// and listed keys are not touched.
func (s *Store) PutFields(ctx context.Context, g *ports.BoardGame) error {
	if g == nil || g.ID == "" {
		return errors.New("put: missing id")
	}
	cp := g.Clone()
	return s.watch(ctx, cp.ID, func(tx *redis.Tx) error {
		vals, err := tx.HMGet(ctx, s.docKey(cp.ID), "baseGame", "createdAt").Result()
		if err != nil {
			return err
		}
		oldBase, ok := vals[0].(string)
		if !ok {
			return ports.ErrNotFound
		}
		if v, ok := vals[1].(string); ok {
			cp.CreatedAt = parseStamp(v)
		}
		cp.UpdatedAt = s.now()
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.SRem(ctx, s.baseKey(oldBase), cp.ID)
			s.writeFields(ctx, pipe, cp)
			return nil
		})
		return err
	})
}

func (s *Store) Delete(ctx context.Context, id string) error {
	return s.watch(ctx, id, func(tx *redis.Tx) error {
		old, err := s.readLinks(ctx, tx, id)
		if err != nil {
			return err
		}
		if !old.exists {
			return ports.ErrNotFound
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			s.dropDoc(ctx, pipe, id, old)
			pipe.ZRem(ctx, s.idsKey(), id)
			return nil
		})
		return err
	})
}

func (s *Store) AddExpansion(ctx context.Context, id string, ref ports.ExpansionRef) error {
	keys := []string{s.docKey(id), s.expKey(id), s.expNameKey(id), s.listedKey(ref.ID), s.seqKey()}
	return scriptResult(addExpansionScript.Run(ctx, s.cli, keys, id, ref.ID, ref.Name, stamp(s.now())).Int())
}

func (s *Store) RemoveExpansion(ctx context.Context, id, expansionID string) error {
	keys := []string{s.docKey(id), s.expKey(id), s.expNameKey(id), s.listedKey(expansionID)}
	return scriptResult(removeExpansionScript.Run(ctx, s.cli, keys, id, expansionID, stamp(s.now())).Int())
}

func (s *Store) SetBaseGame(ctx context.Context, id, baseGameID string) error {
	keys := []string{s.docKey(id)}
	return scriptResult(setBaseGameScript.Run(ctx, s.cli, keys, id, baseGameID, s.basePrefix(), stamp(s.now())).Int())
}

func scriptResult(n int, err error) error {
	if err != nil {
		return err
	}
	if n < 0 {
		return ports.ErrNotFound
	}
	return nil
}

// watch runs fn in an optimistic transaction on the record's keys and
// retries when another writer touched them first.
func (s *Store) watch(ctx context.Context, id string, fn func(tx *redis.Tx) error) error {
	for i := 0; i < maxWatchRetries; i++ {
		err := s.cli.Watch(ctx, fn, s.docKey(id), s.expKey(id))
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("redis: record %s: %w", id, redis.TxFailedErr)
}

type linkState struct {
	exists    bool
	baseGame  string
	createdAt time.Time
	expIDs    []string
}

func (s *Store) readLinks(ctx context.Context, tx *redis.Tx, id string) (linkState, error) {
	vals, err := tx.HMGet(ctx, s.docKey(id), "baseGame", "createdAt").Result()
	if err != nil {
		return linkState{}, err
	}
	st := linkState{}
	if v, ok := vals[0].(string); ok {
		st.exists = true
		st.baseGame = v
	}
	if v, ok := vals[1].(string); ok {
		st.createdAt = parseStamp(v)
	}
	if !st.exists {
		return st, nil
	}
	st.expIDs, err = tx.ZRange(ctx, s.expKey(id), 0, -1).Result()
	return st, err
}

func (s *Store) dropDoc(ctx context.Context, pipe redis.Pipeliner, id string, old linkState) {
	if !old.exists {
		return
	}
	pipe.Del(ctx, s.docKey(id), s.expKey(id), s.expNameKey(id))
	pipe.SRem(ctx, s.baseKey(old.baseGame), id)
	for _, eid := range old.expIDs {
		pipe.SRem(ctx, s.listedKey(eid), id)
	}
}

func (s *Store) writeDoc(ctx context.Context, pipe redis.Pipeliner, g *ports.BoardGame) {
	s.writeFields(ctx, pipe, g)
	seen := make(map[string]bool, len(g.Expansions))
	for i, e := range g.Expansions {
		if seen[e.ID] {
			continue
		}
		seen[e.ID] = true
		// list positions are relative; later script appends use the global
		// sequence, which is always larger
		pipe.ZAdd(ctx, s.expKey(g.ID), redis.Z{Score: float64(-len(g.Expansions) + i), Member: e.ID})
		pipe.HSet(ctx, s.expNameKey(g.ID), e.ID, e.Name)
		pipe.SAdd(ctx, s.listedKey(e.ID), g.ID)
	}
}

func (s *Store) writeFields(ctx context.Context, pipe redis.Pipeliner, g *ports.BoardGame) {
	pipe.HSet(ctx, s.docKey(g.ID), map[string]any{
		"name":        g.Name,
		"releaseYear": strconv.Itoa(g.ReleaseYear),
		"publisher":   g.Publisher,
		"min_players": strconv.Itoa(g.MinPlayers),
		"max_players": strconv.Itoa(g.MaxPlayers),
		"type":        string(g.Kind),
		"baseGame":    g.BaseGameID,
		"standalone":  strconv.FormatBool(g.Standalone),
		"createdAt":   stamp(g.CreatedAt),
		"updatedAt":   stamp(g.UpdatedAt),
	})
	pipe.SAdd(ctx, s.baseKey(g.BaseGameID), g.ID)
}

// load fetches records in the given order, skipping ids that do not exist.
func (s *Store) load(ctx context.Context, ids []string) ([]*ports.BoardGame, error) {
	out := make([]*ports.BoardGame, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	type cmds struct {
		doc   *redis.MapStringStringCmd
		exp   *redis.StringSliceCmd
		names *redis.MapStringStringCmd
	}
	res := make([]cmds, len(ids))
	_, err := s.cli.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			res[i] = cmds{
				doc:   pipe.HGetAll(ctx, s.docKey(id)),
				exp:   pipe.ZRange(ctx, s.expKey(id), 0, -1),
				names: pipe.HGetAll(ctx, s.expNameKey(id)),
			}
		}
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}
	for i, id := range ids {
		doc := res[i].doc.Val()
		if len(doc) == 0 {
			continue
		}
		g := &ports.BoardGame{
			ID:          id,
			Name:        doc["name"],
			ReleaseYear: atoi(doc["releaseYear"]),
			Publisher:   doc["publisher"],
			MinPlayers:  atoi(doc["min_players"]),
			MaxPlayers:  atoi(doc["max_players"]),
			Kind:        ports.Kind(doc["type"]),
			BaseGameID:  doc["baseGame"],
			Standalone:  doc["standalone"] == "true",
			Expansions:  []ports.ExpansionRef{},
			CreatedAt:   parseStamp(doc["createdAt"]),
			UpdatedAt:   parseStamp(doc["updatedAt"]),
		}
		names := res[i].names.Val()
		for _, eid := range res[i].exp.Val() {
			g.Expansions = append(g.Expansions, ports.ExpansionRef{ID: eid, Name: names[eid]})
		}
		out = append(out, g)
	}
	return out, nil
}

func stamp(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func parseStamp(v string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, v)
	return t
}

func atoi(v string) int {
	n, _ := strconv.Atoi(v)
	return n
}
