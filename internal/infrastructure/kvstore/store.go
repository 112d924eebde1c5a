package kvstore

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ignatzorin/escrow-marketplace/internal/domain/repository"
)

type txKey struct{}

// Store: контейнер состояния поверх Database. Все изменения проходят через
// транзакции, которые выполняются строго по одной.
type Store struct {
	db Database
	mu sync.Mutex
}

func New(db Database) *Store {
	return &Store{db: db}
}

// Repositories собирает хранилища домена поверх одного Store.
func (s *Store) Repositories() repository.Store {
	return repository.Store{
		Jobs:       &JobRepository{store: s},
		Bids:       &BidRepository{store: s},
		Disputes:   &DisputeRepository{store: s},
		Ratings:    &RatingRepository{store: s},
		Ledger:     &Ledger{store: s},
		Transactor: s,
	}
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Ping проверяет, что хранилище отвечает на чтение.
func (s *Store) Ping(ctx context.Context) error {
	if _, err := s.db.Get([]byte("health")); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return ctx.Err()
}

// WithinTransaction выполняет fn в транзакции. Вложенный вызов переиспользует внешнюю.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*tx); ok {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := newTx(s.db)
	if err := fn(context.WithValue(ctx, txKey{}, t)); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	b := t.batch()
	if b.Len() == 0 {
		return nil
	}
	return s.db.Write(b)
}

// run выполняет fn в текущей транзакции или открывает новую.
func (s *Store) run(ctx context.Context, fn func(t *tx) error) error {
	return s.WithinTransaction(ctx, func(ctx context.Context) error {
		return fn(ctx.Value(txKey{}).(*tx))
	})
}

// reader возвращает транзакцию из контекста или чтение напрямую из базы.
func (s *Store) reader(ctx context.Context) reader {
	if t, ok := ctx.Value(txKey{}).(*tx); ok {
		return t
	}
	return s.db
}

type reader interface {
	Get(key []byte) ([]byte, error)
	Iterate(prefix []byte, fn func(key, value []byte) error) error
}

type pending struct {
	value   []byte
	deleted bool
}

// tx буферизует записи поверх базы до фиксации.
type tx struct {
	db     Database
	writes map[string]pending
}

func newTx(db Database) *tx {
	return &tx{db: db, writes: make(map[string]pending)}
}

func (t *tx) Get(key []byte) ([]byte, error) {
	if p, ok := t.writes[string(key)]; ok {
		if p.deleted {
			return nil, ErrNotFound
		}
		return p.value, nil
	}
	return t.db.Get(key)
}

func (t *tx) Put(key, value []byte) {
	t.writes[string(key)] = pending{value: value}
}

func (t *tx) Delete(key []byte) {
	t.writes[string(key)] = pending{deleted: true}
}

func (t *tx) Iterate(prefix []byte, fn func(key, value []byte) error) error {
	merged := make(map[string][]byte)
	err := t.db.Iterate(prefix, func(key, value []byte) error {
		merged[string(key)] = value
		return nil
	})
	if err != nil {
		return err
	}
	for k, p := range t.writes {
		if !strings.HasPrefix(k, string(prefix)) {
			continue
		}
		if p.deleted {
			delete(merged, k)
			continue
		}
		merged[k] = p.value
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := fn([]byte(k), merged[k]); err != nil {
			return err
		}
	}
	return nil
}

func (t *tx) batch() *Batch {
	keys := make([]string, 0, len(t.writes))
	for k := range t.writes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	b := &Batch{}
	for _, k := range keys {
		p := t.writes[k]
		if p.deleted {
			b.Delete([]byte(k))
			continue
		}
		b.Put([]byte(k), p.value)
	}
	return b
}

// nextSequence увеличивает счётчик и возвращает новое значение, начиная с 1.
func (t *tx) nextSequence(name string) (uint64, error) {
	key := []byte("counter/" + name)
	var current uint64
	raw, err := t.Get(key)
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		return 0, err
	default:
		if len(raw) != 8 {
			return 0, fmt.Errorf("counter %s: corrupted value", name)
		}
		current = binary.BigEndian.Uint64(raw)
	}

	next := current + 1
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, next)
	t.Put(key, buf)
	return next, nil
}

func (t *tx) putJSON(key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	t.Put([]byte(key), raw)
	return nil
}

// getJSON декодирует значение. Возвращает false, если ключ отсутствует.
func getJSON(r reader, key string, v interface{}) (bool, error) {
	raw, err := r.Get([]byte(key))
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func jobKey(id uint64) string {
	return fmt.Sprintf("job/%020d", id)
}

func bidPrefix(jobID uint64) string {
	return fmt.Sprintf("bid/%020d/", jobID)
}

func disputeKey(jobID uint64) string {
	return fmt.Sprintf("dispute/%020d", jobID)
}

func transferPrefix(jobID uint64) string {
	return fmt.Sprintf("transfer/%020d/", jobID)
}
