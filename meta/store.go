package meta

import (
	"context"
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/op/go-logging"
	"github.com/pkg/errors"
)

var log = logging.MustGetLogger("meta")

// ErrNotFound is returned by Search and by fetchers when no record exists for
// a hash.
var ErrNotFound = errors.New("meta not found")

const DefaultStoreSize = 1024

// Fetcher looks up records the store does not hold yet.
type Fetcher interface {
	Fetch(ctx context.Context, hash string) (*Record, error)
}

// Store is a bounded, hash addressed collection of records. It is safe for
// concurrent use.
type Store struct {
	records *lru.Cache[string, *Record]
	fetcher Fetcher
}

type StoreOption func(*storeOptions)

type storeOptions struct {
	size    int
	fetcher Fetcher
}

func WithSize(size int) StoreOption {
	return func(o *storeOptions) {
		o.size = size
	}
}

func WithFetcher(fetcher Fetcher) StoreOption {
	return func(o *storeOptions) {
		o.fetcher = fetcher
	}
}

func NewStore(opts ...StoreOption) *Store {
	options := storeOptions{size: DefaultStoreSize}
	for _, opt := range opts {
		opt(&options)
	}
	if options.size <= 0 {
		options.size = DefaultStoreSize
	}

	records, err := lru.New[string, *Record](options.size)
	if err != nil {
		// only returned for a non-positive size
		panic(err)
	}

	return &Store{
		records: records,
		fetcher: options.fetcher,
	}
}

// Add stores a record under hash, replacing any previous one.
func (self *Store) Add(hash string, record *Record) error {
	if !IsHash(hash) {
		return errors.Errorf("invalid meta hash %q", hash)
	}
	if record.Empty() {
		return errors.Errorf("empty meta record for %s", hash)
	}
	self.records.Add(NormalizeHash(hash), record)
	return nil
}

// Get returns the record held locally for hash.
func (self *Store) Get(hash string) (*Record, bool) {
	return self.records.Get(NormalizeHash(hash))
}

// Search returns the local record for hash or asks the fetcher for it,
// caching what it finds. It returns ErrNotFound when nothing resolves.
func (self *Store) Search(ctx context.Context, hash string) (*Record, error) {
	if record, ok := self.Get(hash); ok {
		return record, nil
	}
	if self.fetcher == nil {
		return nil, ErrNotFound
	}

	log.Debugf("searching meta %s", hash)
	record, err := self.fetcher.Fetch(ctx, NormalizeHash(hash))
	if err != nil {
		return nil, err
	}
	if record.Empty() {
		return nil, ErrNotFound
	}

	self.records.Add(NormalizeHash(hash), record)
	return record, nil
}

// Merge copies every record of other into this store.
func (self *Store) Merge(other *Store) {
	if other == nil || other == self {
		return
	}
	for _, hash := range other.records.Keys() {
		if record, ok := other.records.Peek(hash); ok {
			self.records.Add(hash, record)
		}
	}
}

// Hashes returns the hashes held locally, sorted.
func (self *Store) Hashes() []string {
	hashes := self.records.Keys()
	sort.Strings(hashes)
	return hashes
}

func (self *Store) Len() int {
	return self.records.Len()
}
