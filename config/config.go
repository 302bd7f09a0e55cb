// Package config loads rainconfig files. A rainconfig is JSON or Jsonnet and
// names the metadata the language server starts with.
package config

import (
	"encoding/json"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/go-jsonnet"
	"github.com/op/go-logging"
	"github.com/pkg/errors"
	urlpkg "github.com/tliron/kutil/url"

	"github.com/rainlang/rainlsp/meta"
)

var log = logging.MustGetLogger("config")

// DefaultFilename is looked up in the working directory when no path is given.
const DefaultFilename = "rainconfig.json"

type Config struct {
	// Include lists files that each hold a hash to record map. Relative
	// paths are resolved against the directory of the rainconfig.
	Include []string `json:"include,omitempty"`
	// Metas are records given inline, keyed by hash.
	Metas map[string]*meta.Record `json:"metas,omitempty"`
	// Sources are base URLs or directories searched for unknown hashes.
	Sources []string `json:"sources,omitempty"`
	// NoMetaSearch turns off searching sources while parsing.
	NoMetaSearch bool `json:"noMetaSearch,omitempty"`
	// CacheSize bounds the meta store, meta.DefaultStoreSize when zero.
	CacheSize int `json:"cacheSize,omitempty"`

	dir string
}

// Load reads and evaluates the rainconfig at path.
func Load(path string) (*Config, error) {
	content, err := read(path)
	if err != nil {
		return nil, err
	}

	config, err := Parse(path, content)
	if err != nil {
		return nil, err
	}
	config.dir = filepath.Dir(path)
	return config, nil
}

// Parse evaluates content as Jsonnet, which plain JSON also is. The filename
// only shows up in error messages.
func Parse(filename string, content string) (*Config, error) {
	vm := jsonnet.MakeVM()
	evaluated, err := vm.EvaluateAnonymousSnippet(filename, content)
	if err != nil {
		return nil, errors.Wrapf(err, "evaluate %s", filename)
	}

	var config Config
	if err := json.Unmarshal([]byte(evaluated), &config); err != nil {
		return nil, errors.Wrapf(err, "decode %s", filename)
	}
	if config.CacheSize < 0 {
		return nil, errors.Errorf("%s: cacheSize must not be negative", filename)
	}
	return &config, nil
}

// Store builds a meta store holding the inline and included records, with
// a fetcher for the configured sources.
func (self *Config) Store() (*meta.Store, error) {
	return self.store(false)
}

// ForceStore is Store that skips the includes and records it cannot use,
// logging each one instead of failing.
func (self *Config) ForceStore() *meta.Store {
	store, _ := self.store(true)
	return store
}

func (self *Config) store(force bool) (*meta.Store, error) {
	var opts []meta.StoreOption
	if self.CacheSize > 0 {
		opts = append(opts, meta.WithSize(self.CacheSize))
	}
	if len(self.Sources) > 0 {
		opts = append(opts, meta.WithFetcher(meta.NewURLFetcher(self.Sources...)))
	}
	store := meta.NewStore(opts...)

	if err := addRecords(store, self.Metas, "metas", force); err != nil {
		return nil, err
	}
	for _, include := range self.Include {
		path := self.resolve(include)
		records, err := readRecords(path)
		if err == nil {
			err = addRecords(store, records, path, force)
		}
		if err != nil {
			if !force {
				return nil, err
			}
			log.Warningf("skipping %s", err.Error())
		}
	}

	log.Infof("meta store holds %d records", store.Len())
	return store, nil
}

func readRecords(path string) (map[string]*meta.Record, error) {
	content, err := read(path)
	if err != nil {
		return nil, err
	}
	var records map[string]*meta.Record
	if err := json.Unmarshal([]byte(content), &records); err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	return records, nil
}

func (self *Config) resolve(path string) string {
	if filepath.IsAbs(path) || strings.Contains(path, "://") || self.dir == "" {
		return path
	}
	return filepath.Join(self.dir, path)
}

func addRecords(store *meta.Store, records map[string]*meta.Record, from string, force bool) error {
	hashes := make([]string, 0, len(records))
	for hash := range records {
		hashes = append(hashes, hash)
	}
	sort.Strings(hashes)

	for _, hash := range hashes {
		if err := store.Add(hash, records[hash]); err != nil {
			if !force {
				return errors.Wrapf(err, "%s: %s", from, hash)
			}
			log.Warningf("skipping %s: %s", from, err.Error())
		}
	}
	return nil
}

func read(path string) (string, error) {
	urlContext := urlpkg.NewContext()
	defer urlContext.Release()

	url, err := urlpkg.NewValidURL(path, nil, urlContext)
	if err != nil {
		return "", errors.Wrapf(err, "open %s", path)
	}
	content, err := urlpkg.ReadString(url)
	if err != nil {
		return "", errors.Wrapf(err, "read %s", path)
	}
	return content, nil
}
