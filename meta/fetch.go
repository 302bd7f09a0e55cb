package meta

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
	urlpkg "github.com/tliron/kutil/url"
)

// URLFetcher resolves a hash by reading "<source>/<hash>.json" from each
// source in turn. Sources may be local directories or network URLs.
type URLFetcher struct {
	Sources []string
}

func NewURLFetcher(sources ...string) *URLFetcher {
	return &URLFetcher{Sources: sources}
}

// Fetch implements Fetcher. A source that does not have the hash is skipped;
// a source that has it but cannot be read or decoded fails the fetch.
func (self *URLFetcher) Fetch(ctx context.Context, hash string) (*Record, error) {
	urlContext := urlpkg.NewContext()
	defer urlContext.Release()

	for _, source := range self.Sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path := strings.TrimSuffix(source, "/") + "/" + hash + ".json"
		url, err := urlpkg.NewValidURL(path, nil, urlContext)
		if err != nil {
			log.Debugf("%s: %s", path, err.Error())
			continue
		}

		content, err := urlpkg.ReadString(url)
		if err != nil {
			return nil, errors.Wrapf(err, "read meta %s", url.String())
		}

		var record Record
		if err := json.Unmarshal([]byte(content), &record); err != nil {
			return nil, errors.Wrapf(err, "decode meta %s", url.String())
		}
		return &record, nil
	}

	return nil, ErrNotFound
}
