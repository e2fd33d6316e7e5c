package content

import (
	"fmt"
	"strings"

	"github.com/warp-contracts/market/src/utils/model"
)

// Content address in form scheme://address
type URI struct {
	Scheme  string
	Address string
}

func ParseURI(uri string) (out URI, err error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		err = fmt.Errorf("%w: empty address", model.ErrUnresolvableContent)
		return
	}

	scheme, address, found := strings.Cut(uri, "://")
	if !found || scheme == "" {
		err = fmt.Errorf("%w: %q is not a content address", model.ErrUnresolvableContent, uri)
		return
	}

	out.Scheme = strings.ToLower(scheme)
	out.Address = strings.TrimLeft(address, "/")

	// ipfs://ipfs/<cid> is still produced by some tools
	out.Address = strings.TrimPrefix(out.Address, out.Scheme+"/")

	if out.Address == "" {
		err = fmt.Errorf("%w: empty address", model.ErrUnresolvableContent)
	}
	return
}

// Plain HTTP locations are fetched as they are
func (self URI) IsHTTP() bool {
	return self.Scheme == "http" || self.Scheme == "https"
}

func (self URI) String() string {
	return self.Scheme + "://" + self.Address
}

// Fills a gateway template, e.g. https://nftstorage.link/{scheme}/{address}
func (self URI) Expand(template string) string {
	return strings.NewReplacer("{scheme}", self.Scheme, "{address}", self.Address).Replace(template)
}
