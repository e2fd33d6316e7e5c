package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/warp-contracts/market/src/utils/config"
	"github.com/warp-contracts/market/src/utils/model"
	"github.com/warp-contracts/market/src/utils/monitoring"
)

// Fetches description documents through HTTP gateways.
// Gateways are tried in order until one answers. Nothing is cached.
type Resolver struct {
	*BaseClient

	gateways []string
	monitor  monitoring.Monitor
}

func NewResolver(config *config.Config) (self *Resolver) {
	self = new(Resolver)
	self.BaseClient = newBaseClient(config)
	self.gateways = config.Content.Gateways
	return
}

func (self *Resolver) WithGateways(gateways []string) *Resolver {
	self.gateways = gateways
	return self
}

func (self *Resolver) WithMonitor(monitor monitoring.Monitor) *Resolver {
	self.monitor = monitor
	return self
}

// HTTP locations of the content, in the order they should be tried
func (self *Resolver) Locations(uri string) (out []string, err error) {
	parsed, err := ParseURI(uri)
	if err != nil {
		return
	}

	if parsed.IsHTTP() {
		return []string{parsed.String()}, nil
	}

	out = make([]string, 0, len(self.gateways))
	for _, gateway := range self.gateways {
		out = append(out, parsed.Expand(gateway))
	}
	return
}

// HTTP location of the content at the first gateway, empty if uri can't be parsed
func (self *Resolver) Locate(uri string) string {
	locations, err := self.Locations(uri)
	if err != nil || len(locations) == 0 {
		return ""
	}
	return locations[0]
}

func (self *Resolver) fetch(ctx context.Context, location string) (body []byte, err error) {
	ctx, cancel := context.WithTimeout(ctx, self.config.Content.RequestTimeout)
	defer cancel()

	if self.monitor != nil {
		self.monitor.GetReport().Content.State.GatewayRequests.Inc()
	}

	resp, err := self.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		Get(location)
	if err != nil {
		return
	}
	return resp.Body(), nil
}

// Downloads and parses the description document
func (self *Resolver) Resolve(ctx context.Context, uri string) (doc *model.Document, err error) {
	locations, err := self.Locations(uri)
	if err != nil {
		self.onUnresolvable()
		return
	}

	var lastErr error
	for _, location := range locations {
		var body []byte
		body, lastErr = self.fetch(ctx, location)
		if errors.Is(lastErr, ErrBodyTooLarge) {
			// Same bytes behind every gateway
			if self.monitor != nil {
				self.monitor.GetReport().Content.Errors.Malformed.Inc()
			}
			return nil, fmt.Errorf("%w: %s: %w", model.ErrMalformedContent, location, lastErr)
		}
		if lastErr != nil {
			self.log.WithError(lastErr).WithField("location", location).Debug("Gateway failed")
			if self.monitor != nil {
				self.monitor.GetReport().Content.Errors.GatewayFailures.Inc()
			}
			if ctx.Err() != nil {
				break
			}
			continue
		}

		doc = new(model.Document)
		err = json.Unmarshal(body, doc)
		if err != nil {
			// Content addressing makes other gateways return the same bytes
			if self.monitor != nil {
				self.monitor.GetReport().Content.Errors.Malformed.Inc()
			}
			return nil, fmt.Errorf("%w: %s: %v", model.ErrMalformedContent, location, err)
		}

		if self.monitor != nil {
			self.monitor.GetReport().Content.State.Resolved.Inc()
		}
		return
	}

	self.onUnresolvable()
	if lastErr == nil {
		lastErr = errors.New("no gateways")
	}
	return nil, fmt.Errorf("%w: %s: %v", model.ErrUnresolvableContent, uri, lastErr)
}

func (self *Resolver) onUnresolvable() {
	if self.monitor != nil {
		self.monitor.GetReport().Content.Errors.Unresolvable.Inc()
	}
}
