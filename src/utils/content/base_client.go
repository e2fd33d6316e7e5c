package content

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/warp-contracts/market/src/utils/build_info"
	"github.com/warp-contracts/market/src/utils/config"
	"github.com/warp-contracts/market/src/utils/logger"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// HTTP client shared by all gateways, rate limited per host
type BaseClient struct {
	client *resty.Client
	config *config.Config
	log    *logrus.Entry

	// State
	mtx      sync.Mutex
	limiters map[string]*rate.Limiter
}

func newBaseClient(config *config.Config) (self *BaseClient) {
	self = new(BaseClient)
	self.config = config
	self.log = logger.NewSublogger("content-client")

	self.limiters = make(map[string]*rate.Limiter)

	self.client =
		resty.New().
			SetTimeout(self.config.Content.RequestTimeout).
			SetHeader("User-Agent", "warp.cc/market/"+build_info.Version).
			SetRetryCount(self.config.Content.RetryCount).
			SetRetryWaitTime(100 * time.Millisecond).
			SetRetryMaxWaitTime(time.Second).
			SetLogger(logger.NewRestyLogger("content-resty")).
			SetTransport(self.createTransport()).
			AddRetryCondition(self.onRetryCondition).
			OnBeforeRequest(self.onRateLimit).
			OnAfterResponse(self.onStatusToError)

	return
}

func (self *BaseClient) createTransport() http.RoundTripper {
	dialer := &net.Dialer{
		Timeout:   self.config.Content.DialerTimeout,
		KeepAlive: self.config.Content.DialerKeepAlive,
	}

	transport := &http.Transport{
		// Some config options disable http2, try it anyway
		ForceAttemptHTTP2: true,

		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   self.config.Content.TLSHandshakeTimeout,
		ExpectContinueTimeout: 1 * time.Second,

		IdleConnTimeout:     self.config.Content.IdleConnTimeout,
		MaxIdleConnsPerHost: self.config.Content.MaxIdleConnsPerHost,
	}

	if self.config.Content.MaxBodySize <= 0 {
		return transport
	}
	return &limitedTransport{next: transport, limit: self.config.Content.MaxBodySize}
}

func (self *BaseClient) onStatusToError(c *resty.Client, resp *resty.Response) error {
	// Non-success status code turns into an error
	if resp.IsSuccess() {
		return nil
	}
	if resp.StatusCode() > 399 && resp.StatusCode() < 500 {
		self.log.WithField("status", resp.StatusCode()).
			WithField("url", resp.Request.URL).
			Debug("Bad request")
	}
	return fmt.Errorf("unexpected status: %s", resp.Status())
}

// Returns true if request should be retried on the same gateway
func (self *BaseClient) onRetryCondition(resp *resty.Response, err error) bool {
	if resp == nil || resp.RawResponse == nil {
		// Connection failed, next gateway will be tried
		return false
	}

	if resp.StatusCode() == http.StatusTooManyRequests {
		// Remote host receives too much requests, adjust rate limit
		url, err := url.ParseRequestURI(resp.Request.URL)
		if err == nil {
			self.decrementLimit(url.Host)
		}
		return false
	}

	// Server side errors may be retried
	return resp.StatusCode() >= 500
}

func (self *BaseClient) decrementLimit(host string) {
	self.mtx.Lock()
	defer self.mtx.Unlock()

	limiter, ok := self.limiters[host]
	if !ok {
		return
	}

	self.log.WithField("host", host).Debug("Decreasing limit")
	limiter.SetLimit(limiter.Limit() * 0.9)
}

func (self *BaseClient) onRateLimit(c *resty.Client, req *resty.Request) (err error) {
	url, err := url.ParseRequestURI(req.URL)
	if err != nil {
		return
	}

	self.mtx.Lock()
	limiter, ok := self.limiters[url.Host]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(self.config.Content.Limit), max(1, int(self.config.Content.Limit)))
		self.limiters[url.Host] = limiter
	}
	self.mtx.Unlock()

	// Blocks till the request is possible
	// Or ctx gets canceled
	err = limiter.Wait(req.Context())
	if err != nil {
		self.log.WithField("host", url.Host).WithError(err).Debug("Rate limiting failed")
	}
	return
}
