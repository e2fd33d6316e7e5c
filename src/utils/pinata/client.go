package pinata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/warp-contracts/market/src/utils/build_info"
	"github.com/warp-contracts/market/src/utils/config"
	"github.com/warp-contracts/market/src/utils/logger"
	"github.com/warp-contracts/market/src/utils/model"
	"github.com/warp-contracts/market/src/utils/monitoring"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
)

// Uploads content to the Pinata pinning service
type Client struct {
	client  *resty.Client
	config  *config.Pinning
	log     *logrus.Entry
	limiter ratelimit.Limiter
	monitor monitoring.Monitor
}

func NewClient(config *config.Pinning) (self *Client) {
	self = new(Client)
	self.config = config
	self.log = logger.NewSublogger("pinata")
	self.limiter = ratelimit.New(max(1, config.Limit))

	self.client = resty.New().
		SetBaseURL(config.ApiUrl).
		SetTimeout(config.RequestTimeout).
		SetHeader("User-Agent", "warp.cc/market/"+build_info.Version).
		SetLogger(logger.NewRestyLogger("pinata-resty")).
		OnBeforeRequest(self.onAuthenticate).
		OnAfterResponse(self.onStatusToError)
	return
}

func (self *Client) WithMonitor(monitor monitoring.Monitor) *Client {
	self.monitor = monitor
	return self
}

// Content address of an uploaded cid, e.g. ipfs://bafy...
func (self *Client) URI(cid string) string {
	return self.config.Scheme + "://" + cid
}

func (self *Client) onAuthenticate(c *resty.Client, req *resty.Request) error {
	if self.config.Jwt != "" {
		req.SetAuthToken(self.config.Jwt)
		return nil
	}
	if self.config.ApiKey == "" || self.config.ApiSecret == "" {
		return ErrMissingCredentials
	}
	req.SetHeader("pinata_api_key", self.config.ApiKey)
	req.SetHeader("pinata_secret_api_key", self.config.ApiSecret)
	return nil
}

func (self *Client) onStatusToError(c *resty.Client, resp *resty.Response) error {
	if resp.IsSuccess() {
		return nil
	}
	self.log.WithField("status", resp.StatusCode()).
		WithField("body", string(resp.Body())).
		Debug("Upload failed")
	return fmt.Errorf("unexpected status: %s", resp.Status())
}

func (self *Client) options() string {
	buf, _ := json.Marshal(options{CidVersion: self.config.CidVersion})
	return string(buf)
}

func (self *Client) onResponse(resp *resty.Response, err error, size int) (string, error) {
	if err != nil {
		if self.monitor != nil {
			self.monitor.GetReport().Pinning.Errors.Upload.Inc()
		}
		return "", err
	}

	out, ok := resp.Result().(*PinResponse)
	if !ok {
		return "", ErrFailedToParse
	}
	if out.IpfsHash == "" {
		return "", ErrEmptyHash
	}

	if self.monitor != nil {
		self.monitor.GetReport().Pinning.State.BytesUploaded.Add(uint64(size))
	}
	return out.IpfsHash, nil
}

// Pins a file, returns its cid
func (self *Client) UploadBinary(ctx context.Context, data []byte, name string) (cid string, err error) {
	if len(data) == 0 {
		err = ErrEmptyContent
		return
	}

	meta, err := json.Marshal(metadata{Name: name})
	if err != nil {
		return
	}

	self.limiter.Take()

	resp, err := self.client.R().
		SetContext(ctx).
		SetFileReader("file", name, bytes.NewReader(data)).
		SetFormData(map[string]string{
			"pinataMetadata": string(meta),
			"pinataOptions":  self.options(),
		}).
		SetResult(&PinResponse{}).
		ForceContentType("application/json").
		Post("/pinning/pinFileToIPFS")

	cid, err = self.onResponse(resp, err, len(data))
	if err != nil {
		self.log.WithError(err).WithField("name", name).Error("Failed to pin file")
		return
	}

	if self.monitor != nil {
		self.monitor.GetReport().Pinning.State.BinariesUploaded.Inc()
	}
	self.log.WithField("cid", cid).WithField("size", len(data)).Debug("Pinned file")
	return
}

// Pins the description document, returns its cid
func (self *Client) UploadDocument(ctx context.Context, doc *model.Document) (cid string, err error) {
	if doc == nil {
		err = ErrEmptyContent
		return
	}

	body, err := json.Marshal(pinJSONRequest{
		PinataContent:  doc,
		PinataMetadata: metadata{Name: doc.Name},
		PinataOptions:  options{CidVersion: self.config.CidVersion},
	})
	if err != nil {
		return
	}

	self.limiter.Take()

	resp, err := self.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&PinResponse{}).
		ForceContentType("application/json").
		Post("/pinning/pinJSONToIPFS")

	cid, err = self.onResponse(resp, err, len(body))
	if err != nil {
		self.log.WithError(err).WithField("name", doc.Name).Error("Failed to pin document")
		return
	}

	if self.monitor != nil {
		self.monitor.GetReport().Pinning.State.DocumentsUploaded.Inc()
	}
	self.log.WithField("cid", cid).Debug("Pinned document")
	return
}
