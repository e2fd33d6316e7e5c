package pinata

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/warp-contracts/market/src/utils/config"
	"github.com/warp-contracts/market/src/utils/content"
	"github.com/warp-contracts/market/src/utils/model"
	monitor_market "github.com/warp-contracts/market/src/utils/monitoring/market"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// Stores pinned content in memory and serves it like a gateway
type fakePinata struct {
	mtx      sync.Mutex
	objects  map[string][]byte
	names    map[string]string
	versions map[string]int
}

func newFakePinata() *fakePinata {
	return &fakePinata{
		objects:  make(map[string][]byte),
		names:    make(map[string]string),
		versions: make(map[string]int),
	}
}

func cidOf(data []byte) string {
	sum := sha256.Sum256(data)
	return "bafy" + hex.EncodeToString(sum[:16])
}

func (self *fakePinata) store(data []byte, name string, version int) string {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	cid := cidOf(data)
	self.objects[cid] = data
	self.names[cid] = name
	self.versions[cid] = version
	return cid
}

func (self *fakePinata) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/ipfs/") {
		self.mtx.Lock()
		data, ok := self.objects[strings.TrimPrefix(r.URL.Path, "/ipfs/")]
		self.mtx.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write(data)
		return
	}

	if r.Header.Get("pinata_api_key") != "key" || r.Header.Get("pinata_secret_api_key") != "secret" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	var cid string
	switch r.URL.Path {
	case "/pinning/pinFileToIPFS":
		file, _, err := r.FormFile("file")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		data, _ := io.ReadAll(file)

		var meta metadata
		var opts options
		_ = json.Unmarshal([]byte(r.FormValue("pinataMetadata")), &meta)
		_ = json.Unmarshal([]byte(r.FormValue("pinataOptions")), &opts)
		cid = self.store(data, meta.Name, opts.CidVersion)
	case "/pinning/pinJSONToIPFS":
		var req struct {
			PinataContent  json.RawMessage `json:"pinataContent"`
			PinataMetadata metadata        `json:"pinataMetadata"`
			PinataOptions  options         `json:"pinataOptions"`
		}
		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil || len(req.PinataContent) == 0 {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		cid = self.store(req.PinataContent, req.PinataMetadata.Name, req.PinataOptions.CidVersion)
	default:
		w.WriteHeader(http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(PinResponse{IpfsHash: cid, PinSize: 1})
}

func TestClientTestSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

type ClientTestSuite struct {
	suite.Suite
	ctx      context.Context
	cancel   context.CancelFunc
	fake     *fakePinata
	server   *httptest.Server
	config   *config.Config
	monitor  *monitor_market.Monitor
	client   *Client
	resolver *content.Resolver
}

func (s *ClientTestSuite) SetupSuite() {
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.fake = newFakePinata()
	s.server = httptest.NewServer(s.fake)

	s.config = config.Default()
	s.config.Pinning.ApiUrl = s.server.URL
	s.config.Pinning.ApiKey = "key"
	s.config.Pinning.ApiSecret = "secret"
	s.config.Pinning.Limit = 100
	s.config.Content.RetryCount = 0

	s.monitor = monitor_market.NewMonitor(s.config)
	s.client = NewClient(&s.config.Pinning).WithMonitor(s.monitor)
	s.resolver = content.NewResolver(s.config).
		WithGateways([]string{s.server.URL + "/{scheme}/{address}"})
}

func (s *ClientTestSuite) TearDownSuite() {
	s.cancel()
	s.server.Close()
}

func (s *ClientTestSuite) TestUploadBinary() {
	data := []byte{0x89, 'P', 'N', 'G', 1, 2, 3}
	cid, err := s.client.UploadBinary(s.ctx, data, "sunset.png")
	require.Nil(s.T(), err)
	require.Equal(s.T(), cidOf(data), cid)
	require.Equal(s.T(), "ipfs://"+cid, s.client.URI(cid))

	s.fake.mtx.Lock()
	defer s.fake.mtx.Unlock()
	require.Equal(s.T(), data, s.fake.objects[cid])
	require.Equal(s.T(), "sunset.png", s.fake.names[cid])
	require.Equal(s.T(), 1, s.fake.versions[cid])
}

func (s *ClientTestSuite) TestUploadEmpty() {
	_, err := s.client.UploadBinary(s.ctx, nil, "empty")
	require.ErrorIs(s.T(), err, ErrEmptyContent)

	_, err = s.client.UploadDocument(s.ctx, nil)
	require.ErrorIs(s.T(), err, ErrEmptyContent)
}

func (s *ClientTestSuite) TestDocumentRoundTrip() {
	doc := &model.Document{
		Name:        "Sunset",
		Description: "Orange sky over the bay",
		Image:       "ipfs://bafyimage",
		CreatedBy:   "0x00000000000000000000000000000000000000aa",
		Symbol:      "DA",
	}
	cid, err := s.client.UploadDocument(s.ctx, doc)
	require.Nil(s.T(), err)

	resolved, err := s.resolver.Resolve(s.ctx, s.client.URI(cid))
	require.Nil(s.T(), err)
	require.Equal(s.T(), doc, resolved)
	require.GreaterOrEqual(s.T(), s.monitor.GetReport().Pinning.State.DocumentsUploaded.Load(), uint64(1))
}

func (s *ClientTestSuite) TestMissingCredentials() {
	cfg := s.config.Pinning
	cfg.ApiKey = ""
	cfg.ApiSecret = ""
	_, err := NewClient(&cfg).UploadBinary(s.ctx, []byte("x"), "x")
	require.ErrorIs(s.T(), err, ErrMissingCredentials)
}

func (s *ClientTestSuite) TestRejectedCredentials() {
	cfg := s.config.Pinning
	cfg.ApiSecret = "wrong"
	_, err := NewClient(&cfg).WithMonitor(s.monitor).UploadBinary(s.ctx, []byte("x"), "x")
	require.NotNil(s.T(), err)
	require.GreaterOrEqual(s.T(), s.monitor.GetReport().Pinning.Errors.Upload.Load(), uint64(1))
}
