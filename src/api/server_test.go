package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/warp-contracts/market/src/api/response"
	"github.com/warp-contracts/market/src/coordinator"
	"github.com/warp-contracts/market/src/index"
	"github.com/warp-contracts/market/src/mint"
	"github.com/warp-contracts/market/src/utils/config"
	"github.com/warp-contracts/market/src/utils/ledger"
	"github.com/warp-contracts/market/src/utils/model"
	monitor_market "github.com/warp-contracts/market/src/utils/monitoring/market"
	"github.com/warp-contracts/market/src/utils/session"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// Content store acting as both the pinning service and the gateway
type fakeStore struct {
	mtx       sync.Mutex
	docs      map[string]*model.Document
	binaries  map[string][]byte
	onResolve func()
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		docs:     make(map[string]*model.Document),
		binaries: make(map[string][]byte),
	}
}

func (self *fakeStore) Resolve(ctx context.Context, uri string) (*model.Document, error) {
	self.mtx.Lock()
	hook := self.onResolve
	doc, ok := self.docs[uri]
	self.mtx.Unlock()

	if hook != nil {
		hook()
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", model.ErrUnresolvableContent, uri)
	}
	out := *doc
	return &out, nil
}

func (self *fakeStore) Locate(uri string) string {
	return strings.Replace(uri, "ipfs://", "https://gateway.test/ipfs/", 1)
}

func (self *fakeStore) UploadBinary(ctx context.Context, data []byte, name string) (string, error) {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	cid := fmt.Sprintf("bin%d", len(self.binaries))
	self.binaries[cid] = data
	return cid, nil
}

func (self *fakeStore) UploadDocument(ctx context.Context, doc *model.Document) (string, error) {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	cid := fmt.Sprintf("doc%d", len(self.docs))
	out := *doc
	self.docs["ipfs://"+cid] = &out
	return cid, nil
}

func (self *fakeStore) URI(cid string) string {
	return "ipfs://" + cid
}

func (self *fakeStore) put(uri, name string) {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	self.docs[uri] = &model.Document{Name: name, Image: uri + "/image"}
}

func newSigner(t require.TestingT) *ledger.KeySigner {
	key, err := crypto.GenerateKey()
	require.Nil(t, err)
	signer, err := ledger.NewKeySigner(common.Bytes2Hex(crypto.FromECDSA(key)))
	require.Nil(t, err)
	return signer
}

func TestServerTestSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

type ServerTestSuite struct {
	suite.Suite
	ctx         context.Context
	cancel      context.CancelFunc
	config      *config.Config
	alice       *ledger.KeySigner
	bob         *ledger.KeySigner
	store       *fakeStore
	ledger      *ledger.Memory
	session     *session.Session
	indexer     *index.Indexer
	coordinator *coordinator.Coordinator
	server      *Server
}

func (s *ServerTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.config = config.Default()
	s.config.IsDevelopment = true
	s.config.StopTimeout = 5 * time.Second
	s.alice = newSigner(s.T())
	s.bob = newSigner(s.T())
}

func (s *ServerTestSuite) TearDownSuite() {
	s.cancel()
}

func (s *ServerTestSuite) SetupTest() {
	s.store = newFakeStore()
	s.store.put("ipfs://a", "Alice's")
	s.store.put("ipfs://b", "Bob's")

	s.ledger = ledger.NewMemory("DA")
	s.ledger.Seed(s.alice.Address(), "ipfs://a")
	s.ledger.Seed(s.bob.Address(), "ipfs://b")

	monitor := monitor_market.NewMonitor(s.config)
	s.session = session.New()
	s.indexer = index.NewIndexer(s.config).
		WithLedger(s.ledger).
		WithResolver(s.store).
		WithMonitor(monitor)
	s.coordinator = coordinator.NewCoordinator(s.config).
		WithLedger(s.ledger).
		WithIndexer(s.indexer).
		WithMonitor(monitor)
	require.Nil(s.T(), s.coordinator.Start())

	minter := mint.NewMinter().
		WithUploader(s.store).
		WithLedger(s.ledger).
		WithCoordinator(s.coordinator).
		WithIndexer(s.indexer)

	s.server = NewServer(s.config).
		WithMonitor(monitor).
		WithSession(s.session).
		WithLedger(s.ledger).
		WithSigner(s.alice).
		WithIndexer(s.indexer).
		WithCoordinator(s.coordinator).
		WithMinter(minter)

	require.Nil(s.T(), s.session.Set(s.alice.Address().Hex()))
}

func (s *ServerTestSuite) TearDownTest() {
	s.coordinator.StopWait()
	s.indexer.Stop()
}

func (s *ServerTestSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.Nil(s.T(), err)
		reader = bytes.NewReader(buf)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.server.Router.ServeHTTP(w, req)
	return w
}

func (s *ServerTestSuite) decode(w *httptest.ResponseRecorder, out any) {
	require.Nil(s.T(), json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}

func (s *ServerTestSuite) assets(query string) (out response.GetAssets) {
	w := s.do(http.MethodGet, "/v1/assets"+query, nil)
	require.Equal(s.T(), http.StatusOK, w.Code, w.Body.String())
	s.decode(w, &out)
	return
}

func (s *ServerTestSuite) asset(id uint64) (out response.Asset) {
	w := s.do(http.MethodGet, fmt.Sprintf("/v1/assets/%d", id), nil)
	require.Equal(s.T(), http.StatusOK, w.Code, w.Body.String())
	s.decode(w, &out)
	return
}

func (s *ServerTestSuite) TestMonitoring() {
	require.Equal(s.T(), http.StatusOK, s.do(http.MethodGet, "/v1/health", nil).Code)

	w := s.do(http.MethodGet, "/v1/state", nil)
	require.Equal(s.T(), http.StatusOK, w.Code)
	require.Contains(s.T(), w.Body.String(), "indexer")

	w = s.do(http.MethodGet, "/metrics", nil)
	require.Equal(s.T(), http.StatusOK, w.Code)
	require.Contains(s.T(), w.Body.String(), "up_for_seconds")
}

func (s *ServerTestSuite) TestSession() {
	w := s.do(http.MethodPut, "/v1/session", map[string]string{"address": "nope"})
	require.Equal(s.T(), http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPut, "/v1/session", map[string]string{})
	require.Equal(s.T(), http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPut, "/v1/session", map[string]string{"address": s.bob.Address().Hex()})
	require.Equal(s.T(), http.StatusOK, w.Code)
	var snapshot session.Snapshot
	s.decode(w, &snapshot)
	require.Equal(s.T(), s.bob.Address(), snapshot.Address)
	require.True(s.T(), snapshot.Present)

	w = s.do(http.MethodDelete, "/v1/session", nil)
	require.Equal(s.T(), http.StatusOK, w.Code)
	s.decode(s.do(http.MethodGet, "/v1/session", nil), &snapshot)
	require.False(s.T(), snapshot.Present)
}

func (s *ServerTestSuite) TestAssets() {
	out := s.assets("")
	require.Equal(s.T(), uint64(2), out.Total)
	require.Len(s.T(), out.Assets, 2)

	require.Equal(s.T(), "Alice's", out.Assets[0].Name)
	require.Equal(s.T(), "https://gateway.test/ipfs/a/image", out.Assets[0].ImageURL)
	require.Equal(s.T(), "Not listed", out.Assets[0].Label)
	require.Equal(s.T(), []model.ActionKind{model.ActionKindTransfer, model.ActionKindList}, out.Assets[0].Actions)
	require.Empty(s.T(), out.Assets[1].Actions)

	out = s.assets("?filter=mine")
	require.Len(s.T(), out.Assets, 1)
	require.Equal(s.T(), uint64(0), out.Assets[0].Id)

	out = s.assets("?owner=" + s.bob.Address().Hex())
	require.Len(s.T(), out.Assets, 1)
	require.Equal(s.T(), uint64(1), out.Assets[0].Id)

	out = s.assets("?id=1")
	require.Len(s.T(), out.Assets, 1)
	require.Equal(s.T(), "Bob's", out.Assets[0].Name)

	out = s.assets("?filter=listed")
	require.Empty(s.T(), out.Assets)

	require.Equal(s.T(), http.StatusBadRequest, s.do(http.MethodGet, "/v1/assets?filter=bogus", nil).Code)
	require.Equal(s.T(), http.StatusBadRequest, s.do(http.MethodGet, "/v1/assets?id=x", nil).Code)

	s.session.Clear()
	require.Equal(s.T(), http.StatusForbidden, s.do(http.MethodGet, "/v1/assets?filter=mine", nil).Code)
}

func (s *ServerTestSuite) TestUnresolvableIsCounted() {
	s.ledger.Seed(s.bob.Address(), "ipfs://missing")

	out := s.assets("")
	require.Equal(s.T(), uint64(3), out.Total)
	require.Len(s.T(), out.Assets, 2)
	require.Equal(s.T(), 1, out.Unresolvable)

	require.Equal(s.T(), http.StatusBadGateway, s.do(http.MethodGet, "/v1/assets/2", nil).Code)
}

func (s *ServerTestSuite) TestSessionChangedDuringPass() {
	var once sync.Once
	s.store.mtx.Lock()
	s.store.onResolve = func() {
		once.Do(func() { _ = s.session.Set(s.bob.Address().Hex()) })
	}
	s.store.mtx.Unlock()

	w := s.do(http.MethodGet, "/v1/assets?filter=mine", nil)
	require.Equal(s.T(), http.StatusConflict, w.Code)
}

func (s *ServerTestSuite) TestAsset() {
	out := s.asset(1)
	require.Equal(s.T(), s.bob.Address(), out.Owner)
	require.Equal(s.T(), "DA", out.Symbol)

	require.Equal(s.T(), http.StatusNotFound, s.do(http.MethodGet, "/v1/assets/7", nil).Code)
	require.Equal(s.T(), http.StatusBadRequest, s.do(http.MethodGet, "/v1/assets/abc", nil).Code)
}

func (s *ServerTestSuite) TestListUnlist() {
	w := s.do(http.MethodPost, "/v1/assets/0/list", map[string]string{"price": "1.5"})
	require.Equal(s.T(), http.StatusOK, w.Code, w.Body.String())
	var tx model.PendingTransaction
	s.decode(w, &tx)
	require.Equal(s.T(), model.TransactionStatusConfirmed, tx.Status)

	out := s.asset(0)
	require.Equal(s.T(), "1.5", out.Price.String())
	require.Equal(s.T(), "Your listing", out.Label)

	require.Equal(s.T(), http.StatusConflict, s.do(http.MethodPost, "/v1/assets/0/list", map[string]string{"price": "2"}).Code)
	require.Equal(s.T(), http.StatusBadRequest, s.do(http.MethodPost, "/v1/assets/0/list", map[string]string{"price": "0"}).Code)
	require.Equal(s.T(), http.StatusBadRequest, s.do(http.MethodPost, "/v1/assets/0/list", nil).Code)

	out2 := s.assets("?filter=listed")
	require.Len(s.T(), out2.Assets, 1)

	require.Equal(s.T(), http.StatusOK, s.do(http.MethodPost, "/v1/assets/0/unlist", nil).Code)
	require.True(s.T(), s.asset(0).Price.IsZero())
	require.Equal(s.T(), http.StatusConflict, s.do(http.MethodPost, "/v1/assets/0/unlist", nil).Code)

	// Not the owner
	require.Equal(s.T(), http.StatusForbidden, s.do(http.MethodPost, "/v1/assets/1/list", map[string]string{"price": "1"}).Code)
}

func (s *ServerTestSuite) TestBuy() {
	receipt, err := s.ledger.List(s.ctx, s.bob, 1, big.NewInt(1000))
	require.Nil(s.T(), err)
	_, err = s.ledger.Confirm(s.ctx, receipt)
	require.Nil(s.T(), err)

	require.Equal(s.T(), "Listed", s.asset(1).Label)

	w := s.do(http.MethodPost, "/v1/assets/1/buy", nil)
	require.Equal(s.T(), http.StatusOK, w.Code, w.Body.String())

	out := s.asset(1)
	require.Equal(s.T(), s.alice.Address(), out.Owner)
	require.True(s.T(), out.Price.IsZero())

	require.Equal(s.T(), http.StatusConflict, s.do(http.MethodPost, "/v1/assets/1/buy", nil).Code)
	require.Equal(s.T(), http.StatusNotFound, s.do(http.MethodPost, "/v1/assets/9/buy", nil).Code)
}

func (s *ServerTestSuite) TestTransfer() {
	w := s.do(http.MethodGet, "/v1/assets/0/transfer?to="+s.bob.Address().Hex(), nil)
	require.Equal(s.T(), http.StatusOK, w.Code, w.Body.String())
	var preview coordinator.TransferPreview
	s.decode(w, &preview)
	require.Equal(s.T(), s.bob.Address(), preview.Recipient)
	require.Equal(s.T(), "DA", preview.Symbol)

	require.Equal(s.T(), http.StatusBadRequest, s.do(http.MethodPost, "/v1/assets/0/transfer", map[string]string{"to": "0x12"}).Code)
	require.Equal(s.T(), http.StatusForbidden, s.do(http.MethodPost, "/v1/assets/1/transfer", map[string]string{"to": s.bob.Address().Hex()}).Code)

	w = s.do(http.MethodPost, "/v1/assets/0/transfer", map[string]string{"to": s.bob.Address().Hex()})
	require.Equal(s.T(), http.StatusOK, w.Code, w.Body.String())
	require.Equal(s.T(), s.bob.Address(), s.asset(0).Owner)
}

func (s *ServerTestSuite) TestSignerMismatchIsRejected() {
	require.Nil(s.T(), s.session.Set(s.bob.Address().Hex()))
	w := s.do(http.MethodPost, "/v1/assets/1/unlist", nil)
	require.Equal(s.T(), http.StatusUnprocessableEntity, w.Code)

	s.session.Clear()
	w = s.do(http.MethodPost, "/v1/assets/0/unlist", nil)
	require.Equal(s.T(), http.StatusForbidden, w.Code)
}

func (s *ServerTestSuite) TestMint() {
	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "sunset.png")
	require.Nil(s.T(), err)
	_, err = part.Write([]byte("image"))
	require.Nil(s.T(), err)
	require.Nil(s.T(), writer.WriteField("name", "Sunset"))
	require.Nil(s.T(), writer.WriteField("description", "Orange sky"))
	require.Nil(s.T(), writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/assets", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	s.server.Router.ServeHTTP(w, req)
	require.Equal(s.T(), http.StatusOK, w.Code, w.Body.String())

	var out mint.Result
	s.decode(w, &out)
	require.Equal(s.T(), uint64(2), out.Asset.Id)
	require.Equal(s.T(), "Sunset", out.Asset.Name)
	require.Equal(s.T(), s.alice.Address().Hex(), out.Asset.CreatedBy)
	require.Equal(s.T(), "ipfs://bin0", out.Asset.ImageURI)

	require.Equal(s.T(), http.StatusBadRequest, s.do(http.MethodPost, "/v1/assets", nil).Code)
}

func (s *ServerTestSuite) TestPending() {
	receipt, err := s.ledger.List(s.ctx, s.alice, 0, big.NewInt(1))
	require.Nil(s.T(), err)
	_, err = s.ledger.Confirm(s.ctx, receipt)
	require.Nil(s.T(), err)

	release := s.ledger.HoldConfirmations()
	defer release()

	done := make(chan int, 1)
	go func() {
		done <- s.do(http.MethodPost, "/v1/assets/0/unlist", nil).Code
	}()

	var pending []*model.PendingTransaction
	require.Eventually(s.T(), func() bool {
		w := s.do(http.MethodGet, "/v1/transactions/pending", nil)
		if w.Code != http.StatusOK {
			return false
		}
		pending = nil
		s.decode(w, &pending)
		return len(pending) == 1
	}, 5*time.Second, 10*time.Millisecond)

	require.Equal(s.T(), model.ActionKindUnlist, pending[0].Kind)
	require.Equal(s.T(), model.TransactionStatusSubmitted, pending[0].Status)

	// Same action on the same asset is refused while the first one waits
	require.Equal(s.T(), http.StatusConflict, s.do(http.MethodPost, "/v1/assets/0/unlist", nil).Code)

	release()
	require.Equal(s.T(), http.StatusOK, <-done)
	require.Empty(s.T(), s.coordinator.Pending())
}
