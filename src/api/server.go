package api

import (
	"context"
	"net/http"
	"runtime"

	"github.com/warp-contracts/market/src/coordinator"
	"github.com/warp-contracts/market/src/index"
	"github.com/warp-contracts/market/src/mint"
	"github.com/warp-contracts/market/src/utils/config"
	"github.com/warp-contracts/market/src/utils/ledger"
	"github.com/warp-contracts/market/src/utils/monitoring"
	"github.com/warp-contracts/market/src/utils/session"
	"github.com/warp-contracts/market/src/utils/task"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/teivah/onecontext"
)

// REST API of the marketplace
type Server struct {
	*task.Task

	httpServer *http.Server
	Router     *gin.Engine
	registry   *prometheus.Registry

	monitor     monitoring.Monitor
	session     *session.Session
	ledger      ledger.Reader
	signer      ledger.Signer
	indexer     *index.Indexer
	coordinator *coordinator.Coordinator
	minter      *mint.Minter
}

func NewServer(config *config.Config) (self *Server) {
	self = new(Server)

	self.Task = task.NewTask(config, "server").
		WithSubtaskFunc(self.run).
		WithOnStop(self.stop)

	if !config.IsDevelopment {
		gin.SetMode(gin.ReleaseMode)
	}

	self.Router = gin.New()
	self.Router.Use(gin.Recovery())

	self.registry = prometheus.NewRegistry()

	self.httpServer = &http.Server{
		Addr:    self.Config.RESTListenAddress,
		Handler: self.Router,
	}

	if config.Profiler.Enabled {
		runtime.SetBlockProfileRate(config.Profiler.BlockProfileRate)
		pprof.Register(self.Router)
	}

	self.routes()

	return
}

func (self *Server) WithMonitor(monitor monitoring.Monitor) *Server {
	self.monitor = monitor
	self.registry.MustRegister(monitor.GetPrometheusCollector())
	return self
}

func (self *Server) WithSession(session *session.Session) *Server {
	self.session = session
	return self
}

func (self *Server) WithLedger(ledger ledger.Reader) *Server {
	self.ledger = ledger
	return self
}

// Signs every write. Nil makes the API read only.
func (self *Server) WithSigner(signer ledger.Signer) *Server {
	self.signer = signer
	return self
}

func (self *Server) WithIndexer(indexer *index.Indexer) *Server {
	self.indexer = indexer
	return self
}

func (self *Server) WithCoordinator(coordinator *coordinator.Coordinator) *Server {
	self.coordinator = coordinator
	return self
}

func (self *Server) WithMinter(minter *mint.Minter) *Server {
	self.minter = minter
	return self
}

func (self *Server) routes() {
	self.Router.GET("metrics", gin.WrapH(promhttp.HandlerFor(self.registry, promhttp.HandlerOpts{})))

	v1 := self.Router.Group("v1")
	{
		v1.GET("health", self.onGetHealth)
		v1.GET("state", self.onGetState)

		v1.GET("session", self.onGetSession)
		v1.PUT("session", self.onPutSession)
		v1.DELETE("session", self.onDeleteSession)

		v1.GET("assets", self.onGetAssets)
		v1.POST("assets", self.onMint)
		v1.GET("assets/:id", self.onGetAsset)
		v1.GET("assets/:id/transfer", self.onPreviewTransfer)
		v1.POST("assets/:id/transfer", self.onTransfer)
		v1.POST("assets/:id/list", self.onList)
		v1.POST("assets/:id/unlist", self.onUnlist)
		v1.POST("assets/:id/buy", self.onBuy)

		v1.GET("transactions/pending", self.onGetPending)
	}
}

// Cancelled when either the request or the server is done
func (self *Server) context(c *gin.Context) (context.Context, context.CancelFunc) {
	return onecontext.Merge(self.Ctx, c.Request.Context())
}

func (self *Server) onGetHealth(c *gin.Context) {
	self.monitor.OnGetHealth(c)
}

func (self *Server) onGetState(c *gin.Context) {
	self.monitor.OnGetState(c)
}

func (self *Server) run() (err error) {
	err = self.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		self.Log.WithError(err).Error("Failed to start REST server")
		return
	}
	return nil
}

func (self *Server) stop() {
	ctx, cancel := context.WithTimeout(context.Background(), self.Config.StopTimeout)
	defer cancel()

	err := self.httpServer.Shutdown(ctx)
	if err != nil {
		self.Log.WithError(err).Error("Failed to gracefully shutdown REST server")
		return
	}
}
