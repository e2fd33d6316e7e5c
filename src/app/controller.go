package app

import (
	"errors"

	"github.com/warp-contracts/market/src/api"
	"github.com/warp-contracts/market/src/coordinator"
	"github.com/warp-contracts/market/src/index"
	"github.com/warp-contracts/market/src/mint"
	"github.com/warp-contracts/market/src/utils/config"
	"github.com/warp-contracts/market/src/utils/content"
	"github.com/warp-contracts/market/src/utils/ledger"
	"github.com/warp-contracts/market/src/utils/model"
	monitor_market "github.com/warp-contracts/market/src/utils/monitoring/market"
	"github.com/warp-contracts/market/src/utils/pinata"
	"github.com/warp-contracts/market/src/utils/publisher"
	"github.com/warp-contracts/market/src/utils/session"
	"github.com/warp-contracts/market/src/utils/task"
)

type Controller struct {
	*task.Task

	Monitor     *monitor_market.Monitor
	Ledger      ledger.Ledger
	Signer      ledger.Signer
	Resolver    *content.Resolver
	Pinata      *pinata.Client
	Indexer     *index.Indexer
	Coordinator *coordinator.Coordinator
	Minter      *mint.Minter
	Session     *session.Session
}

//	+----------+      +---------+      +----------+
//	|  Ledger  |<-----+ Indexer |----->| Resolver |
//	+----+-----+      +----+----+      +----------+
//	     ^                 ^
//	     |                 |
//	+----+--------+   +----+---+      +----------+
//	| Coordinator |<--+ Minter +----->|  Pinata  |
//	+----+--------+   +--------+      +----------+
//	     |
//	     | finished transactions
//	     v
//	+-----------------+
//	| Redis publisher |
//	+-----------------+
//
// Everything the marketplace needs, will start upon calling Controller.Start()
func NewController(config *config.Config) (self *Controller, err error) {
	self = new(Controller)
	self.Task = task.NewTask(config, "controller").
		WithOnAfterStop(self.close)

	self.Ledger, err = ledger.New(self.Ctx, config)
	if err != nil {
		return
	}

	self.Signer, err = ledger.NewSigner(config)
	if errors.Is(err, ledger.ErrSignerMissing) {
		self.Log.Warn("No private key configured, writes are disabled")
		err = nil
	}
	if err != nil {
		return
	}

	self.Monitor = monitor_market.NewMonitor(config)

	self.Resolver = content.NewResolver(config).
		WithMonitor(self.Monitor)

	self.Pinata = pinata.NewClient(&config.Pinning).
		WithMonitor(self.Monitor)

	self.Indexer = index.NewIndexer(config).
		WithLedger(self.Ledger).
		WithResolver(self.Resolver).
		WithMonitor(self.Monitor)

	self.Coordinator = coordinator.NewCoordinator(config).
		WithLedger(self.Ledger).
		WithIndexer(self.Indexer).
		WithMonitor(self.Monitor)

	self.Minter = mint.NewMinter().
		WithUploader(self.Pinata).
		WithLedger(self.Ledger).
		WithCoordinator(self.Coordinator).
		WithIndexer(self.Indexer)

	self.Session = session.New()

	self.Task.
		WithSubtask(self.Monitor.Task).
		WithSubtask(self.Indexer.Task).
		WithSubtask(self.Coordinator.Task)
	return
}

// Adds the REST API and, if enabled, publishing of finished transactions
func (self *Controller) WithServer() *Controller {
	server := api.NewServer(self.Config).
		WithMonitor(self.Monitor).
		WithSession(self.Session).
		WithLedger(self.Ledger).
		WithSigner(self.Signer).
		WithIndexer(self.Indexer).
		WithCoordinator(self.Coordinator).
		WithMinter(self.Minter)

	redisPublisher := publisher.NewRedisPublisher[*model.PendingTransaction](self.Config, "transaction-publisher").
		WithInputChannel(self.Coordinator.Output).
		WithMonitor(self.Monitor)

	self.Task.
		WithSubtask(server.Task).
		WithConditionalSubtask(self.Config.Redis.Enabled, redisPublisher.Task)
	return self
}

func (self *Controller) close() {
	closer, ok := self.Ledger.(interface{ Close() })
	if ok {
		closer.Close()
	}
}
