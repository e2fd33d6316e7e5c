package session

import (
	"fmt"
	"strings"
	"sync"

	"github.com/warp-contracts/market/src/utils/logger"
	"github.com/warp-contracts/market/src/utils/model"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
)

// Identity the user acts as at one instant
type Snapshot struct {
	Address common.Address `json:"address"`
	Present bool           `json:"present"`
	Version uint64         `json:"version"`
}

func (self Snapshot) Is(address common.Address) bool {
	return self.Present && self.Address == address
}

type subscriber struct {
	ch chan Snapshot
}

// Holds the current account and notifies subscribers about changes
type Session struct {
	log *logrus.Entry

	mtx         sync.Mutex
	current     Snapshot
	subscribers map[uint64]*subscriber
	nextId      uint64
}

func New() (self *Session) {
	self = new(Session)
	self.log = logger.NewSublogger("session")
	self.subscribers = make(map[uint64]*subscriber)
	return
}

// Replaces the active identity
func (self *Session) Set(address string) (err error) {
	address = strings.TrimSpace(address)
	if !common.IsHexAddress(address) {
		return fmt.Errorf("%w: %q is not an address", model.ErrInvalidInput, address)
	}

	self.update(Snapshot{Address: common.HexToAddress(address), Present: true})
	return
}

func (self *Session) Clear() {
	self.update(Snapshot{})
}

func (self *Session) update(next Snapshot) {
	self.mtx.Lock()
	defer self.mtx.Unlock()

	next.Version = self.current.Version + 1
	self.current = next

	self.log.WithField("address", next.Address.Hex()).
		WithField("present", next.Present).
		WithField("version", next.Version).
		Debug("Session changed")

	for _, sub := range self.subscribers {
		notify(sub.ch, next)
	}
}

// Latest wins: a value the subscriber hasn't read yet is replaced
func notify(ch chan Snapshot, snapshot Snapshot) {
	for {
		select {
		case ch <- snapshot:
			return
		default:
		}

		select {
		case <-ch:
		default:
		}
	}
}

func (self *Session) Current() Snapshot {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	return self.current
}

// False if the session changed since the snapshot was taken
func (self *Session) IsCurrent(snapshot Snapshot) bool {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	return self.current.Version == snapshot.Version
}

// Channel receives every change. Call the returned function to unsubscribe.
func (self *Session) Subscribe(buffer int) (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, max(1, buffer))

	self.mtx.Lock()
	id := self.nextId
	self.nextId++
	self.subscribers[id] = &subscriber{ch: ch}
	self.mtx.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			self.mtx.Lock()
			delete(self.subscribers, id)
			self.mtx.Unlock()
			close(ch)
		})
	}
}
