package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

type ActionKind string

const (
	ActionKindMint     ActionKind = "mint"
	ActionKindTransfer ActionKind = "transfer"
	ActionKindList     ActionKind = "list"
	ActionKindUnlist   ActionKind = "unlist"
	ActionKindBuy      ActionKind = "buy"
)

type TransactionStatus string

const (
	TransactionStatusSubmitted TransactionStatus = "submitted"
	TransactionStatusConfirmed TransactionStatus = "confirmed"
	TransactionStatusFailed    TransactionStatus = "failed"
)

// Write call dispatched to the ledger
type PendingTransaction struct {
	Id          string            `json:"id"`
	Kind        ActionKind        `json:"kind"`
	AssetId     uint64            `json:"assetId"`
	Submitter   common.Address    `json:"submitter"`
	Hash        common.Hash       `json:"hash"`
	Status      TransactionStatus `json:"status"`
	Reason      string            `json:"reason,omitempty"`
	BlockNumber uint64            `json:"blockNumber,omitempty"`
	SubmittedAt time.Time         `json:"submittedAt"`
	FinishedAt  time.Time         `json:"finishedAt,omitempty"`
}

// Registry key. Mint has no asset id before inclusion, it's keyed by the submitter.
func (self *PendingTransaction) Key() string {
	return PendingKey(self.Kind, self.AssetId, self.Submitter)
}

func PendingKey(kind ActionKind, assetId uint64, submitter common.Address) string {
	if kind == ActionKindMint {
		return fmt.Sprintf("%s:%s", kind, submitter.Hex())
	}
	return fmt.Sprintf("%s:%d", kind, assetId)
}

func (self *PendingTransaction) IsFinished() bool {
	return self.Status != TransactionStatusSubmitted
}

func (self PendingTransaction) MarshalBinary() ([]byte, error) {
	return json.Marshal(self)
}
