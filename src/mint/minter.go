package mint

import (
	"context"
	"fmt"
	"strings"

	"github.com/warp-contracts/market/src/coordinator"
	"github.com/warp-contracts/market/src/utils/ledger"
	"github.com/warp-contracts/market/src/utils/logger"
	"github.com/warp-contracts/market/src/utils/model"

	"github.com/sirupsen/logrus"
)

type Uploader interface {
	UploadBinary(ctx context.Context, data []byte, name string) (string, error)
	UploadDocument(ctx context.Context, doc *model.Document) (string, error)
	URI(cid string) string
}

// New asset as the user describes it
type Request struct {
	Data        []byte
	FileName    string
	Name        string
	Description string
	Symbol      string

	// Defaults to the minter's address
	CreatedBy string
}

type Result struct {
	Asset       *model.Asset              `json:"asset"`
	Transaction *model.PendingTransaction `json:"transaction"`
	ImageURI    string                    `json:"imageURI"`
	ContentURI  string                    `json:"contentURI"`
}

// Uploads the content, then mints an asset pointing to it
type Minter struct {
	log         *logrus.Entry
	uploader    Uploader
	ledger      ledger.Reader
	coordinator *coordinator.Coordinator
	indexer     coordinator.Lookuper
}

func NewMinter() (self *Minter) {
	self = new(Minter)
	self.log = logger.NewSublogger("minter")
	return
}

func (self *Minter) WithUploader(uploader Uploader) *Minter {
	self.uploader = uploader
	return self
}

func (self *Minter) WithLedger(ledger ledger.Reader) *Minter {
	self.ledger = ledger
	return self
}

func (self *Minter) WithCoordinator(coordinator *coordinator.Coordinator) *Minter {
	self.coordinator = coordinator
	return self
}

func (self *Minter) WithIndexer(indexer coordinator.Lookuper) *Minter {
	self.indexer = indexer
	return self
}

func (self *Request) validate() error {
	if len(self.Data) == 0 {
		return fmt.Errorf("%w: no file", model.ErrInvalidInput)
	}
	if strings.TrimSpace(self.Name) == "" {
		return fmt.Errorf("%w: name is required", model.ErrInvalidInput)
	}
	return nil
}

func (self *Minter) Mint(ctx context.Context, signer ledger.Signer, req *Request) (out *Result, err error) {
	err = req.validate()
	if err != nil {
		return
	}
	if signer == nil {
		err = fmt.Errorf("%w: no signer", model.ErrRejected)
		return
	}

	out = new(Result)
	log := self.log.WithField("name", req.Name)

	fileName := req.FileName
	if fileName == "" {
		fileName = req.Name
	}

	imageCid, err := self.uploader.UploadBinary(ctx, req.Data, fileName)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}
	out.ImageURI = self.uploader.URI(imageCid)

	doc := &model.Document{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Image:       out.ImageURI,
		CreatedBy:   strings.TrimSpace(req.CreatedBy),
		Symbol:      strings.TrimSpace(req.Symbol),
	}
	if doc.CreatedBy == "" {
		doc.CreatedBy = signer.Address().Hex()
	}
	if doc.Symbol == "" && self.ledger != nil {
		doc.Symbol, err = self.ledger.Symbol(ctx)
		if err != nil {
			log.WithError(err).Warn("Failed to read contract symbol")
			doc.Symbol = ""
		}
	}

	docCid, err := self.uploader.UploadDocument(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}
	out.ContentURI = self.uploader.URI(docCid)
	log.WithField("image", out.ImageURI).WithField("content", out.ContentURI).Debug("Content uploaded")

	out.Transaction, err = self.coordinator.Submit(ctx, coordinator.Mint(signer, signer.Address(), out.ContentURI))
	if err != nil {
		return
	}

	out.Asset, err = self.indexer.Lookup(ctx, out.Transaction.AssetId)
	if err != nil {
		log.WithError(err).WithField("id", out.Transaction.AssetId).Warn("Minted asset not materialized")
		return
	}

	log.WithField("id", out.Asset.Id).Info("Asset minted")
	return
}
