package eth

import (
	"fmt"
	"strings"

	"github.com/warp-contracts/market/src/utils/model"

	"github.com/ethereum/go-ethereum/common"
)

func ParseAddress(s string) (address common.Address, err error) {
	s = strings.TrimSpace(s)
	if !common.IsHexAddress(s) {
		err = fmt.Errorf("%w: malformed address %q", model.ErrInvalidInput, s)
		return
	}
	address = common.HexToAddress(s)
	return
}

// Transfer recipient, zero address is rejected
func ParseRecipient(s string) (address common.Address, err error) {
	address, err = ParseAddress(s)
	if err != nil {
		err = fmt.Errorf("%w: %q", model.ErrInvalidRecipient, s)
		return
	}
	err = CheckRecipient(address)
	return
}

func CheckRecipient(address common.Address) error {
	if address == (common.Address{}) {
		return fmt.Errorf("%w: zero address", model.ErrInvalidRecipient)
	}
	return nil
}
