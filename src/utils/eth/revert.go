package eth

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/warp-contracts/market/src/utils/model"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

// EIP-1193 code sent by wallets when the user declines a request
const CodeUserRejected = 4001

var customErrors = map[string]error{
	"ERC721NonexistentToken":     model.ErrNotFound,
	"ERC721IncorrectOwner":       model.ErrUnauthorized,
	"ERC721InsufficientApproval": model.ErrUnauthorized,
	"ERC721InvalidSender":        model.ErrUnauthorized,
	"ERC721InvalidReceiver":      model.ErrInvalidRecipient,
}

var reasons = []struct {
	fragment string
	err      error
}{
	{"nonexistent", model.ErrNotFound},
	{"invalid token id", model.ErrNotFound},
	{"already listed", model.ErrAlreadyListed},
	{"not for sale", model.ErrNotListed},
	{"not listed", model.ErrNotListed},
	{"own token", model.ErrUnauthorized},
	{"not the owner", model.ErrUnauthorized},
	{"not owner", model.ErrUnauthorized},
	{"caller is not", model.ErrUnauthorized},
	{"zero address", model.ErrInvalidRecipient},
	{"invalid receiver", model.ErrInvalidRecipient},
	{"incorrect value", model.ErrInsufficientPayment},
	{"insufficient", model.ErrInsufficientPayment},
	{"price must", model.ErrInvalidPrice},
}

// Human readable reason of a revert. Supports Error(string), Panic(uint256) and custom errors from the ABI.
func DecodeRevert(contractABI *abi.ABI, data []byte) string {
	reason, err := abi.UnpackRevert(data)
	if err == nil {
		return reason
	}

	if contractABI != nil && len(data) >= 4 {
		for _, e := range contractABI.Errors {
			if bytes.Equal(e.ID[:4], data[:4]) {
				return e.Name
			}
		}
	}
	return ""
}

// Maps a revert reason to the error taxonomy, nil if the reason is unknown
func ReasonToError(reason string) error {
	if err, ok := customErrors[reason]; ok {
		return err
	}

	lower := strings.ToLower(reason)
	for _, r := range reasons {
		if strings.Contains(lower, r.fragment) {
			return r.err
		}
	}
	return nil
}

// Extracts revert data attached to a JSON-RPC error
func revertData(err error) (data []byte, ok bool) {
	var dataErr rpc.DataError
	if !errors.As(err, &dataErr) {
		return
	}
	s, isString := dataErr.ErrorData().(string)
	if !isString {
		return
	}
	data, decodeErr := hexutil.Decode(s)
	return data, decodeErr == nil
}

// Reason of a reverted call, empty if err isn't a revert
func RevertReason(contractABI *abi.ABI, err error) (reason string) {
	if err == nil {
		return
	}
	if data, ok := revertData(err); ok {
		reason = DecodeRevert(contractABI, data)
	}
	if reason == "" {
		if _, after, found := strings.Cut(err.Error(), "execution reverted:"); found {
			reason = strings.TrimSpace(after)
		}
	}
	return
}

// Classifies an error returned while a write call was being dispatched.
// Known precondition violations keep their meaning, everything else is Rejected.
func Classify(contractABI *abi.ABI, err error) error {
	if err == nil || model.IsKnown(err) {
		return err
	}

	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) && rpcErr.ErrorCode() == CodeUserRejected {
		return fmt.Errorf("%w: %s", model.ErrRejected, rpcErr.Error())
	}

	reason := RevertReason(contractABI, err)
	if reason != "" {
		if known := ReasonToError(reason); known != nil {
			return fmt.Errorf("%w: %s", known, reason)
		}
		return fmt.Errorf("%w: %s", model.ErrRejected, reason)
	}

	return fmt.Errorf("%w: %v", model.ErrRejected, err)
}
