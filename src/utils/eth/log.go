package eth

import (
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/core/types"
)

// Decodes the first log of the given event emitted by the contract
func GetTransactionLog(receipt *types.Receipt, contractABI *abi.ABI, name string) (eventMap map[string]interface{}, err error) {
	event, ok := contractABI.Events[name]
	if !ok {
		err = ErrEventNotInABI
		return
	}

	for _, vLog := range receipt.Logs {
		if len(vLog.Topics) == 0 || vLog.Topics[0] != event.ID {
			continue
		}

		eventMap = make(map[string]interface{})
		eventMap["name"] = event.Name

		indexed := make([]abi.Argument, 0)
		for _, input := range event.Inputs {
			if input.Indexed {
				indexed = append(indexed, input)
			}
		}
		err = abi.ParseTopicsIntoMap(eventMap, indexed, vLog.Topics[1:])
		if err != nil {
			return nil, err
		}

		if len(vLog.Data) > 0 {
			err = contractABI.UnpackIntoMap(eventMap, event.Name, vLog.Data)
			if err != nil {
				return nil, err
			}
		}
		return
	}

	err = ErrLogNotFound
	return
}
