package ethereum

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/vicimikul/lifi-fee-scraper/internal/domain/entities"
)

const feeCollectorABIJSON = `[{"anonymous":false,"inputs":[{"indexed":true,"internalType":"address","name":"_token","type":"address"},{"indexed":true,"internalType":"address","name":"_integrator","type":"address"},{"indexed":false,"internalType":"uint256","name":"_integratorFee","type":"uint256"},{"indexed":false,"internalType":"uint256","name":"_lifiFee","type":"uint256"}],"name":"FeesCollected","type":"event"}]`

// FeesCollectedTopic is the topic0 of FeesCollected(address,address,uint256,uint256).
var FeesCollectedTopic common.Hash

func init() {
	parsed, err := abi.JSON(strings.NewReader(feeCollectorABIJSON))
	if err != nil {
		panic("fee collector ABI: " + err.Error())
	}
	FeesCollectedTopic = parsed.Events["FeesCollected"].ID
}

// ParseFeesCollectedLog decodes one raw log into a FeeEvent. The chain
// tag is left unset; the event store decorates it at insert time. Fee
// amounts are read as big integers and converted straight to decimal
// strings.
func ParseFeesCollectedLog(log types.Log) (*entities.FeeEvent, error) {
	if len(log.Topics) != 3 {
		return nil, fmt.Errorf("invalid number of topics: expected 3, got %d", len(log.Topics))
	}
	if log.Topics[0] != FeesCollectedTopic {
		return nil, fmt.Errorf("not a FeesCollected event")
	}
	if len(log.Data) != 64 {
		return nil, fmt.Errorf("invalid data length: expected 64, got %d", len(log.Data))
	}

	// Topics[1] = token, Topics[2] = integrator (indexed, padded to 32 bytes).
	token := common.BytesToAddress(log.Topics[1].Bytes())
	integrator := common.BytesToAddress(log.Topics[2].Bytes())

	integratorFee := new(big.Int).SetBytes(log.Data[:32])
	lifiFee := new(big.Int).SetBytes(log.Data[32:64])

	return &entities.FeeEvent{
		ContractAddress: strings.ToLower(log.Address.Hex()),
		Token:           strings.ToLower(token.Hex()),
		Integrator:      strings.ToLower(integrator.Hex()),
		IntegratorFee:   integratorFee.String(),
		LifiFee:         lifiFee.String(),
		BlockNumber:     int64(log.BlockNumber),
		TransactionHash: strings.ToLower(log.TxHash.Hex()),
		LogIndex:        int(log.Index),
	}, nil
}

// ParseFeesCollectedLogs decodes a window of raw logs, preserving the
// provider's block-then-log order. Any undecodable or invalid log fails
// the whole window.
func ParseFeesCollectedLogs(logs []types.Log) ([]entities.FeeEvent, error) {
	events := make([]entities.FeeEvent, 0, len(logs))
	for i := range logs {
		event, err := ParseFeesCollectedLog(logs[i])
		if err != nil {
			return nil, fmt.Errorf("log %d (tx %s): %w", i, logs[i].TxHash.Hex(), err)
		}
		if err := event.Validate(); err != nil {
			return nil, fmt.Errorf("log %d (tx %s): %w", i, logs[i].TxHash.Hex(), err)
		}
		events = append(events, *event)
	}
	return events, nil
}
