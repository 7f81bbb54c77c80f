package ethereum

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	testCollector  = "0xbd6c7b0d2f68c2b7805d88388319cfb6ecb50ea9"
	testToken      = "0x2791bca1f2de4661ed88a30c99a7a9449aa84174"
	testIntegrator = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
)

func feesCollectedLog(integratorFee, lifiFee *big.Int) types.Log {
	data := make([]byte, 0, 64)
	data = append(data, common.LeftPadBytes(integratorFee.Bytes(), 32)...)
	data = append(data, common.LeftPadBytes(lifiFee.Bytes(), 32)...)

	return types.Log{
		Address: common.HexToAddress(testCollector),
		Topics: []common.Hash{
			FeesCollectedTopic,
			common.BytesToHash(common.HexToAddress(testToken).Bytes()),
			common.BytesToHash(common.HexToAddress(testIntegrator).Bytes()),
		},
		Data:        data,
		BlockNumber: 47001100,
		TxHash:      common.HexToHash("0xcccccccccccccccccccccccccccccccccccccccccccccccccccccccccccccccc"),
		Index:       5,
	}
}

func TestFeesCollectedTopic(t *testing.T) {
	want := crypto.Keccak256Hash([]byte("FeesCollected(address,address,uint256,uint256)"))
	if FeesCollectedTopic != want {
		t.Errorf("topic = %s, want %s", FeesCollectedTopic.Hex(), want.Hex())
	}
}

func TestParseFeesCollectedLog_Success(t *testing.T) {
	log := feesCollectedLog(big.NewInt(1000000), big.NewInt(250000))

	event, err := ParseFeesCollectedLog(log)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if event.ContractAddress != testCollector {
		t.Errorf("ContractAddress = %q", event.ContractAddress)
	}
	if event.Token != testToken {
		t.Errorf("Token = %q", event.Token)
	}
	if event.Integrator != testIntegrator {
		t.Errorf("Integrator = %q", event.Integrator)
	}
	if event.IntegratorFee != "1000000" {
		t.Errorf("IntegratorFee = %q, want 1000000", event.IntegratorFee)
	}
	if event.LifiFee != "250000" {
		t.Errorf("LifiFee = %q, want 250000", event.LifiFee)
	}
	if event.BlockNumber != 47001100 {
		t.Errorf("BlockNumber = %d", event.BlockNumber)
	}
	if event.LogIndex != 5 {
		t.Errorf("LogIndex = %d", event.LogIndex)
	}
	if event.ChainID != 0 {
		t.Errorf("ChainID = %d, want unset", event.ChainID)
	}
	if err := event.Validate(); err != nil {
		t.Errorf("decoded event fails validation: %v", err)
	}
}

func TestParseFeesCollectedLog_256BitFees(t *testing.T) {
	max := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	log := feesCollectedLog(max, big.NewInt(0))

	event, err := ParseFeesCollectedLog(log)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if event.IntegratorFee != max.String() {
		t.Errorf("IntegratorFee = %q, want %q", event.IntegratorFee, max.String())
	}
	if event.LifiFee != "0" {
		t.Errorf("LifiFee = %q, want 0", event.LifiFee)
	}

	parsed, ok := new(big.Int).SetString(event.IntegratorFee, 10)
	if !ok || parsed.Cmp(max) != 0 {
		t.Error("fee lost precision through the decimal string")
	}
}

func TestParseFeesCollectedLog_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*types.Log)
	}{
		{"missing topics", func(l *types.Log) { l.Topics = l.Topics[:2] }},
		{"wrong signature", func(l *types.Log) { l.Topics[0] = common.HexToHash("0x01") }},
		{"short data", func(l *types.Log) { l.Data = l.Data[:32] }},
		{"long data", func(l *types.Log) { l.Data = append(l.Data, 0) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := feesCollectedLog(big.NewInt(1), big.NewInt(2))
			tt.mutate(&log)
			if _, err := ParseFeesCollectedLog(log); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestParseFeesCollectedLogs_PreservesOrder(t *testing.T) {
	first := feesCollectedLog(big.NewInt(1), big.NewInt(1))
	second := feesCollectedLog(big.NewInt(2), big.NewInt(2))
	second.Index = 6

	events, err := ParseFeesCollectedLogs([]types.Log{first, second})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].LogIndex != 5 || events[1].LogIndex != 6 {
		t.Errorf("order not preserved: %d, %d", events[0].LogIndex, events[1].LogIndex)
	}
}

func TestParseFeesCollectedLogs_OneBadLogFailsWindow(t *testing.T) {
	good := feesCollectedLog(big.NewInt(1), big.NewInt(1))
	bad := feesCollectedLog(big.NewInt(2), big.NewInt(2))
	bad.Data = bad.Data[:10]

	if _, err := ParseFeesCollectedLogs([]types.Log{good, bad}); err == nil {
		t.Error("expected whole-window failure")
	}
}

func TestParseFeesCollectedLogs_Empty(t *testing.T) {
	events, err := ParseFeesCollectedLogs(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("got %d events, want 0", len(events))
	}
}
