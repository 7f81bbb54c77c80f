package chains

import (
	"testing"

	"github.com/vicimikul/lifi-fee-scraper/internal/config"
	"github.com/vicimikul/lifi-fee-scraper/internal/errs"
)

const testContract = "0xbd6c7b0d2f68c2b7805d88388319cfb6ecb50ea9"

func TestNewRegistry_SingleChain(t *testing.T) {
	cfg := config.ChainsConfig{
		Enabled:           []int64{137},
		ContractAddress:   testContract,
		PolygonRPCURL:     "https://polygon.example",
		PolygonStartBlock: 47000000,
	}

	r, err := NewRegistry(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	chains := r.Chains()
	if len(chains) != 1 {
		t.Fatalf("got %d chains, want 1", len(chains))
	}
	c := chains[0]
	if c.ID != 137 || c.Name != "polygon" {
		t.Errorf("chain = %+v", c)
	}
	if c.RPCURL != "https://polygon.example" || c.StartBlock != 47000000 {
		t.Errorf("endpoint = (%q, %d)", c.RPCURL, c.StartBlock)
	}
	if c.ContractAddress != testContract {
		t.Errorf("contract = %q", c.ContractAddress)
	}
}

func TestNewRegistry_PreservesConfigurationOrder(t *testing.T) {
	cfg := config.ChainsConfig{
		Enabled:         []int64{8453, 1},
		ContractAddress: testContract,
		EthereumRPCURL:  "https://eth.example",
		BaseRPCURL:      "https://base.example",
	}

	r, err := NewRegistry(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	chains := r.Chains()
	if len(chains) != 2 || chains[0].ID != 8453 || chains[1].ID != 1 {
		t.Errorf("chains = %+v", chains)
	}

	if _, ok := r.Get(1); !ok {
		t.Error("Get(1) should find ethereum")
	}
	if _, ok := r.Get(137); ok {
		t.Error("Get(137) should miss: polygon not enabled")
	}
}

func TestNewRegistry_UnknownChainFails(t *testing.T) {
	cfg := config.ChainsConfig{
		Enabled:         []int64{42},
		ContractAddress: testContract,
	}

	_, err := NewRegistry(cfg)
	if err == nil {
		t.Fatal("expected error for unknown chain id")
	}
	if !errs.IsConfiguration(err) {
		t.Errorf("expected configuration error, got %T", err)
	}
}

func TestNewRegistry_MissingRPCURLFails(t *testing.T) {
	cfg := config.ChainsConfig{
		Enabled:         []int64{56},
		ContractAddress: testContract,
	}

	_, err := NewRegistry(cfg)
	if err == nil {
		t.Fatal("expected error for missing RPC URL")
	}
	if !errs.IsConfiguration(err) {
		t.Errorf("expected configuration error, got %T", err)
	}
}

func TestNewRegistry_LowercasesContract(t *testing.T) {
	cfg := config.ChainsConfig{
		Enabled:         []int64{10},
		ContractAddress: "0xBD6C7B0D2F68C2B7805D88388319CFB6ECB50EA9",
		OptimismRPCURL:  "https://op.example",
	}

	r, err := NewRegistry(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := r.Chains()[0].ContractAddress; got != testContract {
		t.Errorf("contract = %q, want lowercase", got)
	}
}

func TestIsSupported(t *testing.T) {
	for _, id := range []int64{1, 10, 56, 100, 137, 8453} {
		if !IsSupported(id) {
			t.Errorf("IsSupported(%d) = false", id)
		}
	}
	if IsSupported(2) || IsSupported(0) {
		t.Error("unsupported ids reported as supported")
	}
}
