package config

import (
	"testing"
	"time"

	"github.com/vicimikul/lifi-fee-scraper/internal/errs"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Mongo.URI != "mongodb://localhost:27017/lifi" {
		t.Errorf("Mongo.URI = %q", cfg.Mongo.URI)
	}
	if len(cfg.Chains.Enabled) != 1 || cfg.Chains.Enabled[0] != 137 {
		t.Errorf("Chains.Enabled = %v, want [137]", cfg.Chains.Enabled)
	}
	if cfg.Scanner.ChunkSize != 500 {
		t.Errorf("Scanner.ChunkSize = %d, want 500", cfg.Scanner.ChunkSize)
	}
	if cfg.Scanner.PollInterval != 60*time.Second {
		t.Errorf("Scanner.PollInterval = %v, want 60s", cfg.Scanner.PollInterval)
	}
	if cfg.API.Port != 3000 {
		t.Errorf("API.Port = %d, want 3000", cfg.API.Port)
	}
	if cfg.Chains.ContractAddress != "0xbd6c7b0d2f68c2b7805d88388319cfb6ecb50ea9" {
		t.Errorf("Chains.ContractAddress = %q", cfg.Chains.ContractAddress)
	}
}

func TestLoad_EnabledChainsList(t *testing.T) {
	t.Setenv("ENABLED_CHAINS", "1,137,8453")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []int64{1, 137, 8453}
	if len(cfg.Chains.Enabled) != len(want) {
		t.Fatalf("Chains.Enabled = %v, want %v", cfg.Chains.Enabled, want)
	}
	for i, id := range want {
		if cfg.Chains.Enabled[i] != id {
			t.Errorf("Chains.Enabled[%d] = %d, want %d", i, cfg.Chains.Enabled[i], id)
		}
	}
}

func TestLoad_RejectsZeroChunkSize(t *testing.T) {
	t.Setenv("CHUNK_SIZE", "0")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for CHUNK_SIZE=0")
	}
	if !errs.IsConfiguration(err) {
		t.Errorf("expected configuration error, got %T", err)
	}
}

func TestChainsConfig_Endpoint(t *testing.T) {
	cfg := ChainsConfig{
		PolygonRPCURL:     "https://polygon.example",
		PolygonStartBlock: 1000,
		BaseRPCURL:        "https://base.example",
	}

	url, start := cfg.Endpoint(137)
	if url != "https://polygon.example" || start != 1000 {
		t.Errorf("Endpoint(137) = (%q, %d)", url, start)
	}

	url, start = cfg.Endpoint(8453)
	if url != "https://base.example" || start != 0 {
		t.Errorf("Endpoint(8453) = (%q, %d)", url, start)
	}

	url, _ = cfg.Endpoint(42)
	if url != "" {
		t.Errorf("Endpoint(42) returned URL %q for unknown chain", url)
	}
}
