package main

import (
	"testing"

	"emberchain/config"
	"emberchain/crypto"
)

func bech(t *testing.T, b byte) string {
	t.Helper()
	var raw [20]byte
	raw[19] = b
	addr, err := crypto.NewAddress(crypto.EmberPrefix, raw[:])
	if err != nil {
		t.Fatalf("address: %v", err)
	}
	return addr.String()
}

func TestGenesisParams(t *testing.T) {
	cfg := &config.Config{Genesis: config.Genesis{
		Owner:       bech(t, 0x01),
		TotalSupply: "21000000000000000000000000",
		TxTrigger:   10,
	}}
	params, err := genesisParams(cfg)
	if err != nil {
		t.Fatalf("genesis params: %v", err)
	}
	if params.TxTrigger != 10 {
		t.Fatalf("trigger %d", params.TxTrigger)
	}
	if params.TotalSupply.String() != cfg.Genesis.TotalSupply {
		t.Fatalf("supply %s", params.TotalSupply)
	}
	if params.OwnerRecipient != nil {
		t.Fatal("unset recipients should stay nil")
	}
}

func TestGenesisParamsRejectsPartialRecipients(t *testing.T) {
	cfg := &config.Config{Genesis: config.Genesis{
		Owner:          bech(t, 0x01),
		TotalSupply:    "1000",
		OwnerRecipient: bech(t, 0x02),
	}}
	if _, err := genesisParams(cfg); err == nil {
		t.Fatal("partial recipient set should be rejected")
	}
}

func TestGenesisParamsRejectsBadSupply(t *testing.T) {
	cfg := &config.Config{Genesis: config.Genesis{
		Owner:       bech(t, 0x01),
		TotalSupply: "0",
	}}
	if _, err := genesisParams(cfg); err == nil {
		t.Fatal("zero supply should be rejected")
	}
}
