package chain

import (
	"testing"
)

func TestNewKeyPairAddress(t *testing.T) {
	addr, priv, err := NewKeyPairAddress(&RegTestChain)
	if err != nil {
		t.Fatal("NewKeyPairAddress", err)
	}
	if priv == nil {
		t.Fatal("expected a private key")
	}
	if !ValidateP2PKH(addr, &RegTestChain) {
		t.Fatal("generated address failed validation:", addr)
	}
	// regtest addresses are not valid on mainnet
	if ValidateP2PKH(addr, &MainChain) {
		t.Fatal("regtest address validated against mainnet prefix:", addr)
	}
}

func TestP2PKHScript(t *testing.T) {
	addr, _, err := NewKeyPairAddress(&RegTestChain)
	if err != nil {
		t.Fatal("NewKeyPairAddress", err)
	}
	script, err := P2PKHScript(addr, &RegTestChain)
	if err != nil {
		t.Fatal("P2PKHScript", err)
	}
	// DUP HASH160 <20> ... EQUALVERIFY CHECKSIG
	if len(script) != 25 || script[0] != 0x76 || script[1] != 0xa9 || script[2] != 20 ||
		script[23] != 0x88 || script[24] != 0xac {
		t.Fatalf("unexpected P2PKH script shape: %x", script)
	}

	if _, err := P2PKHScript("not-an-address", &RegTestChain); err == nil {
		t.Fatal("expected error for garbage address")
	}
}

func TestBase58Check(t *testing.T) {
	payload := []byte{0x6f, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20}
	encoded := Base58EncodeCheck(append([]byte{}, payload...))
	decoded, err := Base58DecodeCheck(encoded)
	if err != nil {
		t.Fatal("Base58DecodeCheck", err)
	}
	if len(decoded) != len(payload) {
		t.Fatal("decoded payload length mismatch")
	}
	for i := range payload {
		if decoded[i] != payload[i] {
			t.Fatalf("decoded payload differs at byte %d", i)
		}
	}

	// corrupt one character; the checksum must catch it
	corrupted := []byte(encoded)
	if corrupted[3] == '2' {
		corrupted[3] = '3'
	} else {
		corrupted[3] = '2'
	}
	if _, err := Base58DecodeCheck(string(corrupted)); err == nil {
		t.Fatal("expected checksum failure for corrupted string")
	}
}
