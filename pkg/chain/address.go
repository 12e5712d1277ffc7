package chain

import (
	"errors"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/mr-tron/base58"
	"golang.org/x/crypto/ripemd160"
)

type Address string

const (
	ECPubKeyCompressedLen   = 33
	ECPubKeyUncompressedLen = 65
)

func RIPEMD160(bytes []byte) []byte {
	h := ripemd160.New()
	h.Write(bytes)
	return h.Sum(nil)
}

func Hash160(bytes []byte) []byte {
	return RIPEMD160(Sha256(bytes))
}

func Hash160toAddress(hash []byte, prefix byte) Address {
	ver_hash := [1 + 20 + 4]byte{}
	ver_hash[0] = prefix
	if copy(ver_hash[1:], hash) != 20 {
		panic("Hash160toAddress: wrong RIPEMD-160 length")
	}
	return Address(Base58EncodeCheck(ver_hash[0:21]))
}

func PubKeyToAddress(key []byte, prefix byte) (Address, error) {
	if len(key) == ECPubKeyUncompressedLen && key[0] == 0x04 {
		pubkey, err := secp256k1.ParsePubKey(key)
		if err != nil {
			return "", err
		}
		key = pubkey.SerializeCompressed()
	}
	if len(key) != ECPubKeyCompressedLen || (key[0] != 0x02 && key[0] != 0x03) {
		return "", errors.New("PubKeyToAddress: invalid pubkey")
	}
	payload := Hash160(key)
	return Hash160toAddress(payload, prefix), nil
}

// NewKeyPairAddress generates a fresh secp256k1 keypair and returns
// its P2PKH address for the given chain.
func NewKeyPairAddress(params *ChainParams) (Address, *secp256k1.PrivateKey, error) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return "", nil, err
	}
	addr, err := PubKeyToAddress(priv.PubKey().SerializeCompressed(), params.p2pkh_address_prefix)
	if err != nil {
		return "", nil, err
	}
	return addr, priv, nil
}

// ValidateP2PKH checks the base58check decoding and version prefix.
func ValidateP2PKH(address Address, params *ChainParams) bool {
	key, err := Base58DecodeCheck(string(address))
	if err != nil {
		return false
	}
	return len(key) == 21 && key[0] == params.p2pkh_address_prefix
}

// P2PKHScript builds the standard pay-to-pubkey-hash locking script
// for an address (DUP HASH160 <20 bytes> EQUALVERIFY CHECKSIG).
func P2PKHScript(address Address, params *ChainParams) ([]byte, error) {
	key, err := Base58DecodeCheck(string(address))
	if err != nil {
		return nil, fmt.Errorf("P2PKHScript: %v", err)
	}
	if len(key) != 21 || key[0] != params.p2pkh_address_prefix {
		return nil, fmt.Errorf("P2PKHScript: not a P2PKH address for this chain: %s", address)
	}
	script := make([]byte, 0, 25)
	script = append(script, 0x76, 0xa9, 20) // OP_DUP OP_HASH160 push-20
	script = append(script, key[1:21]...)
	script = append(script, 0x88, 0xac) // OP_EQUALVERIFY OP_CHECKSIG
	return script, nil
}

func Base58Encode(bytes []byte) string {
	// https://digitalbazaar.github.io/base58-spec/
	return base58.FastBase58Encoding(bytes)
}

// CAUTION: appends the Checksum to `bytes` if it has sufficient capacity (4 bytes)
func Base58EncodeCheck(bytes []byte) string {
	// https://en.bitcoin.it/Base58Check_encoding
	sum := DoubleSha256(bytes)
	bytes = append(bytes, sum[0], sum[1], sum[2], sum[3])
	return base58.FastBase58Encoding(bytes)
}

func Base58Decode(str string) ([]byte, error) {
	bytes, err := base58.FastBase58Decoding(str)
	return bytes, err
}

func Base58DecodeCheck(str string) ([]byte, error) {
	data, err := Base58Decode(str)
	if err != nil {
		return nil, err
	}
	if len(data) < 5 {
		return nil, fmt.Errorf("Base58Check: too short")
	}
	split := len(data) - 4
	payload := data[0:split]
	check := data[split:]
	sum := DoubleSha256(payload)
	if check[0] != sum[0] || check[1] != sum[1] || check[2] != sum[2] || check[3] != sum[3] {
		return nil, fmt.Errorf("Base58Check: wrong checksum")
	}
	return payload, nil
}
