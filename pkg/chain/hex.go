package chain

import (
	"bytes"
	"encoding/hex"
)

func EncodeHex(b []byte) string {
	return hex.EncodeToString(b)
}

func EncodeHexReversed(data []byte) string {
	b := bytes.Clone(data)
	reverseInPlace(b)
	return hex.EncodeToString(b)
}

func ParseHex(str string) ([]byte, error) {
	return hex.DecodeString(str)
}

func IsValidHex(str string) bool {
	_, err := ParseHex(str)
	return err == nil
}
