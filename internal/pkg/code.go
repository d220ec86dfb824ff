package pkg

import (
	cryptoRand "crypto/rand"
	"encoding/base64"
	"math/big"
	"strings"
)

func RandDigits(n int) (string, error) {
	var b strings.Builder
	for i := 0; i < n; i++ {
		x, err := cryptoRand.Int(cryptoRand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + x.Int64()))
	}
	return b.String(), nil
}

// RandState returns a URL-safe random string of n bytes of entropy.
func RandState(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := cryptoRand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
