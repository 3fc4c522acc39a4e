package token

import "teranium/crypto"

var (
	accountPrefix = []byte("token/account/")
	mintPrefix    = []byte("token/mint/")
)

func accountKey(mint, owner crypto.Address) []byte {
	buf := make([]byte, 0, len(accountPrefix)+2*crypto.AddressLength)
	buf = append(buf, accountPrefix...)
	buf = append(buf, mint[:]...)
	buf = append(buf, owner[:]...)
	return buf
}

func mintKey(mint crypto.Address) []byte {
	buf := make([]byte, 0, len(mintPrefix)+crypto.AddressLength)
	buf = append(buf, mintPrefix...)
	buf = append(buf, mint[:]...)
	return buf
}
