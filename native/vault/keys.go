package vault

import "teranium/crypto"

var (
	vaultRecordPrefix    = []byte("vault/")
	positionRecordPrefix = []byte("vault/position/")
)

func vaultRecordKey(vaultKey crypto.Address) []byte {
	buf := make([]byte, 0, len(vaultRecordPrefix)+crypto.AddressLength)
	buf = append(buf, vaultRecordPrefix...)
	buf = append(buf, vaultKey[:]...)
	return buf
}

func positionRecordKey(vaultKey, owner crypto.Address) []byte {
	buf := make([]byte, 0, len(positionRecordPrefix)+2*crypto.AddressLength)
	buf = append(buf, positionRecordPrefix...)
	buf = append(buf, vaultKey[:]...)
	buf = append(buf, owner[:]...)
	return buf
}
