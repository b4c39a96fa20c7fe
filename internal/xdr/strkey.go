package xdr

import (
	"encoding/base32"
	"encoding/binary"
	"errors"
	"fmt"
)

// Account addresses are strkey-encoded ed25519 public keys: one version
// byte, 32 payload bytes and a little-endian CRC16-XMODEM checksum, all
// base32 without padding.
const accountIDVersionByte byte = 6 << 3 // 'G'

var (
	ErrInvalidAccountAddress = errors.New("invalid account address")

	strkeyEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)
)

func DecodeAccountID(address string) ([32]byte, error) {
	var accountID [32]byte

	raw, err := strkeyEncoding.DecodeString(address)
	if err != nil {
		return accountID, fmt.Errorf("%w: %v", ErrInvalidAccountAddress, err)
	}
	if len(raw) != 35 {
		return accountID, fmt.Errorf("%w: wrong length", ErrInvalidAccountAddress)
	}
	if raw[0] != accountIDVersionByte {
		return accountID, fmt.Errorf("%w: wrong version byte", ErrInvalidAccountAddress)
	}
	if crc16(raw[:33]) != binary.LittleEndian.Uint16(raw[33:]) {
		return accountID, fmt.Errorf("%w: checksum mismatch", ErrInvalidAccountAddress)
	}

	copy(accountID[:], raw[1:33])

	return accountID, nil
}

func EncodeAccountID(accountID [32]byte) string {
	raw := make([]byte, 0, 35)
	raw = append(raw, accountIDVersionByte)
	raw = append(raw, accountID[:]...)
	raw = binary.LittleEndian.AppendUint16(raw, crc16(raw))

	return strkeyEncoding.EncodeToString(raw)
}

// crc16 implements CRC16-XMODEM (poly 0x1021, zero initial value).
func crc16(data []byte) uint16 {
	var crc uint16
	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}

	return crc
}
