package xdr

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/krobus00/dex-offer-service/internal/entity"
	"github.com/krobus00/dex-offer-service/internal/offer"
)

// XDR discriminants for the manage-offer operation envelope.
const (
	operationTypeManageOffer uint32 = 3

	assetTypeNative           uint32 = 0
	assetTypeCreditAlphanum4  uint32 = 1
	assetTypeCreditAlphanum12 uint32 = 2

	keyTypeEd25519 uint32 = 0
)

// EncodeManageOffer serializes a finished OrderIntent into the operation's
// binary wire form: optional source account, opcode tag, selling and buying
// asset encodings, signed 64-bit amount, price fraction and unsigned 64-bit
// offer ID. All integers are big-endian per XDR.
func EncodeManageOffer(intent offer.OrderIntent) ([]byte, error) {
	var buf bytes.Buffer

	if err := writeSourceAccount(&buf, intent.SourceAccount()); err != nil {
		return nil, err
	}

	writeUint32(&buf, operationTypeManageOffer)

	if err := writeAsset(&buf, intent.Selling()); err != nil {
		return nil, err
	}
	if err := writeAsset(&buf, intent.Buying()); err != nil {
		return nil, err
	}

	writeUint64(&buf, uint64(intent.Amount()))

	price := intent.Price()
	writeUint32(&buf, uint32(price.N))
	writeUint32(&buf, uint32(price.D))

	writeUint64(&buf, intent.OfferID())

	return buf.Bytes(), nil
}

func writeSourceAccount(buf *bytes.Buffer, address string) error {
	if address == "" {
		writeUint32(buf, 0)
		return nil
	}

	accountID, err := DecodeAccountID(address)
	if err != nil {
		return err
	}

	writeUint32(buf, 1)
	writeUint32(buf, keyTypeEd25519)
	buf.Write(accountID[:])

	return nil
}

func writeAsset(buf *bytes.Buffer, asset entity.Asset) error {
	switch asset.Type {
	case entity.AssetTypeNative:
		writeUint32(buf, assetTypeNative)
		return nil
	case entity.AssetTypeCreditAlphanum4:
		writeUint32(buf, assetTypeCreditAlphanum4)
		writeAssetCode(buf, asset.Code, 4)
	case entity.AssetTypeCreditAlphanum12:
		writeUint32(buf, assetTypeCreditAlphanum12)
		writeAssetCode(buf, asset.Code, 12)
	default:
		return fmt.Errorf("%w: %q", entity.ErrInvalidAsset, asset.Type)
	}

	accountID, err := DecodeAccountID(asset.Issuer)
	if err != nil {
		return err
	}

	writeUint32(buf, keyTypeEd25519)
	buf.Write(accountID[:])

	return nil
}

// writeAssetCode writes a fixed-width, zero-padded opaque code field.
func writeAssetCode(buf *bytes.Buffer, code string, width int) {
	padded := make([]byte, width)
	copy(padded, code)
	buf.Write(padded)
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeUint64(buf *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	buf.Write(b[:])
}
