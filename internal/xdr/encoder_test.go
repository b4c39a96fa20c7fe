package xdr

import (
	"encoding/binary"
	"testing"

	"github.com/krobus00/dex-offer-service/internal/entity"
	"github.com/krobus00/dex-offer-service/internal/offer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testIssuer(t *testing.T, seed byte) (string, [32]byte) {
	t.Helper()
	var key [32]byte
	for i := range key {
		key[i] = seed
	}
	return EncodeAccountID(key), key
}

func TestEncodeManageOffer(t *testing.T) {
	t.Parallel()

	issuerAddress, issuerKey := testIssuer(t, 0xAB)

	base := entity.NativeAsset()
	counter, err := entity.CreditAsset("USD", issuerAddress)
	require.NoError(t, err)

	intent, err := offer.NewBuilder(base, counter, "100", "2").
		Direction(offer.DirectionShort).
		OfferID(7).
		Build()
	require.NoError(t, err)

	payload, err := EncodeManageOffer(intent)
	require.NoError(t, err)
	require.Len(t, payload, 80)

	// no source account
	assert.Equal(t, uint32(0), binary.BigEndian.Uint32(payload[0:4]))
	// manage offer opcode
	assert.Equal(t, uint32(3), binary.BigEndian.Uint32(payload[4:8]))
	// selling: native
	assert.Equal(t, uint32(0), binary.BigEndian.Uint32(payload[8:12]))
	// buying: credit alphanum4, zero-padded code, ed25519 issuer
	assert.Equal(t, uint32(1), binary.BigEndian.Uint32(payload[12:16]))
	assert.Equal(t, []byte{'U', 'S', 'D', 0}, payload[16:20])
	assert.Equal(t, uint32(0), binary.BigEndian.Uint32(payload[20:24]))
	assert.Equal(t, issuerKey[:], payload[24:56])
	// amount 100 * 10^7
	assert.Equal(t, uint64(1_000_000_000), binary.BigEndian.Uint64(payload[56:64]))
	// price 2/1
	assert.Equal(t, uint32(2), binary.BigEndian.Uint32(payload[64:68]))
	assert.Equal(t, uint32(1), binary.BigEndian.Uint32(payload[68:72]))
	// offer id
	assert.Equal(t, uint64(7), binary.BigEndian.Uint64(payload[72:80]))
}

func TestEncodeManageOfferWithSourceAccount(t *testing.T) {
	t.Parallel()

	issuerAddress, _ := testIssuer(t, 0x01)
	sourceAddress, sourceKey := testIssuer(t, 0x02)

	base, err := entity.CreditAsset("DOGETOKEN", issuerAddress)
	require.NoError(t, err)
	counter := entity.NativeAsset()

	intent, err := offer.NewBuilder(base, counter, "1", "1").
		Direction(offer.DirectionShort).
		SourceAccount(sourceAddress).
		Build()
	require.NoError(t, err)

	payload, err := EncodeManageOffer(intent)
	require.NoError(t, err)

	// source account present: presence flag, key type, 32 key bytes
	assert.Equal(t, uint32(1), binary.BigEndian.Uint32(payload[0:4]))
	assert.Equal(t, uint32(0), binary.BigEndian.Uint32(payload[4:8]))
	assert.Equal(t, sourceKey[:], payload[8:40])
	// opcode follows the optional source account
	assert.Equal(t, uint32(3), binary.BigEndian.Uint32(payload[40:44]))
	// selling: credit alphanum12 with zero-padded 12-byte code
	assert.Equal(t, uint32(2), binary.BigEndian.Uint32(payload[44:48]))
	assert.Equal(t, []byte("DOGETOKEN\x00\x00\x00"), payload[48:60])
}

func TestEncodeManageOfferInvalidIssuer(t *testing.T) {
	t.Parallel()

	base, err := entity.CreditAsset("USD", "not-a-strkey")
	require.NoError(t, err)
	counter := entity.NativeAsset()

	intent, err := offer.NewBuilder(base, counter, "1", "1").
		Direction(offer.DirectionShort).
		Build()
	require.NoError(t, err)

	_, err = EncodeManageOffer(intent)
	assert.ErrorIs(t, err, ErrInvalidAccountAddress)
}
