package entity

import (
	"errors"
	"fmt"
	"strings"
)

type AssetType string

const (
	AssetTypeNative           AssetType = "NATIVE"
	AssetTypeCreditAlphanum4  AssetType = "CREDIT_ALPHANUM4"
	AssetTypeCreditAlphanum12 AssetType = "CREDIT_ALPHANUM12"
)

var (
	ErrInvalidAssetCode   = errors.New("asset code must be 1-12 alphanumeric characters")
	ErrInvalidAssetIssuer = errors.New("asset issuer is required for credit assets")
	ErrInvalidAsset       = errors.New("invalid asset")
)

// Asset identifies a currency on the network. It is a comparable value
// type; two assets are the same asset iff all fields are equal.
// The zero value is not a valid asset.
type Asset struct {
	Type   AssetType
	Code   string
	Issuer string
}

func NativeAsset() Asset {
	return Asset{Type: AssetTypeNative}
}

func CreditAsset(code, issuer string) (Asset, error) {
	code = strings.TrimSpace(code)
	issuer = strings.TrimSpace(issuer)

	if len(code) == 0 || len(code) > 12 || !isAlphanumeric(code) {
		return Asset{}, ErrInvalidAssetCode
	}
	if issuer == "" {
		return Asset{}, ErrInvalidAssetIssuer
	}

	assetType := AssetTypeCreditAlphanum4
	if len(code) > 4 {
		assetType = AssetTypeCreditAlphanum12
	}

	return Asset{Type: assetType, Code: code, Issuer: issuer}, nil
}

// ParseAsset accepts "native" or "CODE:ISSUER".
func ParseAsset(s string) (Asset, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Asset{}, ErrInvalidAsset
	}

	if strings.EqualFold(s, "native") {
		return NativeAsset(), nil
	}

	code, issuer, found := strings.Cut(s, ":")
	if !found {
		return Asset{}, fmt.Errorf("%w: %q", ErrInvalidAsset, s)
	}

	return CreditAsset(code, issuer)
}

func (a Asset) IsZero() bool {
	return a.Type == ""
}

func (a Asset) IsNative() bool {
	return a.Type == AssetTypeNative
}

func (a Asset) String() string {
	if a.IsNative() {
		return "native"
	}

	return a.Code + ":" + a.Issuer
}

func isAlphanumeric(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		default:
			return false
		}
	}

	return true
}
