// Copyright 2020 ChainSafe Systems
// SPDX-License-Identifier: LGPL-3.0-only

package utils

import (
	"bytes"
	"encoding/binary"

	"github.com/chainx-org/CrossHarness/chains"
	"github.com/ethereum/go-ethereum/common"
)

// MaxCollectionId is the largest encodable collection id. 0xffffffff is reserved.
const MaxCollectionId = 0xfffffffe

var (
	collectionPrefix = common.FromHex("0x17c4e6453cc49aaaaeaca894e6d9683e")
	tokenPrefix      = common.FromHex("0xf8238ccfff8ed887463fd5e0")
)

// TokenAddress is the (collection, token) pair packed into a re-fungible token address.
type TokenAddress struct {
	CollectionId uint32
	TokenId      uint32
}

// CollectionIdToAddress packs a collection id behind the collection prefix.
func CollectionIdToAddress(id uint32) (common.Address, error) {
	return CollectionIdToAddressInt(int64(id))
}

// CollectionIdToAddressInt is CollectionIdToAddress for ids coming from signed input.
func CollectionIdToAddressInt(id int64) (common.Address, error) {
	if id < 0 || id > MaxCollectionId {
		return common.Address{}, &chains.RangeError{What: "collection id", Value: id, Max: MaxCollectionId}
	}
	var addr common.Address
	copy(addr[:], collectionPrefix)
	binary.BigEndian.PutUint32(addr[16:], uint32(id))
	return addr, nil
}

// MustCollectionAddress panics on an out of range id.
func MustCollectionAddress(id uint32) common.Address {
	addr, err := CollectionIdToAddress(id)
	if err != nil {
		panic(err)
	}
	return addr
}

// AddressToCollectionId reads the low 4 bytes of addr as a big-endian id.
// The prefix is NOT checked: any 20-byte value decodes, so addresses forwarded
// from unrelated contracts never fail here. Use IsCollectionAddress for a strict check.
func AddressToCollectionId(addr common.Address) uint32 {
	return binary.BigEndian.Uint32(addr[16:])
}

// AddressToCollectionIdString parses a hex address (0x optional) and decodes it
// with AddressToCollectionId.
func AddressToCollectionIdString(s string) (uint32, error) {
	addr, err := ParseAddress(s)
	if err != nil {
		return 0, err
	}
	return AddressToCollectionId(addr), nil
}

// TokenIdToAddress packs both ids behind the token prefix.
func TokenIdToAddress(collectionId, tokenId uint32) (common.Address, error) {
	if collectionId > MaxCollectionId {
		return common.Address{}, &chains.RangeError{What: "collection id", Value: int64(collectionId), Max: MaxCollectionId}
	}
	var addr common.Address
	copy(addr[:], tokenPrefix)
	binary.BigEndian.PutUint32(addr[12:], collectionId)
	binary.BigEndian.PutUint32(addr[16:], tokenId)
	return addr, nil
}

// AddressToTokenId splits the low 8 bytes into collection and token ids. Like
// AddressToCollectionId it does not check the prefix.
func AddressToTokenId(addr common.Address) TokenAddress {
	return TokenAddress{
		CollectionId: binary.BigEndian.Uint32(addr[12:16]),
		TokenId:      binary.BigEndian.Uint32(addr[16:]),
	}
}

func IsCollectionAddress(addr common.Address) bool {
	return bytes.Equal(addr[:16], collectionPrefix)
}

func IsTokenAddress(addr common.Address) bool {
	return bytes.Equal(addr[:12], tokenPrefix)
}

// ParseAddress accepts exactly 20 hex-encoded bytes with or without 0x.
func ParseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, chains.NewFormatError("address", s, "expected %d hex-encoded bytes", common.AddressLength)
	}
	return common.HexToAddress(s), nil
}
