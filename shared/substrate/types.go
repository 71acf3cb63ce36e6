// Copyright 2020 ChainSafe Systems
// SPDX-License-Identifier: LGPL-3.0-only

package utils

import (
	"math/big"

	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
)

const UniquePalletName = "Unique"
const SystemPalletName = "System"
const CommonPalletName = "Common"
const ContractHelpersPalletName = "EvmContractHelpers"

// ContractAddressConst is the constant holding the helper contract address in
// both the Common (collection helpers) and EvmContractHelpers pallets.
const ContractAddressConst = "ContractAddress"

// Event names, "Pallet.Event".
const (
	ExtrinsicSuccess = "System.ExtrinsicSuccess"
	ExtrinsicFailed  = "System.ExtrinsicFailed"
	ItemCreated      = "Common.ItemCreated"
	ItemDestroyed    = "Common.ItemDestroyed"
	Transfer         = "Common.Transfer"
)

type Property struct {
	Key   types.Bytes
	Value types.Bytes
}

// CreateItemData is the per-kind payload of Unique.create_item.
type CreateItemData struct {
	IsNFT        bool
	AsNFT        []Property
	IsFungible   bool
	AsFungible   types.U128
	IsReFungible bool
	AsReFungible CreateReFungibleData
}

type CreateReFungibleData struct {
	Pieces     types.U128
	Properties []Property
}

func NewNFTData(props ...Property) CreateItemData {
	return CreateItemData{IsNFT: true, AsNFT: props}
}

func NewFungibleData(value *big.Int) CreateItemData {
	return CreateItemData{IsFungible: true, AsFungible: types.NewU128(*value)}
}

func NewReFungibleData(pieces *big.Int, props ...Property) CreateItemData {
	return CreateItemData{IsReFungible: true, AsReFungible: CreateReFungibleData{Pieces: types.NewU128(*pieces), Properties: props}}
}

func (d CreateItemData) Encode(encoder scale.Encoder) error {
	var err error
	switch {
	case d.IsNFT:
		if err = encoder.PushByte(0); err != nil {
			return err
		}
		err = encoder.Encode(d.AsNFT)
	case d.IsFungible:
		if err = encoder.PushByte(1); err != nil {
			return err
		}
		err = encoder.Encode(d.AsFungible)
	case d.IsReFungible:
		if err = encoder.PushByte(2); err != nil {
			return err
		}
		if err = encoder.Encode(d.AsReFungible.Pieces); err != nil {
			return err
		}
		err = encoder.Encode(d.AsReFungible.Properties)
	default:
		// empty NFT data
		if err = encoder.PushByte(0); err != nil {
			return err
		}
		err = encoder.Encode([]Property{})
	}
	return err
}
