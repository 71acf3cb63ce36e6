// Copyright 2020 ChainSafe Systems
// SPDX-License-Identifier: LGPL-3.0-only

package utils

import (
	"embed"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

//go:embed abi/*.json
var abiFiles embed.FS

// Static ABI descriptors of the precompiled contracts.
var (
	CollectionHelpersABI = mustLoadABI("CollectionHelpers")
	ContractHelpersABI   = mustLoadABI("ContractHelpers")
	NonFungibleABI       = mustLoadABI("NonFungible")
	FungibleABI          = mustLoadABI("Fungible")
	ReFungibleABI        = mustLoadABI("ReFungible")
)

func mustLoadABI(name string) abi.ABI {
	raw, err := abiFiles.ReadFile("abi/" + name + ".json")
	if err != nil {
		panic(err)
	}
	parsed, err := abi.JSON(strings.NewReader(string(raw)))
	if err != nil {
		panic(name + ": " + err.Error())
	}
	return parsed
}
