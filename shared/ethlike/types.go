// Copyright 2020 ChainSafe Systems
// SPDX-License-Identifier: LGPL-3.0-only

package utils

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// CrossAddress is the (eth, sub) pair used by the precompiles for cross accounts.
type CrossAddress struct {
	Eth common.Address `abi:"eth"`
	Sub *big.Int       `abi:"sub"`
}

type Property struct {
	Key   string `abi:"key"`
	Value []byte `abi:"value"`
}

type LimitValue struct {
	Field uint8    `abi:"field"`
	Value *big.Int `abi:"value"`
}

// CreateCollectionData is the argument of CollectionHelpers.createCollection.
type CreateCollectionData struct {
	Name           string         `abi:"name"`
	Description    string         `abi:"description"`
	TokenPrefix    string         `abi:"token_prefix"`
	Mode           uint8          `abi:"mode"`
	Decimals       uint8          `abi:"decimals"`
	Properties     []Property     `abi:"properties"`
	AdminList      []CrossAddress `abi:"admin_list"`
	Limits         []LimitValue   `abi:"limits"`
	PendingSponsor CrossAddress   `abi:"pending_sponsor"`
	Flags          uint8          `abi:"flags"`
}

// Collection limit fields, in the order the helper contract numbers them.
const (
	LimitAccountTokenOwnership uint8 = iota
	LimitSponsoredDataSize
	LimitSponsoredDataRateLimit
	LimitTokenLimit
	LimitSponsorTransferTimeout
	LimitSponsorApproveTimeout
	LimitOwnerCanTransfer
	LimitOwnerCanDestroy
	LimitTransferEnabled
)

var limitNames = map[string]uint8{
	"accountTokenOwnershipLimit": LimitAccountTokenOwnership,
	"sponsoredDataSize":          LimitSponsoredDataSize,
	"sponsoredDataRateLimit":     LimitSponsoredDataRateLimit,
	"tokenLimit":                 LimitTokenLimit,
	"sponsorTransferTimeout":     LimitSponsorTransferTimeout,
	"sponsorApproveTimeout":      LimitSponsorApproveTimeout,
	"ownerCanTransfer":           LimitOwnerCanTransfer,
	"ownerCanDestroy":            LimitOwnerCanDestroy,
	"transfersEnabled":           LimitTransferEnabled,
}

// LimitField resolves a limit name to its field number.
func LimitField(name string) (uint8, bool) {
	f, ok := limitNames[name]
	return f, ok
}
