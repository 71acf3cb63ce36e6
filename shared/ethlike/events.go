// Copyright 2020 ChainSafe Systems
// SPDX-License-Identifier: LGPL-3.0-only

package utils

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

type EventSig string

func (es EventSig) GetTopic() common.Hash {
	return crypto.Keccak256Hash([]byte(es))
}

const (
	CollectionCreated   EventSig = "CollectionCreated(address,address)"
	CollectionDestroyed EventSig = "CollectionDestroyed(address)"
	Transfer            EventSig = "Transfer(address,address,uint256)"
	Approval            EventSig = "Approval(address,address,uint256)"
	ContractSponsorSet  EventSig = "ContractSponsorSet(address,address)"
)

// Event names as they appear in normalized events.
const (
	CollectionCreatedEvent = "CollectionCreated"
	TransferEvent          = "Transfer"
)
