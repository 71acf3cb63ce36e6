// Copyright 2020 ChainSafe Systems
// SPDX-License-Identifier: LGPL-3.0-only

package utils

// An available method on the substrate chain
type Method string

var BalancesTransferKeepAliveMethod Method = "Balances.transfer_keep_alive"

/// Unique Method
var UniqueCreateItemMethod Method = UniquePalletName + ".create_item"
var UniqueTransferMethod Method = UniquePalletName + ".transfer"
var UniqueBurnItemMethod Method = UniquePalletName + ".burn_item"
