package substrate

import (
	"testing"

	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	utils "github.com/chainx-org/CrossHarness/shared/substrate"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func metadataWithHelpers(addr common.Address) types.Metadata {
	return types.Metadata{
		Version:       14,
		AsMetadataV14: types.MetadataV14{
			Pallets: []types.PalletMetadataV14{
				{Name: "System"},
				{
					Name: utils.CommonPalletName,
					Constants: []types.ConstantMetadataV14{
						{Name: utils.ContractAddressConst, Value: addr.Bytes()},
					},
				},
			},
		},
	}
}

func TestReadConstant(t *testing.T) {
	helpers := common.HexToAddress("0x6c4e9fe1ae37a41e93cee429e8e1881abdcbb54f")
	c := &Connection{meta: metadataWithHelpers(helpers)}

	var got types.H160
	require.NoError(t, c.ReadConstant(utils.CommonPalletName, utils.ContractAddressConst, &got))
	require.Equal(t, helpers.Bytes(), got[:])

	require.Error(t, c.ReadConstant(utils.CommonPalletName, "Missing", &got))
	require.Error(t, c.ReadConstant("Nope", utils.ContractAddressConst, &got))
}

func TestHelperAddresses(t *testing.T) {
	helpers := common.HexToAddress("0x6c4e9fe1ae37a41e93cee429e8e1881abdcbb54f")
	contract := common.HexToAddress("0x842899ecf380553e8a4de75bf534cdf6fbf64049")
	meta := metadataWithHelpers(helpers)
	meta.AsMetadataV14.Pallets = append(meta.AsMetadataV14.Pallets, types.PalletMetadataV14{
		Name:      utils.ContractHelpersPalletName,
		Constants: []types.ConstantMetadataV14{{Name: utils.ContractAddressConst, Value: contract.Bytes()}},
	})
	c := &Connection{meta: meta}

	gotHelpers, gotContract, err := c.HelperAddresses()
	require.NoError(t, err)
	require.Equal(t, helpers, gotHelpers)
	require.Equal(t, contract, gotContract)
}

func TestReadConstantOldMetadata(t *testing.T) {
	c := &Connection{meta: types.Metadata{Version: 13}}
	var got types.H160
	require.Error(t, c.ReadConstant(utils.CommonPalletName, utils.ContractAddressConst, &got))
}
