package chains

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResultOfSplitsChainRejections(t *testing.T) {
	rejected := ResultOf(0, fmt.Errorf("send: %w", &ChainError{Kind: NoPermission, Message: "NoPermission"}))
	require.True(t, rejected.Rejected())
	require.False(t, rejected.IsOk())
	require.Equal(t, NoPermission, rejected.Err.Kind)
	require.Nil(t, rejected.Fault)

	fault := ResultOf(0, errors.New("dial tcp: refused"))
	require.False(t, fault.Rejected())
	require.Error(t, fault.Fault)

	ok := ResultOf(7, nil)
	require.True(t, ok.IsOk())
	v, err := ok.Unwrap()
	require.NoError(t, err)
	require.Equal(t, 7, v)
}

func TestProtocolViolationUnwrapsToSentinel(t *testing.T) {
	err := error(&ProtocolViolationError{Expected: "CollectionCreated", TxHash: "0x01"})
	require.ErrorIs(t, err, ErrEventNotFound)
}

func TestChainErrorMessageIsVerbatim(t *testing.T) {
	err := &ChainError{Kind: InsufficientDeposit, Message: "execution reverted: value is not enough", TxHash: "0xab"}
	require.Contains(t, err.Error(), "execution reverted: value is not enough")
	require.Contains(t, err.Error(), "InsufficientDeposit")
}
