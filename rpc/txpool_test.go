package rpc_test

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	gethrpc "github.com/ethereum/go-ethereum/rpc"
	"github.com/kkrt-labs/katana-genesis/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSender = common.HexToAddress("0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266")

// txpoolService mocks a node's txpool namespace for the in-process server.
type txpoolService struct{}

func (s *txpoolService) Status() *rpc.TxpoolStatus {
	return &rpc.TxpoolStatus{Pending: 2, Queued: 1}
}

func (s *txpoolService) Content() *rpc.TxpoolContent {
	return &rpc.TxpoolContent{
		Pending: map[common.Address]map[string]any{
			testSender: {
				"0": map[string]any{"nonce": "0x0", "value": "0x38d7ea4c68000"},
				"1": map[string]any{"nonce": "0x1", "value": "0x0"},
			},
		},
		Queued: map[common.Address]map[string]any{},
	}
}

func (s *txpoolService) ContentFrom(from common.Address) *rpc.TxpoolContentFrom {
	if from != testSender {
		return &rpc.TxpoolContentFrom{}
	}
	return &rpc.TxpoolContentFrom{
		Pending: map[string]any{
			"0": map[string]any{"nonce": "0x0"},
		},
	}
}

func (s *txpoolService) Inspect() *rpc.TxpoolInspect {
	return &rpc.TxpoolInspect{
		Pending: rpc.TxpoolInspectSummary{
			testSender: {"0": "0x70997970c51812dc3a010c7d01b50e0d17dc79c8: 1000000000000000 wei + 21000 gas"},
		},
		Queued: rpc.TxpoolInspectSummary{},
	}
}

func newTestClient(t *testing.T) *rpc.TxpoolClient {
	t.Helper()

	server := gethrpc.NewServer()
	require.NoError(t, server.RegisterName("txpool", &txpoolService{}))
	t.Cleanup(server.Stop)

	client := gethrpc.DialInProc(server)
	t.Cleanup(client.Close)

	return rpc.NewTxpoolClient(client)
}

func TestTxpoolClient(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	t.Run("status", func(t *testing.T) {
		status, err := client.Status(ctx)
		require.NoError(t, err)
		assert.Equal(t, hexutil.Uint64(2), status.Pending)
		assert.Equal(t, hexutil.Uint64(1), status.Queued)
	})

	t.Run("content", func(t *testing.T) {
		content, err := client.Content(ctx)
		require.NoError(t, err)
		require.Contains(t, content.Pending, testSender)
		assert.Len(t, content.Pending[testSender], 2)
		assert.Empty(t, content.Queued)
	})

	t.Run("content from known sender", func(t *testing.T) {
		content, err := client.ContentFrom(ctx, testSender)
		require.NoError(t, err)
		assert.Len(t, content.Pending, 1)
	})

	t.Run("content from unknown sender", func(t *testing.T) {
		content, err := client.ContentFrom(ctx, common.Address{})
		require.NoError(t, err)
		assert.Empty(t, content.Pending)
		assert.Empty(t, content.Queued)
	})

	t.Run("inspect", func(t *testing.T) {
		inspect, err := client.Inspect(ctx)
		require.NoError(t, err)
		require.Contains(t, inspect.Pending, testSender)
	})
}
