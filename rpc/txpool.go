// Package rpc provides a logic-free client for the txpool introspection
// namespace exposed by EVM test nodes. Genesis construction does not depend
// on it; tooling uses it to observe the mempool of a running network.
package rpc

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	gethrpc "github.com/ethereum/go-ethereum/rpc"
)

// TxpoolStatus counts the transactions currently pending inclusion and those
// queued behind a nonce gap.
type TxpoolStatus struct {
	Pending hexutil.Uint64 `json:"pending"`
	Queued  hexutil.Uint64 `json:"queued"`
}

// TxpoolInspectSummary renders transactions as the node's one-line summary
// strings, grouped by sender and nonce.
type TxpoolInspectSummary map[common.Address]map[string]string

// TxpoolInspect is the pool's textual summary of pending and queued
// transactions.
type TxpoolInspect struct {
	Pending TxpoolInspectSummary `json:"pending"`
	Queued  TxpoolInspectSummary `json:"queued"`
}

// TxpoolContent lists the full pending and queued transactions grouped by
// sender and nonce. Transaction bodies are kept as raw JSON: this client
// passes them through untouched.
type TxpoolContent struct {
	Pending map[common.Address]map[string]any `json:"pending"`
	Queued  map[common.Address]map[string]any `json:"queued"`
}

// TxpoolContentFrom is the content of the pool filtered to a single sender.
type TxpoolContentFrom struct {
	Pending map[string]any `json:"pending"`
	Queued  map[string]any `json:"queued"`
}

// TxpoolClient calls the txpool namespace of a remote node.
type TxpoolClient struct {
	client *gethrpc.Client
}

func NewTxpoolClient(client *gethrpc.Client) *TxpoolClient {
	return &TxpoolClient{client: client}
}

// Dial connects to the given JSON-RPC endpoint.
func Dial(ctx context.Context, url string) (*TxpoolClient, error) {
	client, err := gethrpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return NewTxpoolClient(client), nil
}

func (c *TxpoolClient) Close() {
	c.client.Close()
}

// Status returns the pending and queued transaction counts.
func (c *TxpoolClient) Status(ctx context.Context) (*TxpoolStatus, error) {
	var status TxpoolStatus
	if err := c.client.CallContext(ctx, &status, "txpool_status"); err != nil {
		return nil, fmt.Errorf("txpool status: %w", err)
	}
	return &status, nil
}

// Content returns all pooled transactions grouped by sender and nonce.
func (c *TxpoolClient) Content(ctx context.Context) (*TxpoolContent, error) {
	var content TxpoolContent
	if err := c.client.CallContext(ctx, &content, "txpool_content"); err != nil {
		return nil, fmt.Errorf("txpool content: %w", err)
	}
	return &content, nil
}

// Inspect returns the pool's textual transaction summaries.
func (c *TxpoolClient) Inspect(ctx context.Context) (*TxpoolInspect, error) {
	var inspect TxpoolInspect
	if err := c.client.CallContext(ctx, &inspect, "txpool_inspect"); err != nil {
		return nil, fmt.Errorf("txpool inspect: %w", err)
	}
	return &inspect, nil
}

// ContentFrom returns the pooled transactions of a single sender.
func (c *TxpoolClient) ContentFrom(ctx context.Context, from common.Address) (*TxpoolContentFrom, error) {
	var content TxpoolContentFrom
	if err := c.client.CallContext(ctx, &content, "txpool_contentFrom", from); err != nil {
		return nil, fmt.Errorf("txpool content from %s: %w", from, err)
	}
	return &content, nil
}
