// Package sui talks to Sui fullnodes over JSON-RPC and assembles signed
// programmable transactions locally.
package sui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/vietddude/suiwork/internal/infra/rpc/provider"
)

// SUICoinType is the native coin type.
const SUICoinType = "0x2::sui::SUI"

const (
	methodLatestCheckpoint = "sui_getLatestCheckpointSequenceNumber"
	methodGetBalance       = "suix_getBalance"
	methodGetObject        = "sui_getObject"
	methodGetCoins         = "suix_getCoins"
	methodReferenceGas     = "suix_getReferenceGasPrice"
	methodExecuteTx        = "sui_executeTransactionBlock"
)

var (
	ErrObjectNotFound = errors.New("object not found")
	ErrMalformed      = errors.New("malformed rpc result")
)

// Network selects a public fullnode.
type Network string

const (
	Testnet  Network = "testnet"
	Mainnet  Network = "mainnet"
	Devnet   Network = "devnet"
	Localnet Network = "localnet"
)

// FullnodeURL returns the public JSON-RPC endpoint for the network.
func (n Network) FullnodeURL() string {
	switch n {
	case Mainnet:
		return "https://fullnode.mainnet.sui.io:443"
	case Devnet:
		return "https://fullnode.devnet.sui.io:443"
	case Localnet:
		return "http://127.0.0.1:9000"
	default:
		return "https://fullnode.testnet.sui.io:443"
	}
}

// ParseNetwork accepts testnet, mainnet, devnet or localnet.
func ParseNetwork(s string) (Network, error) {
	switch n := Network(s); n {
	case Testnet, Mainnet, Devnet, Localnet:
		return n, nil
	case "":
		return Testnet, nil
	default:
		return "", fmt.Errorf("unknown sui network %q", s)
	}
}

// OwnerKind describes who owns an object.
type OwnerKind string

const (
	OwnerAddress   OwnerKind = "address"
	OwnerObject    OwnerKind = "object"
	OwnerShared    OwnerKind = "shared"
	OwnerImmutable OwnerKind = "immutable"
)

// ObjectInfo is the subset of sui_getObject used to reference an object in a
// transaction and to read its fields.
type ObjectInfo struct {
	ObjectID             string          `json:"objectId"`
	Version              uint64          `json:"version"`
	Digest               string          `json:"digest"`
	Type                 string          `json:"type"`
	Owner                OwnerKind       `json:"owner"`
	OwnerAddress         string          `json:"ownerAddress,omitempty"`
	InitialSharedVersion uint64          `json:"initialSharedVersion,omitempty"`
	Fields               json.RawMessage `json:"fields,omitempty"`
}

// Coin is one gas coin object.
type Coin struct {
	ObjectID string
	Version  uint64
	Digest   string
	Balance  uint64
}

// CoinPage is one page of suix_getCoins.
type CoinPage struct {
	Coins       []Coin
	NextCursor  string
	HasNextPage bool
}

// ExecutionResult summarizes sui_executeTransactionBlock.
type ExecutionResult struct {
	Digest  string
	Status  string
	Error   string
	GasUsed uint64
}

// ExecutionError reports a transaction that reached the chain and failed.
type ExecutionError struct {
	Digest string
	Reason string
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("transaction execution failed (%s): %s", e.Digest, e.Reason)
}

// Client is a typed Sui JSON-RPC client.
type Client struct {
	rpc provider.Provider
}

func NewClient(p provider.Provider) *Client {
	return &Client{rpc: p}
}

// Provider returns the underlying transport.
func (c *Client) Provider() provider.Provider { return c.rpc }

func (c *Client) call(ctx context.Context, method string, params ...any) (gjson.Result, error) {
	if params == nil {
		params = []any{}
	}
	raw, err := c.rpc.Call(ctx, method, params)
	if err != nil {
		return gjson.Result{}, err
	}
	if !gjson.ValidBytes(raw) {
		return gjson.Result{}, fmt.Errorf("%w: %s", ErrMalformed, method)
	}
	return gjson.ParseBytes(raw), nil
}

// LatestCheckpoint returns the latest checkpoint sequence number.
func (c *Client) LatestCheckpoint(ctx context.Context) (uint64, error) {
	res, err := c.call(ctx, methodLatestCheckpoint)
	if err != nil {
		return 0, err
	}
	return parseUint(res, methodLatestCheckpoint)
}

// Balance returns the total balance of coinType owned by owner, in base units.
func (c *Client) Balance(ctx context.Context, owner, coinType string) (uint64, error) {
	if coinType == "" {
		coinType = SUICoinType
	}
	res, err := c.call(ctx, methodGetBalance, owner, coinType)
	if err != nil {
		return 0, err
	}
	return parseUint(res.Get("totalBalance"), methodGetBalance)
}

// ReferenceGasPrice returns the current epoch's reference gas price.
func (c *Client) ReferenceGasPrice(ctx context.Context) (uint64, error) {
	res, err := c.call(ctx, methodReferenceGas)
	if err != nil {
		return 0, err
	}
	return parseUint(res, methodReferenceGas)
}

// Object fetches an object with its owner and content.
func (c *Client) Object(ctx context.Context, id string) (*ObjectInfo, error) {
	opts := map[string]bool{"showOwner": true, "showType": true, "showContent": true}
	res, err := c.call(ctx, methodGetObject, id, opts)
	if err != nil {
		return nil, err
	}
	if e := res.Get("error"); e.Exists() {
		return nil, fmt.Errorf("%w: %s (%s)", ErrObjectNotFound, id, e.Get("code").String())
	}
	data := res.Get("data")
	if !data.Exists() {
		return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, id)
	}

	version, err := parseUint(data.Get("version"), methodGetObject)
	if err != nil {
		return nil, err
	}
	info := &ObjectInfo{
		ObjectID: data.Get("objectId").String(),
		Version:  version,
		Digest:   data.Get("digest").String(),
		Type:     data.Get("type").String(),
	}
	if f := data.Get("content.fields"); f.Exists() {
		info.Fields = json.RawMessage(f.Raw)
	}

	owner := data.Get("owner")
	switch {
	case owner.Type == gjson.String && owner.String() == "Immutable":
		info.Owner = OwnerImmutable
	case owner.Get("AddressOwner").Exists():
		info.Owner = OwnerAddress
		info.OwnerAddress = owner.Get("AddressOwner").String()
	case owner.Get("ObjectOwner").Exists():
		info.Owner = OwnerObject
		info.OwnerAddress = owner.Get("ObjectOwner").String()
	case owner.Get("Shared").Exists():
		info.Owner = OwnerShared
		isv, err := parseUint(owner.Get("Shared.initial_shared_version"), methodGetObject)
		if err != nil {
			return nil, err
		}
		info.InitialSharedVersion = isv
	default:
		return nil, fmt.Errorf("%w: unknown owner %s", ErrMalformed, owner.Raw)
	}
	return info, nil
}

// Coins returns one page of owner's coins of coinType.
func (c *Client) Coins(ctx context.Context, owner, coinType, cursor string) (*CoinPage, error) {
	if coinType == "" {
		coinType = SUICoinType
	}
	var cur any
	if cursor != "" {
		cur = cursor
	}
	res, err := c.call(ctx, methodGetCoins, owner, coinType, cur, nil)
	if err != nil {
		return nil, err
	}

	page := &CoinPage{
		NextCursor:  res.Get("nextCursor").String(),
		HasNextPage: res.Get("hasNextPage").Bool(),
	}
	for _, item := range res.Get("data").Array() {
		version, err := parseUint(item.Get("version"), methodGetCoins)
		if err != nil {
			return nil, err
		}
		balance, err := parseUint(item.Get("balance"), methodGetCoins)
		if err != nil {
			return nil, err
		}
		page.Coins = append(page.Coins, Coin{
			ObjectID: item.Get("coinObjectId").String(),
			Version:  version,
			Digest:   item.Get("digest").String(),
			Balance:  balance,
		})
	}
	return page, nil
}

// ExecuteTransactionBlock submits signed transaction bytes and waits for
// local execution. A transaction that executed but aborted is returned as
// an *ExecutionError alongside the result.
func (c *Client) ExecuteTransactionBlock(ctx context.Context, txBytes string, signatures []string) (*ExecutionResult, error) {
	opts := map[string]bool{"showEffects": true}
	res, err := c.call(ctx, methodExecuteTx, txBytes, signatures, opts, "WaitForLocalExecution")
	if err != nil {
		return nil, err
	}

	out := &ExecutionResult{
		Digest: res.Get("digest").String(),
		Status: res.Get("effects.status.status").String(),
		Error:  res.Get("effects.status.error").String(),
	}
	if out.Digest == "" {
		return nil, fmt.Errorf("%w: %s: missing digest", ErrMalformed, methodExecuteTx)
	}
	gas := res.Get("effects.gasUsed")
	spent := gas.Get("computationCost").Uint() + gas.Get("storageCost").Uint()
	if rebate := gas.Get("storageRebate").Uint(); rebate < spent {
		out.GasUsed = spent - rebate
	}

	if out.Status != "" && out.Status != "success" {
		return out, &ExecutionError{Digest: out.Digest, Reason: out.Error}
	}
	return out, nil
}

// Sui encodes u64 values as decimal strings.
func parseUint(r gjson.Result, method string) (uint64, error) {
	switch r.Type {
	case gjson.String:
		v, err := strconv.ParseUint(r.Str, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %s: %v", ErrMalformed, method, err)
		}
		return v, nil
	case gjson.Number:
		return r.Uint(), nil
	default:
		return 0, fmt.Errorf("%w: %s: expected integer, got %s", ErrMalformed, method, r.Raw)
	}
}
