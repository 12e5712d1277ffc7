package rpc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/shopspring/decimal"

	regnode "github.com/dogecoinfoundation/regnode/pkg"
)

// NewClient returns a typed JSON-RPC client for a node's control port.
func NewClient(config regnode.Config) *Client {
	url := fmt.Sprintf("http://%s:%d", config.RPC.Bind, config.RPC.Port)
	var id uint64 = 1
	return &Client{url: url, user: config.RPC.User, pass: config.RPC.Pass, id: &id}
}

// NewClientURL is NewClient against an explicit URL (httptest servers).
func NewClientURL(url, user, pass string) *Client {
	var id uint64 = 1
	return &Client{url: url, user: user, pass: pass, id: &id}
}

type Client struct {
	url  string
	user string
	pass string
	id   *uint64
}

type clientRequest struct {
	Method string `json:"method"`
	Params []any  `json:"params"`
	Id     uint64 `json:"id"`
}

type clientResponse struct {
	Id     uint64           `json:"id"`
	Result *json.RawMessage `json:"result"`
	Error  *rpcError        `json:"error"`
}

func (c *Client) request(method string, params []any, result any) error {
	body := clientRequest{
		Method: method,
		Params: params,
		Id:     *c.id,
	}
	*c.id += 1 // each request should use a unique ID
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("json-rpc marshal request: %v", err)
	}
	req, err := http.NewRequest("POST", c.url, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("json-rpc request: %v", err)
	}
	req.SetBasicAuth(c.user, c.pass)
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("json-rpc transport: %v", err)
	}
	// we MUST read all of res.Body and call res.Close,
	// otherwise the underlying connection cannot be re-used.
	defer res.Body.Close()
	res_bytes, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("json-rpc read response: %v", err)
	}
	if res.StatusCode != 200 {
		return fmt.Errorf("json-rpc status code: %s", res.Status)
	}
	// cannot use json.NewDecoder: "The decoder introduces its own buffering
	// and may read data from r beyond the JSON values requested."
	var rpcres clientResponse
	err = json.Unmarshal(res_bytes, &rpcres)
	if err != nil {
		return fmt.Errorf("json-rpc unmarshal response: %v", err)
	}
	if rpcres.Id != body.Id {
		return fmt.Errorf("json-rpc wrong ID returned: %v vs %v", rpcres.Id, body.Id)
	}
	if rpcres.Error != nil {
		return regnode.NewErr(regnode.RPCError, "json-rpc error %d: %s", rpcres.Error.Code, rpcres.Error.Message)
	}
	if rpcres.Result == nil {
		return fmt.Errorf("json-rpc missing result")
	}
	err = json.Unmarshal(*rpcres.Result, result)
	if err != nil {
		return fmt.Errorf("json-rpc unmarshal result: %v | %v", err, string(*rpcres.Result))
	}
	return nil
}

func (c *Client) GetNewAddress() (address string, err error) {
	err = c.request("getnewaddress", []any{}, &address)
	return
}

// Generate mines n blocks and returns their hashes in order.
func (c *Client) Generate(n int) (hashes []string, err error) {
	err = c.request("generate", []any{n}, &hashes)
	return
}

func (c *Client) SendToAddress(address string, amount decimal.Decimal) (txid string, err error) {
	err = c.request("sendtoaddress", []any{address, amount}, &txid)
	return
}

func (c *Client) SendRawTransaction(txHex string) (txid string, err error) {
	err = c.request("sendrawtransaction", []any{txHex}, &txid)
	return
}

func (c *Client) GetBlockCount() (blockCount int64, err error) {
	err = c.request("getblockcount", []any{}, &blockCount)
	return
}

func (c *Client) GetBestBlockHash() (blockHash string, err error) {
	err = c.request("getbestblockhash", []any{}, &blockHash)
	return
}

func (c *Client) GetBlockHash(height int64) (hash string, err error) {
	err = c.request("getblockhash", []any{height}, &hash)
	return
}

func (c *Client) GetRawMempool() (txids []string, err error) {
	err = c.request("getrawmempool", []any{}, &txids)
	return
}

func (c *Client) GetBalance() (balance decimal.Decimal, err error) {
	err = c.request("getbalance", []any{}, &balance)
	return
}

func (c *Client) GetBlockchainInfo() (info regnode.BlockchainInfo, err error) {
	err = c.request("getblockchaininfo", []any{}, &info)
	return
}
