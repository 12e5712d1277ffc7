package rpc

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"

	regnode "github.com/dogecoinfoundation/regnode/pkg"
	"github.com/julienschmidt/httprouter"
	"github.com/shopspring/decimal"
	"github.com/tjstebbing/conductor"
)

// interface guard ensures Server implements conductor.Service
var _ conductor.Service = Server{}

// Server exposes the node control surface as JSON-RPC over HTTP POST,
// the protocol the reference node speaks: positional params, numeric
// ids, basic auth.
type Server struct {
	api    regnode.API
	config regnode.Config
}

func NewServer(config regnode.Config, api regnode.API) (Server, error) {
	return Server{api: api, config: config}, nil
}

type rpcRequest struct {
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
	Id     uint64            `json:"id"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Id     uint64    `json:"id"`
	Result any       `json:"result"`
	Error  *rpcError `json:"error"`
}

// JSON-RPC error codes for the error taxonomy the node reports.
var rpcCodeForError = map[string]int{
	string(regnode.BadRequest):   -32600,
	string(regnode.NotFound):     -5,
	string(regnode.BadTxn):       -25,
	string(regnode.BadBlock):     -25,
	string(regnode.WalletError):  -6,
	string(regnode.NotAvailable): -9,
	string(regnode.UnknownError): -1,
}

// Implements conductor.Service
func (s Server) Run(started, stopped chan bool, stop chan context.Context) error {
	mux := s.createRouter()

	addr := fmt.Sprintf("%s:%d", s.config.RPC.Bind, s.config.RPC.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("rpc server: listen %s: %v", addr, err)
	}
	server := &http.Server{Handler: mux}

	go func() {
		go func() {
			if err := server.Serve(listener); err != http.ErrServerClosed {
				log.Printf("[!] rpc server: %v", err)
			}
		}()
		started <- true
		ctx := <-stop
		server.Shutdown(ctx)
		stopped <- true
	}()
	return nil
}

func (s Server) createRouter() *httprouter.Router {
	mux := httprouter.New()
	mux.POST("/", s.handleRPC)
	return mux
}

func (s Server) handleRPC(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if !s.checkAuth(r) {
		w.Header().Set("WWW-Authenticate", `Basic realm="regnode"`)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "read request", http.StatusBadRequest)
		return
	}
	var req rpcRequest
	if err := json.Unmarshal(body, &req); err != nil {
		sendRPC(w, rpcResponse{Error: &rpcError{Code: -32700, Message: "parse error"}})
		return
	}

	result, err := s.dispatch(&req)
	res := rpcResponse{Id: req.Id}
	if err != nil {
		res.Error = errorFor(err)
	} else {
		res.Result = result
	}
	sendRPC(w, res)
}

func (s Server) dispatch(req *rpcRequest) (any, error) {
	switch req.Method {
	case "getnewaddress":
		return s.api.GetNewAddress()

	case "generate":
		var n int
		if err := param(req, 0, &n); err != nil {
			return nil, err
		}
		return s.api.Generate(n)

	case "sendtoaddress":
		var address string
		var amount decimal.Decimal
		if err := param(req, 0, &address); err != nil {
			return nil, err
		}
		if err := param(req, 1, &amount); err != nil {
			return nil, err
		}
		return s.api.SendToAddress(address, amount)

	case "sendrawtransaction":
		var txHex string
		if err := param(req, 0, &txHex); err != nil {
			return nil, err
		}
		return s.api.SendRawTransaction(txHex)

	case "getblockcount":
		return s.api.GetBlockCount()

	case "getbestblockhash":
		return s.api.GetBestBlockHash()

	case "getblockhash":
		var height int64
		if err := param(req, 0, &height); err != nil {
			return nil, err
		}
		return s.api.GetBlockHash(height)

	case "getrawmempool":
		return s.api.GetRawMempool()

	case "getbalance":
		return s.api.GetBalance()

	case "getblockchaininfo":
		return s.api.GetBlockchainInfo()

	default:
		return nil, &rpcError{Code: -32601, Message: "method not found: " + req.Method}
	}
}

// param unmarshals the positional parameter at index i.
func param(req *rpcRequest, i int, out any) error {
	if i >= len(req.Params) {
		return regnode.NewErr(regnode.BadRequest, "%s: missing parameter %d", req.Method, i)
	}
	if err := json.Unmarshal(req.Params[i], out); err != nil {
		return regnode.NewErr(regnode.BadRequest, "%s: bad parameter %d: %v", req.Method, i, err)
	}
	return nil
}

func (s Server) checkAuth(r *http.Request) bool {
	user, pass, ok := r.BasicAuth()
	if !ok {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(s.config.RPC.User)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(pass), []byte(s.config.RPC.Pass)) == 1
	return userOK && passOK
}

func (e *rpcError) Error() string {
	return e.Message
}

func errorFor(err error) *rpcError {
	if e, ok := err.(*rpcError); ok {
		return e
	}
	if info, ok := err.(*regnode.ErrorInfo); ok {
		code, found := rpcCodeForError[string(info.Code)]
		if !found {
			code = -1
		}
		return &rpcError{Code: code, Message: info.Message}
	}
	return &rpcError{Code: -1, Message: err.Error()}
}

func sendRPC(w http.ResponseWriter, res rpcResponse) {
	b, err := json.Marshal(res)
	if err != nil {
		http.Error(w, "marshal response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(b)
}
