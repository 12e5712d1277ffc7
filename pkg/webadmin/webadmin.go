package webadmin

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"

	regnode "github.com/dogecoinfoundation/regnode/pkg"
	"github.com/julienschmidt/httprouter"
	"github.com/tjstebbing/conductor"
)

// WebAdmin is a small human-facing HTTP API beside the JSON-RPC port:
// health checks, a chain summary and QR codes for addresses.
type WebAdmin struct {
	api    regnode.API
	config regnode.Config
}

// interface guard ensures WebAdmin implements conductor.Service
var _ conductor.Service = WebAdmin{}

func NewWebAdmin(config regnode.Config, api regnode.API) (WebAdmin, error) {
	return WebAdmin{api: api, config: config}, nil
}

func (t WebAdmin) Run(started, stopped chan bool, stop chan context.Context) error {
	go func() {
		mux := t.createRouter()

		server := &http.Server{Addr: t.config.WebAdmin.Bind + ":" + t.config.WebAdmin.Port, Handler: mux}
		fmt.Printf("\nWeb admin listening on %s:%s", t.config.WebAdmin.Bind, t.config.WebAdmin.Port)
		go func() {
			if err := server.ListenAndServe(); err != http.ErrServerClosed {
				log.Fatalf("HTTP server webadmin ListenAndServe: %v", err)
			}
		}()

		started <- true
		ctx := <-stop
		server.Shutdown(ctx)
		stopped <- true
	}()
	return nil
}

func (t WebAdmin) createRouter() *httprouter.Router {
	mux := httprouter.New()

	// GET /health -> { chain, blocks, bestblockhash }
	mux.GET("/health", t.health)

	// GET /chain -> same summary (alias kept for dashboards)
	mux.GET("/chain", t.health)

	// GET /address/:address/qr.png ? size -> QR code PNG of the address
	mux.GET("/address/:address/qr.png", t.getAddressQR)

	return mux
}

func (t WebAdmin) health(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	info, err := t.api.GetBlockchainInfo()
	if err != nil {
		sendError(w, "GetBlockchainInfo", err)
		return
	}
	sendResponse(w, info)
}

func (t WebAdmin) getAddressQR(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	address := p.ByName("address")
	if address == "" {
		sendBadRequest(w, "missing address in URL")
		return
	}
	size := 256
	if qsize := r.URL.Query().Get("size"); qsize != "" {
		n, err := strconv.Atoi(qsize)
		if err != nil || n < 64 || n > 2048 {
			sendBadRequest(w, "size must be an integer between 64 and 2048")
			return
		}
		size = n
	}
	png, err := GenerateQRCodePNG(address, size)
	if err != nil {
		sendError(w, "GenerateQRCodePNG", err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(png)
}
