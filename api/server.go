// Copyright 2019 The go-xgp Authors
// This file is part of the go-xgp library.
//
// The go-xgp library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-xgp library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-xgp library. If not, see <http://www.gnu.org/licenses/>.

// Package api exposes the node over HTTP: chain and wallet inspection,
// transaction submission, mining control and the contract endpoints.
package api

import (
	"encoding/hex"
	"encoding/json"
	"net"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"

	"github.com/xugenping/go-xgp/blockchain/vm"
	"github.com/xugenping/go-xgp/log"
	"github.com/xugenping/go-xgp/node"
	"github.com/xugenping/go-xgp/params"
)

var logger = log.NewModuleLogger(log.API)

// Server serves the node's HTTP surface.
type Server struct {
	node *node.Node
	http *http.Server
}

// NewServer wires the routes and CORS for the given node.
func NewServer(n *node.Node, addr string) *Server {
	s := &Server{node: n}

	router := httprouter.New()
	router.GET("/health", s.health)
	router.GET("/api/blockchain", s.getBlockchain)
	router.GET("/api/wallet", s.getWallet)
	router.GET("/api/balance", s.getBalance)
	router.GET("/api/balance/:address", s.getAddressBalance)
	router.POST("/api/transaction", s.createTransaction)
	router.POST("/api/mine", s.startMining)
	router.POST("/api/mine/stop", s.stopMining)
	router.GET("/api/mine/status", s.miningStatus)

	router.POST("/api/contracts/deploy", s.deployContract)
	router.POST("/api/contracts/execute/:address", s.executeContract)
	router.GET("/api/contracts/state/:address", s.contractState)
	router.GET("/api/contracts/info/:address", s.contractInfo)
	router.POST("/api/contracts/estimate-gas", s.estimateGas)

	handler := cors.Default().Handler(s.rateLimited(router))
	s.http = &http.Server{Addr: addr, Handler: handler}
	return s
}

// ListenAndServe blocks serving requests.
func (s *Server) ListenAndServe() error {
	logger.Info("HTTP server listening", "addr", s.http.Addr)
	return s.http.ListenAndServe()
}

// Close shuts the listener down.
func (s *Server) Close() error {
	return s.http.Close()
}

// rateLimited rejects blacklisted peers and requests over budget before
// they reach a handler.
func (s *Server) rateLimited(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		peer, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			peer = r.RemoteAddr
		}
		guard := s.node.PeerGuard()
		if guard.IsBlacklisted(peer) {
			writeError(w, http.StatusForbidden, "peer is blacklisted")
			return
		}
		if !guard.Allow(peer) {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) getBlockchain(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, s.node.Chain().Snapshot())
}

func (s *Server) getWallet(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, s.node.Wallet())
}

func (s *Server) getBalance(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	balance := s.node.Chain().Balance(s.node.Wallet().Address())
	writeJSON(w, http.StatusOK, map[string]float64{"balance": balance})
}

func (s *Server) getAddressBalance(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
	balance := s.node.Chain().Balance(ps.ByName("address"))
	writeJSON(w, http.StatusOK, map[string]float64{"balance": balance})
}

func (s *Server) createTransaction(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body struct {
		Recipient string  `json:"recipient"`
		Amount    float64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Recipient == "" || body.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "missing recipient or amount")
		return
	}
	tx, err := s.node.SendTransaction(body.Recipient, body.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":     "Transaction created",
		"transaction": tx,
	})
}

func (s *Server) startMining(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	if s.node.Worker().Mining() {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Mining already in progress"})
		return
	}
	s.node.Worker().Start()
	writeJSON(w, http.StatusOK, map[string]string{"message": "Mining started"})
}

func (s *Server) stopMining(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	if !s.node.Worker().Mining() {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Mining not in progress"})
		return
	}
	s.node.Worker().Stop()
	writeJSON(w, http.StatusOK, map[string]string{"message": "Mining stopped"})
}

func (s *Server) miningStatus(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, s.node.Worker().Status())
}

func (s *Server) deployContract(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body struct {
		Name     string  `json:"name"`
		Code     string  `json:"code"`
		Creator  string  `json:"creator"`
		GasPrice float64 `json:"gas_price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Name == "" || body.Code == "" || body.Creator == "" {
		writeError(w, http.StatusBadRequest, "missing required fields")
		return
	}
	code, err := hex.DecodeString(body.Code)
	if err != nil {
		writeError(w, http.StatusBadRequest, "code is not valid hex")
		return
	}
	gasPrice := params.ValidateGasPrice(orDefault(body.GasPrice))

	contract := vm.NewContract(body.Name, code, body.Creator)
	address, cost := s.node.Registry().Deploy(contract, gasPrice)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":          true,
		"contract_address": address,
		"deployment_cost":  cost,
	})
}

func (s *Server) executeContract(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		InputData string  `json:"input_data"`
		GasPrice  float64 `json:"gas_price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "missing input data")
		return
	}
	input, err := hex.DecodeString(body.InputData)
	if err != nil {
		writeError(w, http.StatusBadRequest, "input data is not valid hex")
		return
	}
	gasPrice := params.ValidateGasPrice(orDefault(body.GasPrice))

	result, cost, err := s.node.Registry().Execute(ps.ByName("address"), input, gasPrice)
	if err == vm.ErrContractNotFound {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	var encoded interface{}
	if result != nil {
		encoded = result.String()
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":        true,
		"result":         encoded,
		"execution_cost": cost,
	})
}

func (s *Server) contractState(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
	state, err := s.node.Registry().GetState(ps.ByName("address"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	out := make(map[string]string, len(state))
	for k, v := range state {
		out[k] = v.String()
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"state":   out,
	})
}

func (s *Server) contractInfo(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
	contract := s.node.Registry().GetContract(ps.ByName("address"))
	if contract == nil {
		writeError(w, http.StatusNotFound, "contract not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"contract": contract,
	})
}

func (s *Server) estimateGas(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body struct {
		Operation string  `json:"operation"`
		GasPrice  float64 `json:"gas_price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Operation == "" {
		writeError(w, http.StatusBadRequest, "missing operation type")
		return
	}
	gasPrice := params.ValidateGasPrice(orDefault(body.GasPrice))

	switch body.Operation {
	case "deploy":
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":        true,
			"estimated_cost": params.DeploymentCost(gasPrice),
		})
	case "execute":
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":        true,
			"estimated_cost": params.GasCost(params.ExecuteContractGas, gasPrice),
		})
	default:
		writeError(w, http.StatusBadRequest, "invalid operation")
	}
}

func orDefault(gasPrice float64) float64 {
	if gasPrice == 0 {
		return params.DefaultGasPrice
	}
	return gasPrice
}
