package relay

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/peanutprotocol/peanut-go/pkg/claim"
	"github.com/peanutprotocol/peanut-go/pkg/contracts"
	"github.com/peanutprotocol/peanut-go/pkg/persistence"
	"github.com/peanutprotocol/peanut-go/pkg/signer"
	"github.com/peanutprotocol/peanut-go/pkg/util"
)

const maxRequestBody = 1 << 16

func (s *Server) handleClaims(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleSubmitClaim(w, r)
	case http.MethodGet:
		s.handleGetClaim(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleSubmitClaim verifies and records a withdrawal claim
func (s *Server) handleSubmitClaim(w http.ResponseWriter, r *http.Request) {
	var req SubmitClaimRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Failed to parse request: %v", err), http.StatusBadRequest)
		return
	}

	if req.ChainId == 0 {
		http.Error(w, "chainId is required", http.StatusBadRequest)
		return
	}
	contract, err := util.ParseAddress(req.ContractAddress)
	if err != nil {
		http.Error(w, fmt.Sprintf("contractAddress: %v", err), http.StatusBadRequest)
		return
	}
	if contract == (common.Address{}) {
		http.Error(w, "contractAddress cannot be the zero address", http.StatusBadRequest)
		return
	}
	// Only the deposit's own link key may take its claim slot.
	if req.ExpectedSigner == "" {
		http.Error(w, "expectedSigner is required", http.StatusBadRequest)
		return
	}
	expected, err := util.ParseAddress(req.ExpectedSigner)
	if err != nil {
		http.Error(w, fmt.Sprintf("expectedSigner: %v", err), http.StatusBadRequest)
		return
	}
	if expected == (common.Address{}) {
		http.Error(w, "expectedSigner cannot be the zero address", http.StatusBadRequest)
		return
	}
	c, err := parseClaim(&req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	signerAddr, err := c.Signer()
	if err != nil {
		s.logger.Sugar().Debugw("Rejected claim with unrecoverable signature", "error", err)
		http.Error(w, "Invalid signature", http.StatusUnauthorized)
		return
	}
	if signerAddr != expected {
		s.logger.Sugar().Infow("Rejected claim signed by unexpected key",
			"expected", expected.Hex(), "recovered", signerAddr.Hex(), "depositIndex", c.DepositIndex)
		http.Error(w, "Signature does not match deposit", http.StatusUnauthorized)
		return
	}

	calldata, err := contracts.PackWithdrawDeposit(c)
	if err != nil {
		s.logger.Sugar().Errorw("Failed to pack withdrawal", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	record := persistence.NewClaimRecord(req.ChainId, contract, c, signerAddr)
	if err := s.store.SaveClaim(record); err != nil {
		if errors.Is(err, persistence.ErrClaimExists) {
			http.Error(w, "Deposit already claimed", http.StatusConflict)
			return
		}
		s.logger.Sugar().Errorw("Failed to save claim", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	s.logger.Sugar().Infow("Accepted claim",
		"id", record.Id,
		"chainId", record.ChainId,
		"contract", record.ContractAddress,
		"depositIndex", record.DepositIndex,
		"recipient", record.Recipient,
		"signer", record.Signer,
	)

	writeJSON(w, http.StatusCreated, SubmitClaimResponse{
		Id:       record.Id,
		Signer:   record.Signer,
		Calldata: hexutil.Encode(calldata),
	})
}

func parseClaim(req *SubmitClaimRequest) (*claim.Claim, error) {
	recipient, err := util.ParseAddress(req.Recipient)
	if err != nil {
		return nil, fmt.Errorf("recipient: %w", err)
	}
	hash, err := util.ParseHexBytes(req.RecipientHash)
	if err != nil || len(hash) != common.HashLength {
		return nil, fmt.Errorf("recipientHash must be 32 bytes of hex")
	}
	sig, err := signer.ParseSignature(req.Signature)
	if err != nil {
		return nil, fmt.Errorf("signature: %w", err)
	}

	c := &claim.Claim{
		DepositIndex:  req.DepositIndex,
		Recipient:     recipient,
		RecipientHash: common.BytesToHash(hash),
		Signature:     sig,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// handleGetClaim looks up one claim, or lists all when no query is given
func (s *Server) handleGetClaim(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if len(q) == 0 {
		records, err := s.store.ListClaims()
		if err != nil {
			s.logger.Sugar().Errorw("Failed to list claims", "error", err)
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, records)
		return
	}

	chainId, err := strconv.ParseUint(q.Get("chainId"), 10, 64)
	if err != nil {
		http.Error(w, "chainId must be an unsigned integer", http.StatusBadRequest)
		return
	}
	contract, err := util.ParseAddress(q.Get("contract"))
	if err != nil {
		http.Error(w, fmt.Sprintf("contract: %v", err), http.StatusBadRequest)
		return
	}
	index, err := strconv.ParseUint(q.Get("index"), 10, 64)
	if err != nil {
		http.Error(w, "index must be an unsigned integer", http.StatusBadRequest)
		return
	}

	record, err := s.store.LoadClaim(persistence.NewClaimKey(chainId, contract, index))
	if err != nil {
		s.logger.Sugar().Errorw("Failed to load claim", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	if record == nil {
		http.Error(w, "Claim not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := s.store.HealthCheck(); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unhealthy", Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
