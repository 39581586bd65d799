package relay

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/peanutprotocol/peanut-go/pkg/config"
	"github.com/peanutprotocol/peanut-go/pkg/persistence"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

/*
Server accepts signed withdrawal claims from link holders and records them so
a funded relayer can submit withdrawDeposit on their behalf.

	POST /claims
	  - Request: { chainId, contractAddress, depositIndex, recipient, recipientHash, signature, expectedSigner }
	  - recipientHash must equal the prefixed withdrawal digest of recipient
	  - expectedSigner is the deposit's pubKey20 and is required; the address
	    recovered from signature must equal it
	  - Response 201: { id, signer, calldata } where calldata is ready-to-send
	    withdrawDeposit input
	  - 400 malformed request, 401 signature does not verify, 409 deposit already claimed

	GET /claims?chainId=&contract=&index=
	  - Returns the stored record, 404 when absent
	  - Without query parameters returns every record

	GET /health
	  - Persistence health check
*/
type Server struct {
	store      persistence.IClaimPersistence
	logger     *zap.Logger
	limiter    *rate.Limiter
	httpServer *http.Server
}

// NewServer creates a new relay server. A zero RateLimit disables limiting.
func NewServer(cfg *config.ClaimRelayConfig, store persistence.IClaimPersistence, logger *zap.Logger) *Server {
	s := &Server{
		store:  store,
		logger: logger,
	}
	if cfg.RateLimit > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/claims", s.handleClaims)
	mux.HandleFunc("/health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.rateLimit(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Start binds the listen address and serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}

	go func() {
		s.logger.Sugar().Infow("Starting claim relay", "address", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Sugar().Errorw("HTTP server error", "error", err)
		}
	}()
	return nil
}

// Stop gracefully shuts down the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// GetHandler returns the HTTP handler (for testing)
func (s *Server) GetHandler() http.Handler {
	return s.httpServer.Handler
}
