package relay

// SubmitClaimRequest is the body of POST /claims. All byte fields are 0x hex.
type SubmitClaimRequest struct {
	ChainId         uint64 `json:"chainId"`
	ContractAddress string `json:"contractAddress"`
	DepositIndex    uint64 `json:"depositIndex"`
	Recipient       string `json:"recipient"`
	RecipientHash   string `json:"recipientHash"`
	Signature       string `json:"signature"`
	// ExpectedSigner is the deposit's pubKey20. The recovered signer must match.
	ExpectedSigner string `json:"expectedSigner"`
}

type SubmitClaimResponse struct {
	Id       string `json:"id"`
	Signer   string `json:"signer"`
	Calldata string `json:"calldata"`
}

type HealthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}
