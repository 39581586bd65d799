package persistence

import (
	"encoding/json"
	"fmt"
)

// MarshalClaimRecord serializes a ClaimRecord to JSON bytes.
func MarshalClaimRecord(r *ClaimRecord) ([]byte, error) {
	if r == nil {
		return nil, fmt.Errorf("cannot marshal nil ClaimRecord")
	}

	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ClaimRecord to JSON: %w", err)
	}

	return data, nil
}

// UnmarshalClaimRecord deserializes a ClaimRecord from JSON bytes.
func UnmarshalClaimRecord(data []byte) (*ClaimRecord, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("cannot unmarshal empty data")
	}

	var r ClaimRecord
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON to ClaimRecord: %w", err)
	}

	return &r, nil
}
