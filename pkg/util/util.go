package util

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
)

func Map[A any, B any](coll []A, mapper func(i A, index uint64) B) []B {
	out := make([]B, len(coll))
	for i, item := range coll {
		out[i] = mapper(item, uint64(i))
	}
	return out
}

func Filter[A any](coll []A, criteria func(i A) bool) []A {
	out := make([]A, 0)
	for _, item := range coll {
		if criteria(item) {
			out = append(out, item)
		}
	}
	return out
}

// SplitList splits a comma separated flag value, dropping empty entries.
func SplitList(s string) []string {
	parts := Map(strings.Split(s, ","), func(p string, _ uint64) string {
		return strings.TrimSpace(p)
	})
	return Filter(parts, func(p string) bool { return p != "" })
}

// ParseAddress parses a 20-byte hex address, with or without 0x. Unlike
// common.HexToAddress it rejects malformed input instead of truncating it.
func ParseAddress(s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("invalid address: %q", s)
	}
	return common.HexToAddress(s), nil
}

// ParseHexBytes decodes hex with an optional 0x prefix.
func ParseHexBytes(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		s = "0x" + s
	}
	b, err := hexutil.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex %q: %w", s, err)
	}
	return b, nil
}

// ParseUint256 parses a decimal or 0x-prefixed hex unsigned integer that fits
// in 256 bits.
func ParseUint256(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return new(big.Int), nil
	}
	v, ok := math.ParseBig256(s)
	if !ok {
		return nil, fmt.Errorf("invalid uint256: %q", s)
	}
	if v.Sign() < 0 {
		return nil, fmt.Errorf("uint256 cannot be negative: %q", s)
	}
	return v, nil
}
