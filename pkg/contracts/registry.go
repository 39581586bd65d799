package contracts

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

const (
	registryNameKey    = "name"
	registryMainnetKey = "mainnet"
)

// DefaultVersions are the contract short names every chain is expected to carry.
var DefaultVersions = []string{"v3", "v4", "v4b"}

// ChainDeployments is one chain entry of contracts.json. Key is the entry's
// key as written, usually the decimal chain id but sometimes an RPC endpoint
// name; ChainId is zero when the key is not numeric.
type ChainDeployments struct {
	Key       string
	ChainId   uint64
	Name      string
	Mainnet   bool
	Contracts map[string]common.Address
	// Unresolved holds versions recorded with a null address.
	Unresolved []string
}

// DisplayName returns the chain name, falling back to its key.
func (c *ChainDeployments) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return fmt.Sprintf("Chain ID %s", c.Key)
}

// HasVersion reports whether version is listed for the chain, with or without
// a resolved address.
func (c *ChainDeployments) HasVersion(version string) bool {
	if _, ok := c.Contracts[version]; ok {
		return true
	}
	for _, v := range c.Unresolved {
		if v == version {
			return true
		}
	}
	return false
}

// Registry is the parsed deployment file. Each entry maps "name", "mainnet"
// and one key per deployed version.
type Registry struct {
	chains map[string]*ChainDeployments
}

// LoadRegistry reads and parses a contracts.json file.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read registry %s", path)
	}
	return ParseRegistry(data)
}

// ParseRegistry accepts "mainnet" as "true"/"false" or a JSON bool, and null
// addresses, which count as deployed without an address.
func ParseRegistry(data []byte) (*Registry, error) {
	var raw map[string]map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode registry: %w", err)
	}

	r := &Registry{chains: make(map[string]*ChainDeployments, len(raw))}
	for key, entry := range raw {
		chain := &ChainDeployments{
			Key:       key,
			Contracts: make(map[string]common.Address),
		}
		if id, err := strconv.ParseUint(key, 10, 64); err == nil {
			chain.ChainId = id
		}

		for field, value := range entry {
			switch field {
			case registryNameKey:
				var name string
				if err := json.Unmarshal(value, &name); err == nil {
					chain.Name = name
				}
			case registryMainnetKey:
				chain.Mainnet = parseMainnet(value)
			default:
				var addr *string
				if err := json.Unmarshal(value, &addr); err != nil {
					return nil, fmt.Errorf("chain %s: invalid %s address %s", key, field, string(value))
				}
				if addr == nil {
					chain.Unresolved = append(chain.Unresolved, field)
					continue
				}
				if !common.IsHexAddress(*addr) {
					return nil, fmt.Errorf("chain %s: invalid %s address %q", key, field, *addr)
				}
				chain.Contracts[field] = common.HexToAddress(*addr)
			}
		}
		sort.Strings(chain.Unresolved)
		r.chains[key] = chain
	}
	return r, nil
}

func parseMainnet(value json.RawMessage) bool {
	var flag bool
	if err := json.Unmarshal(value, &flag); err == nil {
		return flag
	}
	var s string
	if err := json.Unmarshal(value, &s); err == nil {
		return s == "true"
	}
	return false
}

// Chain returns the entry for chainId, or nil.
func (r *Registry) Chain(chainId uint64) *ChainDeployments {
	return r.chains[strconv.FormatUint(chainId, 10)]
}

// ChainByKey returns the entry stored under key, or nil.
func (r *Registry) ChainByKey(key string) *ChainDeployments {
	return r.chains[key]
}

// Keys returns every entry key in ascending order.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.chains))
	for key := range r.chains {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// ChainIds returns the ids of entries keyed by a numeric chain id, ascending.
func (r *Registry) ChainIds() []uint64 {
	ids := make([]uint64, 0, len(r.chains))
	for _, chain := range r.chains {
		if chain.ChainId != 0 {
			ids = append(ids, chain.ChainId)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ContractAddress returns the address of version on chainId. Versions with a
// null address are not returned.
func (r *Registry) ContractAddress(chainId uint64, version string) (common.Address, bool) {
	chain := r.Chain(chainId)
	if chain == nil {
		return common.Address{}, false
	}
	addr, ok := chain.Contracts[version]
	return addr, ok
}

// MissingVersion lists the chains a version has not been deployed to.
type MissingVersion struct {
	Mainnets []string `json:"mainnets"`
	Testnets []string `json:"testnets"`
}

// MissingReport maps each expected version to the chains lacking it.
type MissingReport struct {
	Versions []string                   `json:"versions"`
	Missing  map[string]*MissingVersion `json:"missing"`
}

// MissingDeployments reports, per expected version, which mainnets and testnets
// have no deployment. Chain names are sorted.
func (r *Registry) MissingDeployments(expected []string) *MissingReport {
	report := &MissingReport{Missing: make(map[string]*MissingVersion, len(expected))}
	for _, version := range expected {
		if _, seen := report.Missing[version]; seen {
			continue
		}
		report.Versions = append(report.Versions, version)
		report.Missing[version] = &MissingVersion{Mainnets: []string{}, Testnets: []string{}}
	}

	for _, chain := range r.chains {
		for _, version := range report.Versions {
			if chain.HasVersion(version) {
				continue
			}
			m := report.Missing[version]
			if chain.Mainnet {
				m.Mainnets = append(m.Mainnets, chain.DisplayName())
			} else {
				m.Testnets = append(m.Testnets, chain.DisplayName())
			}
		}
	}
	for _, m := range report.Missing {
		sort.Strings(m.Mainnets)
		sort.Strings(m.Testnets)
	}
	return report
}

// Empty reports whether every chain carries every expected version.
func (m *MissingReport) Empty() bool {
	for _, v := range m.Missing {
		if len(v.Mainnets) > 0 || len(v.Testnets) > 0 {
			return false
		}
	}
	return true
}

// WriteTo prints the report grouped by network class.
func (m *MissingReport) WriteTo(w io.Writer) (int64, error) {
	var n int64
	write := func(format string, args ...interface{}) error {
		c, err := fmt.Fprintf(w, format, args...)
		n += int64(c)
		return err
	}

	sections := []struct {
		title string
		pick  func(*MissingVersion) []string
	}{
		{"Mainnets", func(v *MissingVersion) []string { return v.Mainnets }},
		{"Testnets", func(v *MissingVersion) []string { return v.Testnets }},
	}
	for i, section := range sections {
		sep := ""
		if i > 0 {
			sep = "\n"
		}
		if err := write("%s%s:\nMissing Deployments\n", sep, section.title); err != nil {
			return n, err
		}
		for _, version := range m.Versions {
			names := section.pick(m.Missing[version])
			if len(names) == 0 {
				continue
			}
			if err := write("%s : %s\n", version, strings.Join(names, ", ")); err != nil {
				return n, err
			}
		}
	}
	return n, nil
}
