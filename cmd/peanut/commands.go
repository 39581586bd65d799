package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/peanutprotocol/peanut-go/internal/keyGenerator/localKeyGenerator"
	"github.com/peanutprotocol/peanut-go/pkg/claim"
	"github.com/peanutprotocol/peanut-go/pkg/config"
	"github.com/peanutprotocol/peanut-go/pkg/contracts"
	"github.com/peanutprotocol/peanut-go/pkg/keys"
	"github.com/peanutprotocol/peanut-go/pkg/signer"
	"github.com/peanutprotocol/peanut-go/pkg/util"
	"github.com/urfave/cli/v2"
)

const cliKeyId = "cli"

type claimOutput struct {
	Claim    *claim.Claim `json:"claim"`
	Signer   string       `json:"signer"`
	ChainId  uint64       `json:"chainId,omitempty"`
	Contract string       `json:"contract,omitempty"`
	Calldata string       `json:"calldata"`
}

type depositOutput struct {
	Deposit  *contracts.Deposit `json:"deposit"`
	Value    string             `json:"value"`
	Calldata string             `json:"calldata"`
}

func printJSON(c *cli.Context, v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(c.App.Writer, string(out))
	return err
}

func messageBytes(c *cli.Context) ([]byte, error) {
	msg := c.String("message")
	if !c.Bool("hex") {
		return []byte(msg), nil
	}
	raw, err := util.ParseHexBytes(msg)
	if err != nil {
		return nil, fmt.Errorf("invalid hex message: %w", err)
	}
	return raw, nil
}

// keysNewCommand prints a fresh or secret-derived link key
func keysNewCommand(c *cli.Context) error {
	l, err := newLogger(c)
	if err != nil {
		return err
	}
	defer func() { _ = l.Sync() }()

	gen := localKeyGenerator.NewLocalKeyGenerator(l)
	var keyId string
	if secret := c.String("secret"); secret != "" {
		key, err := gen.DeriveLinkKey(c.Context, "cli", secret)
		if err != nil {
			return err
		}
		keyId = key.KeyId
	} else {
		key, err := gen.GenerateLinkKey(c.Context, "cli")
		if err != nil {
			return err
		}
		keyId = key.KeyId
	}

	exported, err := gen.Export(keyId)
	if err != nil {
		return err
	}
	return printJSON(c, exported)
}

func signCommand(c *cli.Context) error {
	kp, err := keys.NewKeyPairFromHex(c.String("private-key"))
	if err != nil {
		return fmt.Errorf("invalid private key: %w", err)
	}
	msg, err := messageBytes(c)
	if err != nil {
		return err
	}

	sig, err := signer.Sign(msg, kp)
	if err != nil {
		return fmt.Errorf("failed to sign message: %w", err)
	}
	_, err = fmt.Fprintln(c.App.Writer, sig.String())
	return err
}

// verifyCommand exits with status 1 when the signature does not match
func verifyCommand(c *cli.Context) error {
	msg, err := messageBytes(c)
	if err != nil {
		return err
	}
	addr, err := util.ParseAddress(c.String("address"))
	if err != nil {
		return fmt.Errorf("invalid address: %w", err)
	}
	sig, err := hexutil.Decode(c.String("signature"))
	if err != nil {
		return cli.Exit("invalid", 1)
	}

	if !signer.Verify(msg, signer.Signature(sig), addr) {
		return cli.Exit("invalid", 1)
	}
	_, err = fmt.Fprintln(c.App.Writer, "valid")
	return err
}

// claimCommand signs a withdrawal and prints the claim with its calldata
func claimCommand(c *cli.Context) error {
	l, err := newLogger(c)
	if err != nil {
		return err
	}
	defer func() { _ = l.Sync() }()

	recipient, err := util.ParseAddress(c.String("recipient"))
	if err != nil {
		return fmt.Errorf("invalid recipient: %w", err)
	}

	gen := localKeyGenerator.NewLocalKeyGenerator(l)
	keyId := cliKeyId
	switch {
	case c.String("private-key") != "":
		if err := gen.LoadPrivateKeyFromHex(keyId, c.String("private-key"), "cli"); err != nil {
			return err
		}
	case c.String("secret") != "":
		key, err := gen.DeriveLinkKey(c.Context, "cli", c.String("secret"))
		if err != nil {
			return err
		}
		keyId = key.KeyId
	default:
		return fmt.Errorf("one of --private-key or --secret is required")
	}

	signed, err := gen.SignWithdrawal(c.Context, keyId, c.Uint64("index"), recipient)
	if err != nil {
		return err
	}
	key, err := gen.GetLinkKeyById(c.Context, keyId)
	if err != nil {
		return err
	}

	calldata, err := contracts.PackWithdrawDeposit(signed)
	if err != nil {
		return err
	}

	out := claimOutput{
		Claim:    signed,
		Signer:   key.Address.Hex(),
		ChainId:  c.Uint64("chain-id"),
		Calldata: hexutil.Encode(calldata),
	}
	contract, err := resolveContract(c)
	if err != nil {
		return err
	}
	if contract != (common.Address{}) {
		out.Contract = contract.Hex()
	}

	l.Sugar().Debugw("Signed withdrawal claim",
		"depositIndex", signed.DepositIndex,
		"recipient", recipient.Hex(),
		"signer", out.Signer,
		"contract", out.Contract)

	return printJSON(c, out)
}

// resolveContract returns --contract, or the registry entry for --chain-id
func resolveContract(c *cli.Context) (common.Address, error) {
	if s := c.String("contract"); s != "" {
		addr, err := util.ParseAddress(s)
		if err != nil {
			return common.Address{}, fmt.Errorf("invalid contract: %w", err)
		}
		return addr, nil
	}

	path := c.String("registry")
	chainId := c.Uint64("chain-id")
	if path == "" || chainId == 0 {
		return common.Address{}, nil
	}

	registry, err := contracts.LoadRegistry(path)
	if err != nil {
		return common.Address{}, err
	}
	version := c.String("contract-version")
	addr, ok := registry.ContractAddress(chainId, version)
	if !ok {
		return common.Address{}, fmt.Errorf("no %s deployment for %s in %s",
			version, chainLabel(chainId), path)
	}
	return addr, nil
}

func chainLabel(chainId uint64) string {
	if name, ok := config.ChainIdToName[config.ChainId(chainId)]; ok {
		return string(name)
	}
	return "chain " + strconv.FormatUint(chainId, 10)
}

func depositCalldataCommand(c *cli.Context) error {
	pubKey20, err := util.ParseAddress(c.String("pubkey20"))
	if err != nil {
		return fmt.Errorf("invalid pubkey20: %w", err)
	}
	contractType, err := contracts.ParseContractType(c.String("type"))
	if err != nil {
		return err
	}
	amount, err := util.ParseUint256(c.String("amount"))
	if err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}
	tokenId, err := util.ParseUint256(c.String("token-id"))
	if err != nil {
		return fmt.Errorf("invalid token id: %w", err)
	}

	deposit := &contracts.Deposit{
		PubKey20:     pubKey20,
		Amount:       amount,
		ContractType: contractType,
		TokenId:      tokenId,
	}
	if token := c.String("token"); token != "" {
		deposit.TokenAddress, err = util.ParseAddress(token)
		if err != nil {
			return fmt.Errorf("invalid token: %w", err)
		}
	}

	calldata, err := contracts.PackMakeDeposit(deposit)
	if err != nil {
		return err
	}
	return printJSON(c, depositOutput{
		Deposit:  deposit,
		Value:    deposit.TxValue().String(),
		Calldata: hexutil.Encode(calldata),
	})
}

func contractsCheckCommand(c *cli.Context) error {
	path := c.String("registry")
	if path == "" {
		return fmt.Errorf("--registry is required")
	}
	registry, err := contracts.LoadRegistry(path)
	if err != nil {
		return err
	}

	versions := util.SplitList(c.String("versions"))
	if len(versions) == 0 {
		versions = contracts.DefaultVersions
	}

	report := registry.MissingDeployments(versions)
	_, err = report.WriteTo(c.App.Writer)
	return err
}
