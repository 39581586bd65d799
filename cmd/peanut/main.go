package main

import (
	"fmt"
	"log"
	"os"

	"github.com/peanutprotocol/peanut-go/pkg/config"
	"github.com/peanutprotocol/peanut-go/pkg/contracts"
	"github.com/peanutprotocol/peanut-go/pkg/logger"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "peanut",
		Usage: "Peanut link key toolkit",
		Description: `Creates link keys, signs and verifies messages with them, and builds the
calldata for depositing into and withdrawing from the Peanut escrow contracts.`,
		Version: "1.0.0",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Usage:   "Enable verbose logging",
				EnvVars: []string{config.EnvPeanutVerbose},
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "keys",
				Usage: "Link key management",
				Subcommands: []*cli.Command{
					{
						Name:  "new",
						Usage: "Create a link key, random or derived from a secret",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:  "secret",
								Usage: "Derive the key from this link secret instead of generating one",
							},
						},
						Action: keysNewCommand,
					},
				},
			},
			{
				Name:  "sign",
				Usage: "Sign a message with a link key",
				Flags: []cli.Flag{
					privateKeyFlag(true),
					&cli.StringFlag{
						Name:     "message",
						Usage:    "Message to sign",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "hex",
						Usage: "Treat the message as hex encoded bytes",
					},
				},
				Action: signCommand,
			},
			{
				Name:  "verify",
				Usage: "Verify a message signature against an address",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "message",
						Usage:    "Signed message",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "signature",
						Usage:    "65 byte signature (hex)",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "address",
						Usage:    "Expected signer address",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "hex",
						Usage: "Treat the message as hex encoded bytes",
					},
				},
				Action: verifyCommand,
			},
			{
				Name:  "claim",
				Usage: "Sign a withdrawal of a deposit to a recipient",
				Flags: []cli.Flag{
					privateKeyFlag(false),
					&cli.StringFlag{
						Name:  "secret",
						Usage: "Link secret, used when no private key is given",
					},
					&cli.StringFlag{
						Name:     "recipient",
						Usage:    "Address receiving the deposit",
						Required: true,
					},
					&cli.Uint64Flag{
						Name:     "index",
						Usage:    "Deposit index",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "contract",
						Usage: "Escrow contract address",
					},
					&cli.Uint64Flag{
						Name:  "chain-id",
						Usage: fmt.Sprintf("Chain ID: %s", config.GetSupportedChainIDsString()),
					},
					registryFlag(),
					&cli.StringFlag{
						Name:    "contract-version",
						Usage:   "Contract version to look up in the registry",
						Value:   config.DefaultContractVersion,
						EnvVars: []string{config.EnvPeanutContractVersion},
					},
				},
				Action: claimCommand,
			},
			{
				Name:  "calldata",
				Usage: "Build contract calldata",
				Subcommands: []*cli.Command{
					{
						Name:  "deposit",
						Usage: "Build makeDeposit calldata",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:     "pubkey20",
								Usage:    "Link key address",
								Required: true,
							},
							&cli.StringFlag{
								Name:  "type",
								Usage: "Asset type: eth, erc20, erc721 or erc1155",
								Value: contracts.ContractTypeETH.String(),
							},
							&cli.StringFlag{
								Name:  "amount",
								Usage: "Amount in base units",
							},
							&cli.StringFlag{
								Name:  "token",
								Usage: "Token contract address",
							},
							&cli.StringFlag{
								Name:  "token-id",
								Usage: "Token id for erc721 and erc1155",
							},
						},
						Action: depositCalldataCommand,
					},
				},
			},
			{
				Name:  "contracts",
				Usage: "Contract deployment registry",
				Subcommands: []*cli.Command{
					{
						Name:  "check",
						Usage: "Report chains missing a deployment of each version",
						Flags: []cli.Flag{
							registryFlag(),
							&cli.StringFlag{
								Name:  "versions",
								Usage: "Comma separated versions to check",
							},
						},
						Action: contractsCheckCommand,
					},
				},
			},
		},
	}
}

func privateKeyFlag(required bool) cli.Flag {
	return &cli.StringFlag{
		Name:     "private-key",
		Aliases:  []string{"pk"},
		Usage:    "Link private key (hex)",
		EnvVars:  []string{config.EnvPeanutPrivateKey},
		Required: required,
	}
}

func registryFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "registry",
		Usage:   "Path to contracts.json",
		EnvVars: []string{config.EnvPeanutRegistry},
	}
}

func newLogger(c *cli.Context) (*zap.Logger, error) {
	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: c.Bool("verbose")})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return l, nil
}
