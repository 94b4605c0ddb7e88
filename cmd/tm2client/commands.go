package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"

	"github.com/gnolang/tm2-go-client/pkg/provider"
	"github.com/gnolang/tm2-go-client/pkg/sign"
	"github.com/gnolang/tm2-go-client/pkg/tx"
	"github.com/gnolang/tm2-go-client/pkg/wallet"
)

func statusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show node identity and sync state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}
			status, err := p.GetStatus(cmd.Context())
			if err != nil {
				return err
			}

			return a.out.print(status,
				field{"Moniker", status.NodeInfo.Moniker},
				field{"Network", status.NodeInfo.Network},
				field{"Version", status.NodeInfo.Version},
				field{"Latest height", status.SyncInfo.LatestBlockHeight},
				field{"Latest time", status.SyncInfo.LatestBlockTime},
				field{"Catching up", yesNo(status.SyncInfo.CatchingUp)},
			)
		},
	}
}

func blockCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "block [height]",
		Short: "Show a block, the latest one when no height is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var height int64
			if len(args) == 1 {
				h, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil || h <= 0 {
					return fmt.Errorf("invalid height %q", args[0])
				}
				height = h
			}

			p, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}
			block, err := p.GetBlock(cmd.Context(), height)
			if err != nil {
				return err
			}

			header := block.Block.Header
			return a.out.print(block,
				field{"Height", header.Height},
				field{"Chain", header.ChainID},
				field{"Time", header.Time},
				field{"Hash", deref(block.BlockMeta.BlockID.Hash)},
				field{"Transactions", len(block.Block.Data.Txs)},
				field{"Proposer", header.ProposerAddress},
			)
		},
	}
}

func balanceCmd(a *app) *cobra.Command {
	var (
		denom  string
		height int64
	)

	cmd := &cobra.Command{
		Use:   "balance <address>",
		Short: "Show the balance of an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("denom") {
				denom = a.cfg.Denom
			}

			p, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}
			balance, err := p.GetBalance(cmd.Context(), args[0], denom, height)
			if err != nil {
				return err
			}

			result := map[string]any{"address": args[0], "denom": denom, "amount": balance}
			return a.out.print(result,
				field{"Address", args[0]},
				field{"Balance", fmt.Sprintf("%d%s", balance, denom)},
			)
		},
	}

	cmd.Flags().StringVar(&denom, "denom", provider.DefaultDenomination, "denomination (overrides TM2_DENOM)")
	cmd.Flags().Int64Var(&height, "height", 0, "query height, 0 for latest")

	return cmd
}

func accountCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "account <address>",
		Short: "Show account number, sequence and coins",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}
			account, err := p.GetAccount(cmd.Context(), args[0], 0)
			if err != nil {
				return err
			}

			base := account.BaseAccount
			return a.out.print(account,
				field{"Address", base.Address},
				field{"Account number", base.AccountNumber},
				field{"Sequence", base.Sequence},
				field{"Coins", base.Coins},
			)
		},
	}
}

func broadcastCmd(a *app) *cobra.Command {
	var commit bool

	cmd := &cobra.Command{
		Use:   "broadcast <base64-tx>",
		Short: "Submit a signed transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := provider.BroadcastSync
			if commit {
				mode = provider.BroadcastCommit
			}

			p, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}
			hash, err := p.SendTransaction(cmd.Context(), args[0], mode)
			if err != nil {
				return err
			}

			result := map[string]any{"hash": hash, "mode": string(mode)}
			return a.out.print(result,
				field{"Hash", hash},
				field{"Mode", string(mode)},
			)
		},
	}

	cmd.Flags().BoolVar(&commit, "commit", false, "wait for the transaction to be committed")

	return cmd
}

func waitTxCmd(a *app) *cobra.Command {
	var (
		fromHeight int64
		timeout    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "wait-tx <base64-hash>",
		Short: "Poll new blocks until a transaction is included",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("timeout") {
				timeout = a.cfg.WaitTimeout
			}

			p, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}

			opts := []provider.WaitOption{provider.WithTimeout(timeout)}
			if fromHeight > 0 {
				opts = append(opts, provider.WithFromHeight(fromHeight))
			}
			found, err := p.WaitForTransaction(cmd.Context(), args[0], opts...)
			if err != nil {
				return err
			}

			return a.out.print(found, txFields(found)...)
		},
	}

	cmd.Flags().Int64Var(&fromHeight, "from-height", 0, "first height to scan, latest when 0")
	cmd.Flags().DurationVar(&timeout, "timeout", provider.DefaultWaitTimeout, "give up after this long (overrides TM2_WAIT_TIMEOUT)")

	return cmd
}

func addressCmd(a *app) *cobra.Command {
	var generate bool

	cmd := &cobra.Command{
		Use:   "address",
		Short: "Derive the account address from TM2_MNEMONIC, or generate a new account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				w        *wallet.Wallet
				mnemonic string
				err      error
			)
			switch {
			case generate:
				w, mnemonic, err = wallet.CreateRandom(a.cfg.AddressPrefix)
			case a.cfg.Mnemonic != "":
				w, err = wallet.FromMnemonic(a.cfg.Mnemonic, a.cfg.AccountIndex, a.cfg.AddressPrefix)
			default:
				return fmt.Errorf("TM2_MNEMONIC is not set; pass --generate to create a new account")
			}
			if err != nil {
				return err
			}

			result := map[string]any{
				"address":    w.Address(),
				"public_key": hexutil.Encode(w.Signer().PublicKey().Bytes()),
			}
			fields := []field{
				{"Address", w.Address()},
				{"Public key", result["public_key"]},
			}
			if mnemonic != "" {
				result["mnemonic"] = mnemonic
				fields = append(fields, field{"Mnemonic", mnemonic})
			}
			return a.out.print(result, fields...)
		},
	}

	cmd.Flags().BoolVar(&generate, "generate", false, "generate a new mnemonic")

	return cmd
}

func txFields(t *tx.Tx) []field {
	fields := []field{
		{"Messages", len(t.Messages)},
		{"Signatures", len(t.Signatures)},
		{"Memo", t.Memo},
	}
	if t.Fee != nil {
		fields = append(fields,
			field{"Gas wanted", t.Fee.GasWanted},
			field{"Gas fee", t.Fee.GasFee},
		)
	}
	for i, m := range t.Messages {
		fields = append(fields, field{fmt.Sprintf("Message %d", i), m.TypeURL})
	}
	if len(t.Signatures) > 0 && t.Signatures[0].PubKey != nil {
		if key, err := tx.DecodePubKeySecp256k1(t.Signatures[0].PubKey.Value); err == nil {
			if pub, err := sign.NewSecp256k1PublicKey(key, sign.DefaultAddressPrefix); err == nil {
				fields = append(fields, field{"Signer", pub.Address().String()})
			}
		}
	}
	return fields
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
