package main

import (
	"encoding/hex"
	"fmt"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/spf13/cobra"

	"github.com/bvs-restaking/engine/app"
	"github.com/bvs-restaking/engine/config"
	"github.com/bvs-restaking/engine/testutil"
	restaking "github.com/bvs-restaking/engine/types"
	delegationtypes "github.com/bvs-restaking/engine/x/delegationmanager/types"
)

// newDemoApp() wires a fresh App against empty in-memory doubles. Each
// invocation of restakingd is a self-contained scenario: there is no
// state carried between commands, matching its role as a harness rather
// than a long-running daemon.
func newDemoApp() (*app.App, *testutil.FakeVaultRegistry, *testutil.FakeTokenRegistry) {
	vaults := testutil.NewFakeVaultRegistry()
	tokens := testutil.NewFakeTokenRegistry()
	rewardsTokens := testutil.NewFakeRewardsTokenRegistry(tokens)
	directory := testutil.NewFakeDirectory()

	owner := restaking.Address("owner")
	a := app.New(config.Defaults(), app.Deps{
		Vaults: vaults,
		Tokens: tokens,
		RewardsTokens: rewardsTokens,
		Directory: directory,
	}, owner, owner)
	return a, vaults, tokens
}

func newDepositCmd() *cobra.Command {
	var staker, strategy, token, amount string
	cmd := &cobra.Command{
		Use: "deposit",
		Short: "Deposit amount of token into strategy on behalf of staker",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, vaults, tokens := newDemoApp()
			ctx := testutil.NewContext(1, time.Now())

			stakerAddr, strategyAddr, tokenAddr := restaking.Address(staker), restaking.Address(strategy), restaking.Address(token)
			amt, err := sdkmath.ParseUint(amount)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", amount, err)
			}

			tokens.Tokens[tokenAddr] = testutil.NewFakeToken(18, map[restaking.Address]sdkmath.Uint{
				stakerAddr: amt,
			})
			vaults.Vaults[strategyAddr] = testutil.NewFakeVault(strategyAddr, tokenAddr, tokens)
			if err := a.StrategyManager.Whitelist(ctx, "owner", []restaking.Address{strategyAddr}); err != nil {
				return err
			}

			shares, err := a.StrategyManager.Deposit(ctx, stakerAddr, strategyAddr, tokenAddr, amt)
			if err != nil {
				return err
			}
			fmt.Printf("minted shares: %s\n", shares)
			return nil
		},
	}
	cmd.Flags().StringVar(&staker, "staker", "", "staker address")
	cmd.Flags().StringVar(&strategy, "strategy", "", "strategy address")
	cmd.Flags().StringVar(&token, "token", "", "underlying token address")
	cmd.Flags().StringVar(&amount, "amount", "", "deposit amount")
	return cmd
}

func newDelegateCmd() *cobra.Command {
	var staker, operator string
	cmd := &cobra.Command{
		Use: "delegate",
		Short: "Register operator (if needed) and delegate staker to it",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, _ := newDemoApp()
			ctx := testutil.NewContext(1, time.Now())

			operatorAddr, stakerAddr := restaking.Address(operator), restaking.Address(staker)
			if isOp, err := a.DelegationManager.IsOperator(ctx, operatorAddr); err != nil {
				return err
			} else if !isOp {
				if err := a.DelegationManager.RegisterAsOperator(ctx, operatorAddr, delegationtypes.OperatorDetails{
					StakerOptOutWindowBlocks: 0,
				}); err != nil {
					return err
				}
			}
			if err := a.DelegationManager.DelegateTo(ctx, stakerAddr, operatorAddr); err != nil {
				return err
			}
			fmt.Printf("%s delegated to %s\n", stakerAddr, operatorAddr)
			return nil
		},
	}
	cmd.Flags().StringVar(&staker, "staker", "", "staker address")
	cmd.Flags().StringVar(&operator, "operator", "", "operator address")
	return cmd
}

func newQueueWithdrawalCmd() *cobra.Command {
	var staker, strategy, shares string
	cmd := &cobra.Command{
		Use: "queue-withdrawal",
		Short: "Queue a withdrawal of shares from strategy for staker",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, _ := newDemoApp()
			ctx := testutil.NewContext(1, time.Now())

			amt, err := sdkmath.ParseUint(shares)
			if err != nil {
				return fmt.Errorf("invalid shares %q: %w", shares, err)
			}
			root, err := a.DelegationManager.QueueWithdrawals(ctx, restaking.Address(staker), restaking.Address(staker),
				[]restaking.Address{restaking.Address(strategy)}, []sdkmath.Uint{amt})
			if err != nil {
				return err
			}
			fmt.Printf("withdrawal_root: %s\n", hex.EncodeToString(root))
			return nil
		},
	}
	cmd.Flags().StringVar(&staker, "staker", "", "staker address")
	cmd.Flags().StringVar(&strategy, "strategy", "", "strategy address")
	cmd.Flags().StringVar(&shares, "shares", "", "shares to withdraw")
	return cmd
}

func newSlashCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use: "slash",
		Short: "Submit or execute a slash request",
	}
	cmd.AddCommand(newSlashSubmitCmd(), newSlashExecuteCmd())
	return cmd
}

func newSlashSubmitCmd() *cobra.Command {
	var operator, slasher, share string
	cmd := &cobra.Command{
		Use: "submit",
		Short: "Submit a pending slash request against operator",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, _ := newDemoApp()
			ctx := testutil.NewContext(1, time.Now())

			operatorAddr, slasherAddr := restaking.Address(operator), restaking.Address(slasher)
			if err := a.SlashManager.SetSlasher(ctx, restaking.Address("owner"), operatorAddr, slasherAddr, true); err != nil {
				return err
			}
			amt, err := sdkmath.ParseUint(share)
			if err != nil {
				return fmt.Errorf("invalid share %q: %w", share, err)
			}
			hash, err := a.SlashManager.SubmitSlashRequest(ctx, slasherAddr, operatorAddr,
				amt, nil, 0, time.Now().Unix()+3600)
			if err != nil {
				return err
			}
			fmt.Printf("slash_hash: %s\n", hex.EncodeToString(hash))
			return nil
		},
	}
	cmd.Flags().StringVar(&operator, "operator", "", "operator address")
	cmd.Flags().StringVar(&slasher, "slasher", "", "submitting slasher address")
	cmd.Flags().StringVar(&share, "share", "", "total slash share (absolute units)")
	return cmd
}

func newSlashExecuteCmd() *cobra.Command {
	var slashHash string
	cmd := &cobra.Command{
		Use: "execute",
		Short: "Execute a pending slash request given validator signatures",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, _ := newDemoApp()
			ctx := testutil.NewContext(1, time.Now())
			hash, err := hex.DecodeString(slashHash)
			if err != nil {
				return err
			}
			return a.SlashManager.ExecuteSlashRequest(ctx, hash, nil, nil)
		},
	}
	cmd.Flags().StringVar(&slashHash, "slash-hash", "", "hex-encoded slash_hash")
	return cmd
}

func newRewardsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use: "rewards",
		Short: "Submit a distribution root or process a claim",
	}
	cmd.AddCommand(newRewardsSubmitRootCmd(), newRewardsClaimCmd())
	return cmd
}

func newRewardsSubmitRootCmd() *cobra.Command {
	var root string
	cmd := &cobra.Command{
		Use: "submit-root",
		Short: "Post a new distribution root",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, _ := newDemoApp()
			ctx := testutil.NewContext(1, time.Now())
			rootBytes, err := hex.DecodeString(root)
			if err != nil {
				return err
			}
			index, err := a.RewardsCoordinator.SubmitRoot(ctx, "owner", rootBytes)
			if err != nil {
				return err
			}
			fmt.Printf("root_index: %d\n", index)
			return nil
		},
	}
	cmd.Flags().StringVar(&root, "root", "", "hex-encoded 32-byte root")
	return cmd
}

func newRewardsClaimCmd() *cobra.Command {
	var earner string
	var rootIndex uint64
	cmd := &cobra.Command{
		Use: "claim",
		Short: "Process a claim against an activated distribution root",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, _ := newDemoApp()
			ctx := testutil.NewContext(1, time.Now())
			earnerAddr := restaking.Address(earner)
			return a.RewardsCoordinator.ProcessClaim(ctx, earnerAddr, earnerAddr, earnerAddr, rootIndex, nil)
		},
	}
	cmd.Flags().StringVar(&earner, "earner", "", "earner address")
	cmd.Flags().Uint64Var(&rootIndex, "root-index", 0, "distribution root index")
	return cmd
}

