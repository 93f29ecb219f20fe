// Package config loads the protocol's tunable parameters via spf13/viper,
// the way a cosmos-sdk app binds app.toml and flags into a typed struct.
package config

import (
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/spf13/viper"
)

// Params holds every owner-tunable bound across the four keepers.
// Defaults are conservative and explicit rather than zero-valued.
type Params struct {
	// DelegationManager
	MinWithdrawalDelayBlocks uint64 `mapstructure:"min_withdrawal_delay_blocks"`
	MaxWithdrawalDelayBlocks uint64 `mapstructure:"max_withdrawal_delay_blocks"`
	MaxStakerOptOutWindowBlocks uint64 `mapstructure:"max_staker_opt_out_window_blocks"`
	MaxStakerStrategyListLength int `mapstructure:"max_staker_strategy_list_length"`

	// SlashManager
	MinimalSlashSignature int `mapstructure:"minimal_slash_signature"`
	MaxTimeInFuture time.Duration `mapstructure:"max_time_in_future"`

	// RewardsCoordinator
	MaxRewardsAmount string `mapstructure:"max_rewards_amount"` // decimal string; parsed into math.Uint
	MaxRewardsDuration time.Duration `mapstructure:"max_rewards_duration"`
	CalculationIntervalSeconds int64 `mapstructure:"calculation_interval_seconds"`
	GenesisRewardsTimestamp int64 `mapstructure:"genesis_rewards_timestamp"`
	MaxRetroactiveLength time.Duration `mapstructure:"max_retroactive_length"`
	MaxFutureLength time.Duration `mapstructure:"max_future_length"`
	ActivationDelay time.Duration `mapstructure:"activation_delay"`
	GlobalCommissionBips uint32 `mapstructure:"global_commission_bips"`

	// SignatureCacheSize bounds SlashManager's verified-signature LRU
	// (crypto.NewSignatureVerifier).
	SignatureCacheSize int `mapstructure:"signature_cache_size"`
}

// MaxRewardsAmountUint parses MaxRewardsAmount into a math.Uint. Must stay
// below 2^128 for BigEndianUint128 to encode it without truncation.
func (p Params) MaxRewardsAmountUint() (sdkmath.Uint, error) {
	return sdkmath.ParseUint(p.MaxRewardsAmount)
}

// Defaults returns the engine's out-of-the-box parameters. Roughly 180
// days in blocks at an assumed ~6s block time.
func Defaults() Params {
	const blocksPerDay = 24 * 60 * 60 / 6
	return Params{
		MinWithdrawalDelayBlocks: 7 * blocksPerDay,
		MaxWithdrawalDelayBlocks: 30 * blocksPerDay,
		MaxStakerOptOutWindowBlocks: 180 * blocksPerDay,
		MaxStakerStrategyListLength: 32,

		MinimalSlashSignature: 1,
		MaxTimeInFuture: 7 * 24 * time.Hour,

		MaxRewardsAmount: "100000000000000000000000000", // 1e26
		MaxRewardsDuration: 30 * 24 * time.Hour,
		CalculationIntervalSeconds: 86400,
		GenesisRewardsTimestamp: 0,
		MaxRetroactiveLength: 90 * 24 * time.Hour,
		MaxFutureLength: 30 * 24 * time.Hour,
		ActivationDelay: 24 * time.Hour,
		GlobalCommissionBips: 1000,
		SignatureCacheSize: 4096,
	}
}

// Load reads parameters from the given viper instance, falling back to
// Defaults for anything unset.
func Load(v *viper.Viper) (Params, error) {
	p := Defaults()
	v.SetDefault("params", p)
	if err := v.UnmarshalKey("params", &p); err != nil {
		return Params{}, err
	}
	return p, nil
}

