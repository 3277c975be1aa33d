// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"
)

// Trading modes.
const (
	// ModeSingle snipes one token and exits; a creation that fails the
	// filters also ends the run.
	ModeSingle = "single"
	// ModeContinuous keeps sniping every matching creation until stopped.
	ModeContinuous = "continuous"
)

type Config struct {
	RPCEndpoint string `mapstructure:"rpc_endpoint"`
	WSSEndpoint string `mapstructure:"wss_endpoint"`
	PrivateKey  string `mapstructure:"private_key"`

	BuyAmountSOL float64 `mapstructure:"buy_amount_sol"`
	BuySlippage  float64 `mapstructure:"buy_slippage"`
	SellSlippage float64 `mapstructure:"sell_slippage"`

	Mode           string `mapstructure:"mode"`
	SellAfterBuy   bool   `mapstructure:"sell_after_buy"`
	MatchString    string `mapstructure:"match_string"`
	CreatorAddress string `mapstructure:"creator_address"`

	TokenDecimals         int `mapstructure:"token_decimals"`
	StabilizationDelaySec int `mapstructure:"stabilization_delay_sec"`
	SellDelaySec          int `mapstructure:"sell_delay_sec"`

	Retries          int `mapstructure:"retries"`
	RetryBaseDelayMs int `mapstructure:"retry_base_delay_ms"`

	ConfirmTimeoutSec int `mapstructure:"confirm_timeout_sec"`

	// Protocol address overrides. Empty values fall back to the well-known
	// mainnet addresses.
	ProgramAddress    string `mapstructure:"program_address"`
	GlobalAddress     string `mapstructure:"global_address"`
	FeeRecipient      string `mapstructure:"fee_recipient"`
	EventAuthority    string `mapstructure:"event_authority"`
	LiquidityMigrator string `mapstructure:"liquidity_migrator"`

	BuyDiscriminator  string `mapstructure:"buy_discriminator"`
	SellDiscriminator string `mapstructure:"sell_discriminator"`

	TradeLogDir  string `mapstructure:"trade_log_dir"`
	LogFile      string `mapstructure:"log_file"`
	DebugLogging bool   `mapstructure:"debug_logging"`
}

const (
	DefaultBuyAmountSOL       = 0.1
	DefaultBuySlippage        = 0.2
	DefaultSellSlippage       = 0.2
	DefaultTokenDecimals      = 6
	DefaultStabilizationDelay = 15
	DefaultSellDelay          = 20
	DefaultRetries            = 5
	DefaultRetryBaseDelayMs   = 500
	DefaultConfirmTimeout     = 30
	DefaultTradeLogDir        = "trades"
)

// Load reads the config file at path, applies defaults and SNIPER_*
// environment overrides, and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	defaults := map[string]interface{}{
		"buy_amount_sol":          DefaultBuyAmountSOL,
		"buy_slippage":            DefaultBuySlippage,
		"sell_slippage":           DefaultSellSlippage,
		"mode":                    ModeSingle,
		"token_decimals":          DefaultTokenDecimals,
		"stabilization_delay_sec": DefaultStabilizationDelay,
		"sell_delay_sec":          DefaultSellDelay,
		"retries":                 DefaultRetries,
		"retry_base_delay_ms":     DefaultRetryBaseDelayMs,
		"confirm_timeout_sec":     DefaultConfirmTimeout,
		"trade_log_dir":           DefaultTradeLogDir,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix("SNIPER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, Validate(&cfg)
}

// Validate checks the loaded config for values the trading loop cannot run
// with.
func Validate(cfg *Config) error {
	if cfg.RPCEndpoint == "" {
		return errors.New("rpc_endpoint is required")
	}
	if err := validateURL(cfg.RPCEndpoint, "http", "https"); err != nil {
		return fmt.Errorf("invalid rpc_endpoint: %w", err)
	}
	if cfg.WSSEndpoint == "" {
		return errors.New("wss_endpoint is required")
	}
	if err := validateURL(cfg.WSSEndpoint, "ws", "wss"); err != nil {
		return fmt.Errorf("invalid wss_endpoint: %w", err)
	}
	if cfg.PrivateKey == "" {
		return errors.New("private_key is required")
	}

	if cfg.Mode != ModeSingle && cfg.Mode != ModeContinuous {
		return fmt.Errorf("invalid mode %q: must be %q or %q", cfg.Mode, ModeSingle, ModeContinuous)
	}

	if cfg.BuyAmountSOL <= 0 {
		return errors.New("buy_amount_sol must be positive")
	}
	if cfg.BuySlippage < 0 || cfg.BuySlippage >= 1 {
		return errors.New("buy_slippage must be in [0, 1)")
	}
	if cfg.SellSlippage < 0 || cfg.SellSlippage >= 1 {
		return errors.New("sell_slippage must be in [0, 1)")
	}

	if cfg.TokenDecimals < 0 || cfg.TokenDecimals > 18 {
		return errors.New("token_decimals must be in [0, 18]")
	}
	if cfg.StabilizationDelaySec < 0 {
		return errors.New("stabilization_delay_sec must not be negative")
	}
	if cfg.SellDelaySec < 0 {
		return errors.New("sell_delay_sec must not be negative")
	}

	if cfg.Retries < 1 {
		return errors.New("retries must be at least 1")
	}
	if cfg.RetryBaseDelayMs <= 0 {
		return errors.New("retry_base_delay_ms must be positive")
	}
	if cfg.ConfirmTimeoutSec <= 0 {
		return errors.New("confirm_timeout_sec must be positive")
	}

	return nil
}

func validateURL(rawURL string, schemes ...string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	for _, s := range schemes {
		if parsed.Scheme == s {
			return nil
		}
	}
	return fmt.Errorf("URL scheme must be one of %s", strings.Join(schemes, ", "))
}
