package config

import (
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config is centralized process configuration, populated from environment
// variables via caarlos0/env. Keep infra values here and pass typed config
// into builders.
type Config struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"admesh"`
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	PostgresDSN string `env:"POSTGRES_DSN"`

	Log      Logger   `envPrefix:"LOG_"`
	Protocol Protocol `envPrefix:"PROTOCOL_"`
	Accounts Accounts `envPrefix:"ACCOUNTS_"`
}

// Logger configures the structured logger.
type Logger struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"text"`
}

// Protocol holds the economic parameters of the deployed protocol. All
// planck amounts are integers; bps values are out of 10000.
type Protocol struct {
	MinBidCpmPlanck       uint64 `env:"MIN_BID_CPM_PLANCK" envDefault:"1000000"`
	PendingExpiryBlocks   uint64 `env:"PENDING_EXPIRY_BLOCKS" envDefault:"100800"`
	BaseLockupBlocks      uint64 `env:"BASE_LOCKUP_BLOCKS" envDefault:"7200"`
	MaxLockupBlocks       uint64 `env:"MAX_LOCKUP_BLOCKS" envDefault:"403200"`
	ActivationThreshold   uint64 `env:"ACTIVATION_THRESHOLD" envDefault:"1000000000000"`
	TerminationThreshold  uint64 `env:"TERMINATION_THRESHOLD" envDefault:"2000000000000"`
	MinReviewerStake      uint64 `env:"MIN_REVIEWER_STAKE" envDefault:"100000000000"`
	MaxClaimsPerBatch     int    `env:"MAX_CLAIMS_PER_BATCH" envDefault:"50"`
	RateUpdateDelayBlocks uint64 `env:"RATE_UPDATE_DELAY_BLOCKS" envDefault:"14400"`
}

// Accounts names the privileged collaborator addresses every service
// compares callers against. The governance and settlement accounts double
// as custody: terminated escrow is forwarded to governance for slashing,
// and deducted budget is forwarded to settlement until withdrawal.
type Accounts struct {
	Governance       string `env:"GOVERNANCE" envDefault:"governance"`
	Settlement       string `env:"SETTLEMENT" envDefault:"settlement"`
	RewardsOperator  string `env:"REWARDS_OPERATOR" envDefault:"rewards-operator"`
	ProtocolTreasury string `env:"PROTOCOL_TREASURY" envDefault:"protocol-treasury"`
	Escrow           string `env:"ESCROW" envDefault:"campaign-escrow"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// SlogLevel converts the textual level into a slog.Level. Unknown levels
// default to slog.LevelInfo.
func (c Logger) SlogLevel() slog.Level {
	switch strings.ToLower(c.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error", "err":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
