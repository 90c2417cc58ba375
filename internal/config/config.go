package config

import (
	"github.com/cryptodevs/whitelist-dapp/internal/log"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"strings"
	"time"
)

// ContractAddress is the whitelist contract baked in at build time:
//
//	go build -ldflags "-X github.com/cryptodevs/whitelist-dapp/internal/config.ContractAddress=0x..."
var ContractAddress = ""

type Config struct {
	Env         string
	Debug       bool
	LogPath     string
	Port        string
	AutoConnect bool

	Ethereum  EthereumConfig
	Whitelist WhitelistConfig
	Wallet    WalletConfig
	Session   SessionConfig
}

type EthereumConfig struct {
	Url      string
	Timeout  int
	RetryMax int
	Debug    bool
}

type WhitelistConfig struct {
	ContractAddress string
	ChainId         uint64
	JoinTimeout     int
}

type WalletConfig struct {
	PrivateKey string
	Keystore   string
	Account    string
	Passphrase string
}

type SessionConfig struct {
	Ttl int
}

func init() {
	viper.AutomaticEnv()
}

func Init(app string) {
	err := godotenv.Load(".env")

	initLogger(app)

	if err != nil {
		zap.L().With(zap.Error(err)).Debug("No .env file loaded")
	}
}

func initLogger(app string) {
	cfg := Get()
	log.NewLogger(app, cfg.LogPath, cfg.Debug)
}

func Get() *Config {
	return &Config{
		Env:         getString("ENV", ""),
		Debug:       getBool("DEBUG", false),
		LogPath:     getString("LOG_PATH", ""),
		Port:        getString("PORT", "8080"),
		AutoConnect: getBool("AUTO_CONNECT", true),
		Ethereum: EthereumConfig{
			Url:      getString("ETHEREUM_URL", ""),
			Timeout:  getInt("ETHEREUM_TIMEOUT", 30),
			RetryMax: getInt("ETHEREUM_RETRY_MAX", 3),
			Debug:    getBool("ETHEREUM_DEBUG", false),
		},
		Whitelist: WhitelistConfig{
			ContractAddress: getString("WHITELIST_CONTRACT_ADDRESS", ContractAddress),
			ChainId:         getUint64("WHITELIST_CHAIN_ID", 5),
			JoinTimeout:     getInt("WHITELIST_JOIN_TIMEOUT", 300),
		},
		Wallet: WalletConfig{
			PrivateKey: getString("WALLET_PRIVATE_KEY", ""),
			Keystore:   getString("WALLET_KEYSTORE", ""),
			Account:    getString("WALLET_ACCOUNT", ""),
			Passphrase: getString("WALLET_PASSPHRASE", ""),
		},
		Session: SessionConfig{
			Ttl: getInt("SESSION_TTL", 60),
		},
	}
}

func (c EthereumConfig) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

func (c WhitelistConfig) JoinTimeoutDuration() time.Duration {
	return time.Duration(c.JoinTimeout) * time.Second
}

func (c SessionConfig) TtlDuration() time.Duration {
	return time.Duration(c.Ttl) * time.Minute
}

func getString(key string, defaultValue string) string {
	viper.SetDefault(key, defaultValue)

	return strings.TrimSpace(viper.GetString(key))
}

func getInt(key string, defaultValue int) int {
	viper.SetDefault(key, defaultValue)

	return viper.GetInt(key)
}

func getUint64(key string, defaultValue uint64) uint64 {
	viper.SetDefault(key, defaultValue)

	return viper.GetUint64(key)
}

func getBool(key string, defaultValue bool) bool {
	viper.SetDefault(key, defaultValue)

	return viper.GetBool(key)
}
