// Command ixinspect decodes raw instruction or account data against the
// built-in program tables and any configured Anchor IDLs, printing the result
// as JSON.
//
//	ixinspect -program timelock -accounts <addr>:w,<addr>:s <data>
//	ixinspect -account -program splitter <data>
//	echo <data> | ixinspect -encoding hex -program timelock
package main

import (
	"crypto/ed25519"
	"encoding/json"
	"flag"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/code-payments/code-instruction-codec/pkg/inspect"
	"github.com/code-payments/code-instruction-codec/pkg/solana"
	"github.com/code-payments/code-instruction-codec/pkg/solana/program"
)

var (
	configPath  = flag.String("config", "config.yaml", "configuration file path")
	programFlag = flag.String("program", "", "program name or base58 address")
	accountMode = flag.Bool("account", false, "decode account data instead of instruction data")
	accountList = flag.String("accounts", "", "comma separated instruction accounts, each optionally suffixed with :s and :w")
	encoding    = flag.String("encoding", "", "input encoding: base64, base58 or hex")
)

func main() {
	flag.Parse()

	logger := logrus.StandardLogger().WithField("type", "cmd/ixinspect")

	config, err := loadConfig()
	if err != nil {
		logger.WithError(err).Error("failed to load config")
		os.Exit(1)
	}
	configureLogger(config)

	if len(*encoding) > 0 {
		config.Encoding = *encoding
	}

	registry, err := inspect.NewRegistry(config.Programs, config.IDLPaths)
	if err != nil {
		logger.WithError(err).Error("failed to build program registry")
		os.Exit(1)
	}

	input, err := readInput()
	if err != nil {
		logger.WithError(err).Error("failed to read input")
		os.Exit(1)
	}

	data, err := inspect.DecodeInput(input, config.Encoding)
	if err != nil {
		logger.WithError(err).Error("failed to decode input")
		os.Exit(1)
	}

	var rendered map[string]any
	if *accountMode {
		rendered, err = decodeAccount(registry, data)
	} else {
		rendered, err = decodeInstruction(registry, data)
	}
	if err != nil {
		logger.WithError(err).Error("failed to decode")
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rendered); err != nil {
		logger.WithError(err).Error("failed to write output")
		os.Exit(1)
	}
}

func loadConfig() (Config, error) {
	// An explicitly set config file that does not exist is not reported as
	// viper.ConfigFileNotFoundError, so it is only set when present.
	if _, err := os.Stat(*configPath); err == nil {
		viper.SetConfigFile(*configPath)
	} else if !os.IsNotExist(err) {
		return Config{}, errors.Wrap(err, "failed to check if config exists")
	}

	err := viper.ReadInConfig()
	_, isConfigNotFound := err.(viper.ConfigFileNotFoundError)
	if err != nil && !isConfigNotFound {
		return Config{}, err
	}

	config := defaultConfig
	if err := viper.Unmarshal(&config); err != nil {
		return Config{}, errors.Wrap(err, "failed to unmarshal config")
	}
	return config, nil
}

func configureLogger(config Config) {
	logrus.SetFormatter(&logrus.JSONFormatter{})

	level, err := logrus.ParseLevel(strings.ToLower(config.LogLevel))
	if err != nil {
		logrus.StandardLogger().WithField("log_level", config.LogLevel).Warn("unknown log level, ignoring")
	} else {
		logrus.SetLevel(level)
	}

	logrus.SetOutput(os.Stderr)
}

func readInput() (string, error) {
	if flag.NArg() > 0 {
		return flag.Arg(0), nil
	}

	b, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func lookupProgram(registry *program.Registry, nameOrAddress string) (*program.Program, error) {
	if p, err := registry.Program(nameOrAddress); err == nil {
		return p, nil
	}

	address, err := solana.PublicKeyFromBase58(nameOrAddress)
	if err != nil {
		return nil, errors.Errorf("%q is neither a registered program nor an address", nameOrAddress)
	}
	return registry.ProgramByAddress(address)
}

func decodeInstruction(registry *program.Registry, data []byte) (map[string]any, error) {
	if len(*programFlag) == 0 {
		return nil, errors.New("-program is required to decode instructions")
	}

	p, err := lookupProgram(registry, *programFlag)
	if err != nil {
		return nil, err
	}

	accounts, err := inspect.ParseAccounts(*accountList)
	if err != nil {
		return nil, err
	}

	decoded, err := registry.DecodeInstruction(solana.NewInstruction(p.Address(), data, accounts...))
	if err != nil {
		return nil, err
	}

	def, err := registry.Lookup(decoded.Program, decoded.Name)
	if err != nil {
		return nil, err
	}
	return inspect.Instruction(decoded, def), nil
}

func decodeAccount(registry *program.Registry, data []byte) (map[string]any, error) {
	var owners []ed25519.PublicKey
	if len(*programFlag) > 0 {
		p, err := lookupProgram(registry, *programFlag)
		if err != nil {
			return nil, err
		}
		owners = append(owners, p.Address())
	} else {
		for _, name := range registry.Names() {
			p, err := registry.Program(name)
			if err != nil {
				return nil, err
			}
			owners = append(owners, p.Address())
		}
	}

	var lastErr error
	for _, owner := range owners {
		decoded, err := registry.DecodeAccount(owner, data)
		if err == nil {
			return inspect.Account(decoded), nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = errors.New("no programs registered")
	}
	return nil, lastErr
}
