package main

import (
	"github.com/spf13/viper"

	"github.com/code-payments/code-instruction-codec/pkg/inspect"
)

// Config is loaded from the config file, with environment overrides.
type Config struct {
	LogLevel string `mapstructure:"log_level"`

	// Programs names the built-in program tables to register.
	Programs []string `mapstructure:"programs"`

	// IDLPaths lists Anchor IDL documents, JSON or YAML, to register after the
	// built-in programs.
	IDLPaths []string `mapstructure:"idl_paths"`

	Encoding string `mapstructure:"encoding"`
}

var defaultConfig = Config{
	LogLevel: "info",
	Programs: inspect.BuiltinNames(),
	Encoding: inspect.EncodingBase64,
}

func init() {
	_ = viper.BindEnv("log_level", "LOG_LEVEL")
	_ = viper.BindEnv("programs", "PROGRAMS")
	_ = viper.BindEnv("idl_paths", "IDL_PATHS")
	_ = viper.BindEnv("encoding", "ENCODING")
}
