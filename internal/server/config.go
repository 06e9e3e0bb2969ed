package server

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// ServerConfig is the complete server configuration.
type ServerConfig struct {
	Server ServerSettings `hcl:"server,block"`
	Auth   *AuthSettings  `hcl:"auth,block"`
	Rooms  *RoomDefaults  `hcl:"rooms,block"`
}

// ServerSettings contains process-level configuration.
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
	LogFile  string `hcl:"log_file,optional"`
}

// AuthSettings configures token issuance.
type AuthSettings struct {
	Secret        string `hcl:"secret,optional"`
	TokenTTLHours int    `hcl:"token_ttl_hours,optional"`
}

// RoomDefaults are applied to rooms created without explicit settings.
type RoomDefaults struct {
	SmallBlind         int  `hcl:"small_blind,optional"`
	BigBlind           int  `hcl:"big_blind,optional"`
	MinBuyIn           int  `hcl:"min_buy_in,optional"`
	MaxBuyIn           int  `hcl:"max_buy_in,optional"`
	MaxPlayers         int  `hcl:"max_players,optional"`
	TurnTimeEnabled    bool `hcl:"turn_time_enabled,optional"`
	TurnTimeSeconds    int  `hcl:"turn_time_seconds,optional"`
	WarningTimeSeconds int  `hcl:"warning_time_seconds,optional"`
}

// DefaultServerConfig returns the built-in configuration.
func DefaultServerConfig() *ServerConfig {
	cfg := &ServerConfig{
		Server: ServerSettings{
			Address:  "localhost",
			Port:     8080,
			LogLevel: "info",
		},
	}
	cfg.applyDefaults()
	return cfg
}

// LoadServerConfig loads configuration from an HCL file, falling back to
// defaults when the file does not exist.
func LoadServerConfig(filename string) (*ServerConfig, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultServerConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config ServerConfig
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	config.applyDefaults()
	return &config, nil
}

func (c *ServerConfig) applyDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = "localhost"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}

	if c.Auth == nil {
		c.Auth = &AuthSettings{}
	}
	if c.Auth.TokenTTLHours == 0 {
		c.Auth.TokenTTLHours = 24
	}

	if c.Rooms == nil {
		c.Rooms = &RoomDefaults{}
	}
	if c.Rooms.SmallBlind == 0 {
		c.Rooms.SmallBlind = 5
	}
	if c.Rooms.BigBlind == 0 {
		c.Rooms.BigBlind = c.Rooms.SmallBlind * 2
	}
	if c.Rooms.MinBuyIn == 0 {
		c.Rooms.MinBuyIn = c.Rooms.BigBlind * 20
	}
	if c.Rooms.MaxBuyIn == 0 {
		c.Rooms.MaxBuyIn = c.Rooms.BigBlind * 100
	}
	if c.Rooms.MaxPlayers == 0 {
		c.Rooms.MaxPlayers = 9
	}
	if c.Rooms.TurnTimeSeconds == 0 {
		c.Rooms.TurnTimeSeconds = 30
	}
	if c.Rooms.WarningTimeSeconds == 0 {
		c.Rooms.WarningTimeSeconds = 10
	}
}

// Validate validates the server configuration.
func (c *ServerConfig) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Auth == nil || c.Auth.Secret == "" {
		return fmt.Errorf("auth secret must be configured")
	}
	if c.Rooms.SmallBlind <= 0 {
		return fmt.Errorf("small blind must be positive")
	}
	if c.Rooms.BigBlind <= c.Rooms.SmallBlind {
		return fmt.Errorf("big blind must be greater than small blind")
	}
	if c.Rooms.MinBuyIn >= c.Rooms.MaxBuyIn {
		return fmt.Errorf("buy-in minimum must be less than maximum")
	}
	if c.Rooms.MaxPlayers < 2 || c.Rooms.MaxPlayers > 10 {
		return fmt.Errorf("max players must be between 2 and 10")
	}
	return nil
}

// ListenAddress returns the full listen address.
func (c *ServerConfig) ListenAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}
