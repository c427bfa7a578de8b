package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// E2E_BASE_URL is the HTTP address of a running server, the suite is skipped when empty
	BaseURL  string `envconfig:"E2E_BASE_URL"`
	GRPCAddr string `envconfig:"E2E_GRPC_ADDR" default:"localhost:9090"`
	// JWT_SECRET and JWT_ISSUER must match the server's to mint test bearers
	JWTSecret string `envconfig:"JWT_SECRET"`
	JWTIssuer string `envconfig:"JWT_ISSUER" default:"sanctuary"`
	// E2E_DEBUG_JSON allows dumping full gRPC request/response bodies as JSON
	DebugJSON bool `envconfig:"E2E_DEBUG_JSON" default:"false"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
