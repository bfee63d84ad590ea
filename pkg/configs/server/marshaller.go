package server

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath is the environment variable naming the config file,
// used when no path is given explicitly.
const EnvConfigPath = "KICKPLATE_CONFIG"

// Load reads edagd config from a file.
//
// When filepath is empty, the path is read from KICKPLATE_CONFIG.
func Load(filepath string) (*ServerConfig, error) {
	if filepath == "" {
		filepath = os.Getenv(EnvConfigPath)
	}
	if filepath == "" {
		return nil, fmt.Errorf("no config file: pass -config or set %s", EnvConfigPath)
	}
	content, err := os.ReadFile(filepath)
	if err != nil {
		return nil, err
	}
	return Unmarshal(content)
}

// Unmarshal parses and seals config.
//
// Misconfigurations are returned as error.
func Unmarshal(conf []byte) (out *ServerConfig, err error) {
	var m *ServerConfigMarshall
	if err := yaml.Unmarshal(conf, &m); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("config is empty")
	}

	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("misconfiguration: %v", r)
		}
	}()
	return TrySeal[*ServerConfig](m), nil
}
