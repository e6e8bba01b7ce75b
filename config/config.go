// Package config loads the YAML configuration files of the gatherd
// commands.
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/tia-gather/gatherd/onchaindb"
)

// Celestia holds the chain endpoints handed to the frontend and used by
// the REST proxy.
type Celestia struct {
	ChainID       string `yaml:"chain_id"`
	RPC           string `yaml:"rpc"`
	REST          string `yaml:"rest"`
	BrokerAddress string `yaml:"broker_address"`
}

// Pricing holds the fee hints surfaced through the public config
// endpoint. The authoritative per-write price always comes from the
// store's pricing oracle.
type Pricing struct {
	MinContributionUtia int64 `yaml:"min_contribution_utia"`
	CreationFeeUtia     int64 `yaml:"creation_fee_utia"`
}

// Config is the root config for the API service.
type Config struct {
	Port      int              `yaml:"port"`
	AppName   string           `yaml:"app_name"`
	OnChainDB onchaindb.Config `yaml:"onchaindb"`
	Celestia  Celestia         `yaml:"celestia"`
	Pricing   Pricing          `yaml:"pricing"`
}

// Load reads the YAML file at path into cfg.
func Load(path string, cfg interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "fail to read config file")
	}

	return yaml.Unmarshal(data, cfg)
}
