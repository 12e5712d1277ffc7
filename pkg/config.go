package regnode

import (
	"github.com/jinzhu/configor"
)

type Config struct {
	Node struct {
		// key for which chain parameters to use ("main", "test", "regtest")
		Network string `default:"regtest" required:"true" env:"network"`
	}

	// JSON-RPC server for node control (generate, sendtoaddress, ...)
	RPC struct {
		Bind string `default:"localhost"`
		Port int    `default:"18332"`
		User string `default:"regnode"`
		Pass string `default:"regnode"`
	}

	// ZMQ notification endpoints. A topic is only published when its
	// endpoint is configured, mirroring the -zmqpubhashtx and
	// -zmqpubhashblock node flags.
	ZMQ struct {
		PubHashTx    string `default:""`
		PubHashBlock string `default:""`
	}

	WebAdmin struct {
		Bind string `default:"localhost"`
		Port string `default:"8090"`
	}

	Store struct {
		// sqlite filename, or ":memory:" for a throwaway index
		DBFile string `default:"regnode.db"`
	}

	Loggers map[string]LoggersConfig
}

type LoggersConfig struct {
	Path  string
	Types []string
}

func LoadConfig(confPath string) Config {
	c := Config{}
	configor.Load(&c, confPath)
	return c
}

// TestConfig returns a config suitable for an in-process test node:
// in-memory store, ephemeral RPC port, no publisher endpoints.
func TestConfig(rpcPort int) Config {
	c := Config{}
	configor.Load(&c)
	c.RPC.Port = rpcPort
	c.Store.DBFile = ":memory:"
	return c
}
