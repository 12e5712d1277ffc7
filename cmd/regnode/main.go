package main

import (
	"encoding/json"
	"fmt"
	"os"

	regnode "github.com/dogecoinfoundation/regnode/pkg"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	// Load config
	var configPath string
	var config regnode.Config

	LoadConfig(configPath, &config)

	// define root command
	rootCmd := &cobra.Command{
		Use: "regnode",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
			os.Exit(0)
		},
	}

	// Add flags for each configuration option
	rootCmd.PersistentFlags().StringVar(&config.Node.Network, "network", "", "Chain network (main, test, regtest)")
	rootCmd.PersistentFlags().StringVar(&config.RPC.Bind, "rpc-bind", "", "RPC bind address")
	rootCmd.PersistentFlags().IntVar(&config.RPC.Port, "rpc-port", 0, "RPC port")
	rootCmd.PersistentFlags().StringVar(&config.RPC.User, "rpc-user", "", "RPC username")
	rootCmd.PersistentFlags().StringVar(&config.RPC.Pass, "rpc-pass", "", "RPC password")
	rootCmd.PersistentFlags().StringVar(&config.ZMQ.PubHashTx, "zmqpubhashtx", "", "Publish transaction hashes on this ZMQ endpoint")
	rootCmd.PersistentFlags().StringVar(&config.ZMQ.PubHashBlock, "zmqpubhashblock", "", "Publish block hashes on this ZMQ endpoint")
	rootCmd.PersistentFlags().StringVar(&config.WebAdmin.Bind, "webadmin-bind", "", "Web admin bind address")
	rootCmd.PersistentFlags().StringVar(&config.WebAdmin.Port, "webadmin-port", "", "Web admin port")
	rootCmd.PersistentFlags().StringVar(&config.Store.DBFile, "store-db-file", "", "Block index DB file")
	// Bind flags to config fields
	viper.BindPFlags(rootCmd.PersistentFlags())

	serverCmd := &cobra.Command{
		Use:   "server",
		Short: "Start the RegNode server",
		Run: func(cmd *cobra.Command, args []string) {
			Server(config)
		},
	}

	configCmd := &cobra.Command{
		Use:   "showconf",
		Short: "Print the config state and exit",
		Run: func(cmd *cobra.Command, args []string) {
			o, _ := json.MarshalIndent(config, ">", " ")
			fmt.Println(string(o))
			os.Exit(0)
		},
	}

	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(configCmd)

	// Execute the Cobra command
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
	}
}

func LoadConfig(configPath string, config *regnode.Config) {

	configFileName, set := os.LookupEnv("REGNODE_ENV")
	if set {
		viper.SetConfigName(configFileName)
	} else {
		viper.SetConfigName("config")
	}

	// Set config file name and search paths
	viper.SetConfigType("toml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/regnode/")
	viper.AddConfigPath("$HOME/.regnode")

	if err := viper.ReadInConfig(); err != nil {
		// no config file is fine, defaults and flags cover a dev node
		*config = regnode.LoadConfig("")
		return
	}

	if err := viper.Unmarshal(&config); err != nil {
		panic(fmt.Errorf("failed to unmarshal config: %s", err))
	}
}
