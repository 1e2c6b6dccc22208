/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "pipeflow",
	Short: "Steady-state pipe-network flow solver",
	Long: `
pipeflow solves the coupled mass/momentum (and optionally energy)
balances of a pipe network by Newton-Raphson iteration and reports
per-element flows, pressures and temperatures.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.pipeflow.yaml)")
	rootCmd.PersistentFlags().String("frictionModel", "nikuradse", "friction correlation: nikuradse, swamee-jain or colebrook")
	rootCmd.PersistentFlags().Int("maxIterations", 100, "Newton iteration limit")
	if err := viper.BindPFlag("friction_model", rootCmd.PersistentFlags().Lookup("frictionModel")); err != nil {
		panic(err)
	}
	if err := viper.BindPFlag("max_iterations", rootCmd.PersistentFlags().Lookup("maxIterations")); err != nil {
		panic(err)
	}
	viper.SetDefault("tol_p", 1e-5)
	viper.SetDefault("tol_v", 1e-5)
	viper.SetDefault("tol_t", 1e-4)
	viper.SetDefault("damping", 1.0)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".pipeflow")
	}
	viper.SetEnvPrefix("pipeflow")
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}
