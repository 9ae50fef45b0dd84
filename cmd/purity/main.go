// Copyright 2021 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// The purity command runs the whole-program call purity analysis over
// script sources and reports the side-effect flags of every invocation.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "purity",
	Short: "Whole-program call purity analysis",
	Long: `purity analyzes a script program together with its declared externs and
computes, for every call expression, whether the call may mutate global
state, mutate its receiver, mutate its arguments, throw, or return a
value aliasing non-local state.

  purity analyze program.js --externs env.js
  purity graph program.js > callgraph.dot`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("externs", "", "path to the externs file")
	rootCmd.PersistentFlags().String("config", "", "path to a YAML file extending the builtin purity tables")
	_ = viper.BindPFlag("externs", rootCmd.PersistentFlags().Lookup("externs"))
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	viper.SetEnvPrefix("purity")
	viper.AutomaticEnv()
}

func readSources(args []string) (program, externs string, err error) {
	var src []byte
	for _, path := range args {
		b, err := os.ReadFile(path)
		if err != nil {
			return "", "", err
		}
		src = append(src, b...)
		src = append(src, '\n')
	}
	if path := viper.GetString("externs"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return "", "", err
		}
		externs = string(b)
	}
	return string(src), externs, nil
}
