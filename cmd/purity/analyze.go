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

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/google/go-script-purity/pkg/scriptpurity"
)

var analyzeJSON bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze [files...]",
	Short: "Annotate every call with its side-effect flags",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		program, externs, err := readSources(args)
		if err != nil {
			return err
		}
		result, err := scriptpurity.Analyze(program, scriptpurity.Options{
			Externs:    externs,
			ConfigPath: viper.GetString("config"),
		})
		if err != nil {
			return err
		}
		if analyzeJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}
		for _, call := range result.Calls {
			fmt.Printf("%s\t%s %s\t%s\n", call.Pos, call.Kind, call.Callee, call.Flags)
		}
		return nil
	},
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "emit JSON instead of text")
	rootCmd.AddCommand(analyzeCmd)
}
