// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/penny-vault/pvscreen/provider"
	"github.com/spf13/cobra"
)

// providersCmd represents the providers command
var providersCmd = &cobra.Command{
	Use:   "providers <name>",
	Short: "List all providers available or get details about a specific provider",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		builder := strings.Builder{}

		if len(args) > 0 {
			dataProvider, err := provider.Get(args[0])
			if err != nil {
				fmt.Printf("Data Provider '%s' doesn't exist.\n", args[0])
				fmt.Printf("Run `pvscreen providers` for a complete list of available providers\n")
				os.Exit(1)
			}

			builder.WriteString(fmt.Sprintf("# %s\n", dataProvider.Name()))
			builder.WriteString(dataProvider.Description())
			builder.WriteString("\n\n## Configuration\n")

			config := dataProvider.ConfigDescription()
			keys := make([]string, 0, len(config))
			for k := range config {
				keys = append(keys, k)
			}
			sort.Strings(keys)

			for _, k := range keys {
				builder.WriteString(fmt.Sprintf("- `%s`: %s\n", k, config[k]))
			}
		} else {
			builder.WriteString("# Available Providers\n")
			for _, name := range provider.Names() {
				dataProvider := provider.Map[name]
				builder.WriteString(fmt.Sprintf("\n## %s (`%s`)\n", dataProvider.Name(), name))
				builder.WriteString(dataProvider.Description())
				builder.WriteString("\n")
			}
		}

		fmt.Print(renderMarkdown(builder.String()))
	},
}

func init() {
	rootCmd.AddCommand(providersCmd)
}
