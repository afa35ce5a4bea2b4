// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/fusion-energy/devsetup/cmd/devsetup"

func main() {
	cmd.Execute()
}
