// SPDX-License-Identifier: MPL-2.0

package main

import "github.com/ksearch/ksearch/cmd/ksearch"

func main() {
	cmd.Execute()
}
