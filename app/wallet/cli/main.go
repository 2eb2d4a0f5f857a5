package main

import "github.com/ardanlabs/starchain/app/wallet/cli/cmd"

func main() {
	cmd.Execute()
}
