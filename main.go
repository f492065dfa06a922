package main

import "mspro-labs/price-scout/cmd"

func main() {
	cmd.Execute()
}
