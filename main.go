package main

import "score-ledger/cmd"

func main() {
	cmd.Execute()
}
