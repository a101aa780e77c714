package main

import "policymatcher/cmd/ctl/cmd"

func main() {
	cmd.Execute()
}
