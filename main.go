package main

import "github.com/Mohsinsiddi/swapctl/cmd"

func main() {
	cmd.Execute()
}
