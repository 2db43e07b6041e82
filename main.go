package main

import "github.com/linqiyu/coffeesim/cmd"

func main() {
	cmd.Execute()
}
