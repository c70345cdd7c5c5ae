package main

import "github.com/yotamroshuji/cheese-fork/cmd"

func main() {
	cmd.Execute()
}
