package main

import "github.com/papapumpkin/bundlegen/cmd"

func main() {
	cmd.Execute()
}
