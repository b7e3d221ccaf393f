package main

import "github.com/neoburger/burgerctl/cmd"

func main() {
	cmd.Execute()
}
