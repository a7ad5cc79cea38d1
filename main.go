package main

import "github.com/nearzap/nearzap/cli"

func main() {
	cli.Run()
}
