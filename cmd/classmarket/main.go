package main

import "github.com/moneyhub/classmarket/internal/cli"

func main() {
	cli.Execute()
}
