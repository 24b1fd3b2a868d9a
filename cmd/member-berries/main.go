package main

import "github.com/berrypatch/member-berries/internal/cli"

func main() {
	cli.Execute()
}
