package main

import "github.com/buket/service/internal/cli"

func main() {
	cli.Execute()
}
