package main

import "sdkgen/internal/cli"

func main() {
	cli.Execute()
}
