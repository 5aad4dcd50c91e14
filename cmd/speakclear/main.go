package main

import "github.com/speakclear-dev/speakclear/internal/cli"

func main() {
	cli.Execute()
}
