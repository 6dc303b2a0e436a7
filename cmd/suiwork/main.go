package main

import "github.com/vietddude/suiwork/internal/cli"

func main() {
	cli.Execute()
}
