package main

import "github.com/relloyd/survey2sql/cmd"

func main() {
	cmd.Execute()
}
