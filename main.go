package main

import "github.com/threadmark/threadmark/cmd"

func main() {
	cmd.Execute()
}
