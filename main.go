package main

import "codec/cmd"

func main() {
	cmd.Execute()
}
