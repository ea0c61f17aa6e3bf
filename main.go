package main

import "github.com/douhashi/oyakata/cmd"

func main() {
	cmd.Execute()
}
