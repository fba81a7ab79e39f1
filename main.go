package main

import "github.com/mediconnect/mediconnect_backend/cmd"

func main() {
	cmd.Execute()
}
