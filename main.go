package main

import "github.com/getfoundry/unbrowse-mcp-sub003/cmd"

// Version can be set during build with -ldflags
var version = "dev"

func main() {
	cmd.SetVersion(version)
	cmd.Execute()
}
