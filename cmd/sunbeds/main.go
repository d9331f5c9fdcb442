package main

import "github.com/oshokin/sunbed-manager/cmd/sunbeds/cmd"

func main() {
	cmd.Execute()
}
