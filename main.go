package main

import "github.com/chris/orgstats/cmd"

func main() {
	cmd.Execute()
}
