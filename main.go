package main

import "tiered-scheduler/cmd"

func main() {
	cmd.Execute()
}
