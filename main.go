package main

import "github.com/jobpilot/jobpilot/cmd"

func main() {
	cmd.Execute()
}
