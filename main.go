package main

import "taskpilot/cmd"

func main() {
	cmd.Execute()
}
