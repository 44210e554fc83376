package main

import "Pantry-Planner/cmd"

func main() {
	cmd.Execute()
}
