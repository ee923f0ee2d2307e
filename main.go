package main

import "github.com/Mohsinsiddi/bonded/cmd"

func main() {
	cmd.Execute()
}
