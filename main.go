package main

import "inventory-counter/cmd"

func main() {
	cmd.Execute()
}
