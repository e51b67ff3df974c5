package main

import "github.com/pders01/schemasync/cmd"

func main() {
	cmd.Execute()
}
