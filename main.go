package main

import "github.com/vibast-solutions/ms-go-tablelocks/cmd"

func main() {
	cmd.Execute()
}
