package main

import "github.com/ValentinKolb/dSlot/cmd"

func main() {
	cmd.Execute()
}
