package main

import "github.com/beanboi7/chyp-8/cmd"

func main() {
	cmd.Execute()
}
