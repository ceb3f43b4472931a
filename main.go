package main

import "github.com/dedsec995/sage/cmd"

func main() {
	cmd.Execute()
}
