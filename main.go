package main

import (
	"fmt"
	"os"
)

const version = "0.1.0"

func main() {
	Execute()
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "floaty: "+format+"\n", args...)
	os.Exit(1)
}
