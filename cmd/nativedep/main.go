package main

import "github.com/contriboss/nativedep-go/cmd/nativedep/internal"

func main() {
	internal.Execute()
}
