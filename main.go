package main

import scour "github.com/varalys/scour/cmd/scour"

func main() { scour.Execute() }
