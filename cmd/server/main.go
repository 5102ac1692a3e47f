package main

import "github.com/iliyamo/table-reservation/internal/cli"

func main() { cli.Execute() }
