package main

import "github.com/Hipuranyhou/macfand/pkg/cli"

func main() {
	cli.Execute()
}
