package main

import "skill-installer/internal/cli"

func main() {
	cli.Execute()
}
