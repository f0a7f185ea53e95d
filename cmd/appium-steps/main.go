package main

import "github.com/devicelab-dev/appium-steps/pkg/cli"

func main() {
	cli.Execute()
}
