package main

import "smell-bot/src/handler/cli"

func main() {
	cli.Run()
}
