package main

import "github.com/fwkit/insta360/cmd/instafw/cmd"

func main() {
	cmd.Execute()
}
