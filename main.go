package main

import "noteforge/quill/cmd"

func main() {
	cmd.Execute()
}
