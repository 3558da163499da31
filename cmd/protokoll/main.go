package main

import "github.com/akave-ai/protokoll/internal/cmd"

func main() {
	cmd.Execute()
}
