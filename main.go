package main

import "github.com/aiblame/aiblame/cmd/ai-blame/commands"

func main() {
	commands.Execute()
}
