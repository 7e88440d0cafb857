package main

import "github.com/powdermilkjuno/habit-tracker/internal/cli"

func main() {
	cli.Execute()
}
