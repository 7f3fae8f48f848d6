package main

import "github.com/tasktag/tasktag/cmd"

func main() {
	cmd.Execute()
}
