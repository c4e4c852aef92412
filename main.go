package main

import "github.com/foxtrapper121/timewarp/cmd"

func main() {
	cmd.Execute()
}
