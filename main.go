package main

import "github.com/skillforge/excel-interview/cmd"

func main() {
	cmd.Execute()
}
