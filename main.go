package main

import (
	_ "time/tzdata"

	"github.com/sadopc/worktime/cmd"
)

func main() {
	cmd.Execute()
}
