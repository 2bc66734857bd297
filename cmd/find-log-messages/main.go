package main

import (
	"ciutils/pkg/runner"
	"ciutils/pkg/tools/findlogs"

	chassis "github.com/ai8future/chassis-go/v5"
)

func main() {
	chassis.RequireMajor(5)
	tool := findlogs.New()
	r := runner.NewRunner(tool)
	r.RunAndExit()
}
