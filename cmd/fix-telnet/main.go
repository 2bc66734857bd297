package main

import (
	"ciutils/pkg/runner"
	"ciutils/pkg/tools/fixtelnet"

	chassis "github.com/ai8future/chassis-go/v5"
)

func main() {
	chassis.RequireMajor(5)
	tool := fixtelnet.New()
	r := runner.NewRunner(tool)
	r.RunAndExit()
}
