// Command skylos finds Python dead code: unused functions, methods,
// classes, imports, variables, parameters, and whole files.
package main

import "github.com/duriantaco/skylos-go/cmd"

func main() {
	cmd.Execute()
}
