// cmd/yolometrics/main.go
package main

import (
	cmd "github.com/mwiater/yolometrics/internal/cli"
)

// main starts the yolometrics CLI by delegating to the cobra root command defined in the cli
// package.
func main() {
	cmd.Execute()
}
