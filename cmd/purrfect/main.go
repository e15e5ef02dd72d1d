// Command purrfect is the Purrfect Ventures business guru CLI.
package main

import "github.com/diogo/purrfect/internal/commands"

func main() {
	commands.Execute()
}
