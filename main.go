// ./main.go
package main

import (
	"github.com/xkilldash9x/boxgeom/cmd"
)

func main() {
	cmd.Execute()
}
