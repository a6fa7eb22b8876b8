// main.go - Einstiegspunkt des tensorbind CLI
package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/7blacky7/tensorbind/cmd"
	_ "github.com/7blacky7/tensorbind/ml/backend/mem"
)

func main() {
	cobra.CheckErr(cmd.NewCLI().ExecuteContext(context.Background()))
}
