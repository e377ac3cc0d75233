package main

import (
        "os"

        "dataflow-cli/internal/cli"
        "dataflow-cli/internal/logging"
)

func main() {
        cmd := cli.NewRootCmd()
        err := cmd.Execute()
        logging.Shutdown()
        if err != nil {
                os.Exit(1)
        }
}
