package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	cloudctlcmder "github.com/papercomputeco/cloudctl/cmd/cloudctl"
	"github.com/papercomputeco/cloudctl/pkg/cliui"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := cloudctlcmder.NewCloudctlCmd()
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", cliui.FailMark, err)
		stop()
		os.Exit(1)
	}
}
