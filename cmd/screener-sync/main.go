package main

import (
	"screener-sync/cmd/screener-sync/commands"
	"screener-sync/internal/components/serviceutil"
)

func main() {
	ctx, stop := serviceutil.SignalContext()
	defer stop()
	commands.ExecuteContext(ctx)
}
