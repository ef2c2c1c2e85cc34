package main

import (
	"fmt"

	"github.com/alecthomas/kong"

	"github.com/broady/smartgen/cmd/smartgen/internal/check"
	"github.com/broady/smartgen/cmd/smartgen/internal/gen"
)

type CLI struct {
	Version VersionCmd `cmd:"" help:"Print version information."`
	Gen     gen.Cmd    `cmd:"" help:"Generate smart enum sources from compilation snapshots."`
	Check   check.Cmd  `cmd:"" help:"Report generated files that are missing or out of date."`
}

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Println(Version())
	return nil
}

func main() {
	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("smartgen"),
		kong.Description("Generates the members of smart enum classes."),
		kong.UsageOnError(),
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
