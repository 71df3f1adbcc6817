package version

import (
	"fmt"
	"runtime"

	"github.com/lazysuperheroes/mission-cli/pkg/common"

	"github.com/urfave/cli/v2"
)

// VersionCommand prints build information
var VersionCommand = &cli.Command{
	Name:  "version",
	Usage: "Print the version of the mission CLI",
	Flags: append([]cli.Flag{}, common.GlobalFlags...),
	Action: func(cCtx *cli.Context) error {
		return VersionRun(cCtx)
	},
}

func VersionRun(cCtx *cli.Context) error {
	_, err := fmt.Fprintf(cCtx.App.Writer, "Version: %s\nCommit: %s\nGo: %s %s/%s\n",
		common.Version(), common.Commit(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
	return err
}
