package commands

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/lazysuperheroes/mission-cli/pkg/common"
	"github.com/lazysuperheroes/mission-cli/pkg/common/contracts"
	"github.com/lazysuperheroes/mission-cli/pkg/hedera"
	"github.com/urfave/cli/v2"
)

var missionTokenFlag = &cli.StringFlag{
	Name:     "token",
	Aliases:  []string{"t"},
	Usage:    "NFT collection of the serials, as token id or EVM address",
	Required: true,
}

// MissionCommand operates a single mission. The mission comes from --contract,
// MISSION_CONTRACT_ID or the manifest.
var MissionCommand = opGroup{
	Name:     "mission",
	Usage:    "Enter, leave and administer a mission",
	Contract: contracts.MissionContract,
	Ops: []contractOp{
		{Name: "users", Usage: "List the users currently on the mission", Method: "getUsersOnMission"},
		{Name: "slots", Usage: "Show the remaining slots", Method: "getSlotsRemaining"},
		{Name: "requirements", Usage: "Show the collections and serials the mission accepts", Method: "getRequirements"},
		{
			Name:      "enter",
			Usage:     "Enter the mission with NFTs of one collection",
			ArgsUsage: "<serials...>",
			Method:    "enterMission",
			Mutating:  true,
			Flags:     []cli.Flag{missionTokenFlag},
			Args:      enterMissionArgs,
		},
		{Name: "leave", Usage: "Leave the mission and withdraw the NFTs", Method: "leaveMission", Mutating: true},
		{Name: "claim", Usage: "Claim the rewards of a finished mission", Method: "claimRewards", Mutating: true},
		{Name: "pause", Usage: "Pause the mission", Method: "updatePauseStatus", Mutating: true, Args: pauseArgs(true)},
		{Name: "unpause", Usage: "Resume the mission", Method: "updatePauseStatus", Mutating: true, Args: pauseArgs(false)},
	},
	Extra: []*cli.Command{
		viewsCommand("info", "Show the mission state", contracts.MissionContract,
			"entryFee", "getSlotsRemaining", "getUsersOnMission", "isPaused", "getDecrementDetails"),
	},
}.command()

// enterMissionArgs builds the parallel collection/serial arrays enterMission
// takes from one --token and a list of serials
func enterMissionArgs(cCtx *cli.Context, _ *common.Session, m abi.Method) ([]any, error) {
	if !isCollectionArrays(m) {
		return nil, fmt.Errorf("%s does not take collection and serial arrays", m.Name)
	}
	token, err := hedera.ResolveAddress(cCtx.String("token"))
	if err != nil {
		return nil, fmt.Errorf("--token: %w", err)
	}
	serials, err := parseSerials(cCtx.Args().Slice())
	if err != nil {
		return nil, err
	}
	return collectionArrays(token, serials), nil
}

func pauseArgs(paused bool) func(*cli.Context, *common.Session, abi.Method) ([]any, error) {
	return func(cCtx *cli.Context, _ *common.Session, m abi.Method) ([]any, error) {
		if cCtx.Args().Present() {
			return nil, fmt.Errorf("%s takes no arguments", cCtx.Command.Name)
		}
		if len(m.Inputs) != 1 || m.Inputs[0].Type.T != abi.BoolTy {
			return nil, fmt.Errorf("%s does not take a single bool", m.Name)
		}
		return []any{paused}, nil
	}
}

// collectionArrays expands one token and its serials into the parallel
// address[]/uint256[] inputs the mission and staking contracts take
func collectionArrays(token ethcommon.Address, serials []*big.Int) []any {
	collections := make([]ethcommon.Address, len(serials))
	for i := range collections {
		collections[i] = token
	}
	return []any{collections, serials}
}

// isCollectionArrays reports whether m takes (address[], uint256[])
func isCollectionArrays(m abi.Method) bool {
	if len(m.Inputs) != 2 {
		return false
	}
	a, b := m.Inputs[0].Type, m.Inputs[1].Type
	return a.T == abi.SliceTy && a.Elem.T == abi.AddressTy &&
		b.T == abi.SliceTy && b.Elem.T == abi.UintTy
}
