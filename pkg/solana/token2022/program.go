package token2022

import (
	"bytes"
	"crypto/ed25519"
	"math"

	"github.com/pkg/errors"

	"github.com/code-payments/token22-sdk/pkg/solana"
)

// ProgramKey is the address of the token-2022 (token extensions) program.
//
// Current key: TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb
var ProgramKey = ed25519.PublicKey{6, 221, 246, 225, 238, 117, 143, 222, 24, 66, 93, 188, 228, 108, 205, 218, 182, 26, 252, 77, 131, 185, 13, 39, 254, 189, 249, 40, 216, 161, 139, 252}

type Command byte

// Commands shared with the legacy token program keep their original values;
// extension commands occupy the range above them.
//
// Reference: https://github.com/solana-labs/solana-program-library/blob/master/token/program-2022/src/instruction.rs
const (
	// nolint:varcheck,deadcode,unused
	CommandInitializeMint Command = 0
	// nolint:varcheck,deadcode,unused
	CommandInitializeAccount Command = 1
	// nolint:varcheck,deadcode,unused
	CommandTransfer Command = 3
	// nolint:varcheck,deadcode,unused
	CommandSetAuthority Command = 6
	// nolint:varcheck,deadcode,unused
	CommandCloseAccount Command = 9
	// nolint:varcheck,deadcode,unused
	CommandTransferChecked Command = 12

	CommandInitializeAccount3 Command = 18
	CommandInitializeMint2    Command = 20

	CommandInitializeImmutableOwner      Command = 22
	CommandInitializeMintCloseAuthority  Command = 25
	CommandTransferFeeExtension          Command = 26
	CommandConfidentialTransferExtension Command = 27
	CommandDefaultAccountStateExtension  Command = 28
	CommandReallocate                    Command = 29
	CommandMemoTransferExtension         Command = 30
	CommandInitializeNonTransferableMint Command = 32
	CommandInterestBearingMintExtension  Command = 33
	CommandCpiGuardExtension             Command = 34
	CommandInitializePermanentDelegate   Command = 35
	CommandTransferHookExtension         Command = 36
	CommandMetadataPointerExtension      Command = 39
	CommandGroupPointerExtension         Command = 40
	CommandGroupMemberPointerExtension   Command = 41

	CommandUnknown = Command(math.MaxUint8)
)

// Sub-commands for the prefixed extension instructions. Each extension
// family reserves 0 for its initializer (or enable toggle).
const (
	subCommandInitialize byte = 0
	// nolint:varcheck,deadcode,unused
	subCommandUpdateOrDisable byte = 1
)

func GetCommand(m solana.Message, index int) (Command, error) {
	if index >= len(m.Instructions) {
		return CommandUnknown, errors.Errorf("instruction doesn't exist at %d", index)
	}

	i := m.Instructions[index]

	if !bytes.Equal(m.Accounts[i.ProgramIndex], ProgramKey) {
		return CommandUnknown, solana.ErrIncorrectProgram
	}
	if len(i.Data) == 0 {
		return CommandUnknown, errors.New("token instruction missing data")
	}

	return Command(i.Data[0]), nil
}
