package contract

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Built-in ABI IDs.
const (
	IDSwapper         = "swapper"
	IDToken           = "erc20"
	IDNFT             = "erc721"
	IDWithdrawalQueue = "withdrawal-queue"
)

// Builtin describes a contract interface whose ABI is embedded in the binary.
// Each one registers itself via init() in its own <name>_abi.go file.
type Builtin struct {
	ID          string
	Name        string
	Description string
	ABI         abi.ABI
}

var builtinRegistry = map[string]Builtin{}

// RegisterBuiltin parses abiJSON and adds it to the registry. A malformed ABI
// is a programming error and panics at init time.
func RegisterBuiltin(id, name, description, abiJSON string) {
	parsed, err := abi.JSON(strings.NewReader(abiJSON))
	if err != nil {
		panic(fmt.Sprintf("builtin ABI %q: %v", id, err))
	}
	builtinRegistry[id] = Builtin{ID: id, Name: name, Description: description, ABI: parsed}
}

// GetBuiltin returns a built-in by ID. ok is false if not found.
func GetBuiltin(id string) (Builtin, bool) {
	b, ok := builtinRegistry[id]
	return b, ok
}

// MustABI returns the parsed ABI of a registered built-in.
func MustABI(id string) abi.ABI {
	b, ok := builtinRegistry[id]
	if !ok {
		panic("unknown builtin ABI " + id)
	}
	return b.ABI
}

// AllBuiltins returns all registered built-ins sorted by ID.
func AllBuiltins() []Builtin {
	out := make([]Builtin, 0, len(builtinRegistry))
	for _, b := range builtinRegistry {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
