// Package domainstest provides a deployable stand-in for the Domains
// contract, assembled by hand so tests need no solidity toolchain.
//
// The stand-in keys its storage by the first 32 bytes of the name, so
// names must not exceed 32 bytes. It implements:
//
//	register(name)       reverts when taken or when msg.value < Price
//	setRecord(name, _)   reverts unless msg.sender owns name, record is dropped
//	getAddress(name)     owner of name
//	price(name)          Price
//
// Any other selector reverts.
package domainstest

import (
	"encoding/json"
	"io/ioutil"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/params"
	"github.com/korthochain/domains/pkg/artifacts"
	"github.com/korthochain/domains/pkg/domains"
)

// Price registration fee charged by the stand-in, 0.1 ether
var Price = new(big.Int).Div(big.NewInt(params.Ether), big.NewInt(10))

// EVM opcodes used by the stand-in
const (
	opStop         = 0x00
	opLt           = 0x10
	opEq           = 0x14
	opIsZero       = 0x15
	opShr          = 0x1c
	opCaller       = 0x33
	opCallValue    = 0x34
	opCallDataLoad = 0x35
	opCodeCopy     = 0x39
	opMStore       = 0x52
	opSLoad        = 0x54
	opSStore       = 0x55
	opJumpI        = 0x57
	opJumpDest     = 0x5b
	opPush1        = 0x60
	opPush4        = 0x63
	opPush8        = 0x67
	opDup1         = 0x80
	opSwap1        = 0x90
	opReturn       = 0xf3
	opRevert       = 0xfd
)

// calldata offsets of the first string argument's data word
const (
	nameOneArg  = 0x44
	nameTwoArgs = 0x64
)

type assembler struct {
	code   []byte
	labels map[string]int
	refs   map[int]string
}

func newAssembler() *assembler {
	return &assembler{labels: map[string]int{}, refs: map[int]string{}}
}

func (a *assembler) op(b ...byte) {
	a.code = append(a.code, b...)
}

func (a *assembler) label(name string) {
	a.labels[name] = len(a.code)
	a.op(opJumpDest)
}

func (a *assembler) jumpi(label string) {
	a.op(opPush1)
	a.refs[len(a.code)] = label
	a.op(0, opJumpI)
}

func (a *assembler) returnWord() {
	a.op(opPush1, 0, opMStore, opPush1, 0x20, opPush1, 0, opReturn)
}

func (a *assembler) assemble() []byte {
	for pos, label := range a.refs {
		a.code[pos] = byte(a.labels[label])
	}
	return a.code
}

// Bytecode creation code of the stand-in, constructor arguments are ignored
func Bytecode() []byte {
	parsed, err := abi.JSON(strings.NewReader(domains.ABI))
	if err != nil {
		panic(err)
	}

	price := make([]byte, 8)
	Price.FillBytes(price)

	a := newAssembler()
	a.op(opPush1, 0, opCallDataLoad, opPush1, 0xe0, opShr)
	for _, m := range []string{"register", "setRecord", "getAddress", "price"} {
		a.op(opDup1, opPush4)
		a.op(parsed.Methods[m].ID...)
		a.op(opEq)
		a.jumpi(m)
	}
	a.label("fail")
	a.op(opPush1, 0, opDup1, opRevert)

	a.label("register")
	a.op(opPush8)
	a.op(price...)
	a.op(opCallValue, opLt)
	a.jumpi("fail")
	a.op(opPush1, nameOneArg, opCallDataLoad, opDup1, opSLoad)
	a.jumpi("fail")
	a.op(opCaller, opSwap1, opSStore, opStop)

	a.label("setRecord")
	a.op(opPush1, nameTwoArgs, opCallDataLoad, opSLoad, opCaller, opEq, opIsZero)
	a.jumpi("fail")
	a.op(opStop)

	a.label("getAddress")
	a.op(opPush1, nameOneArg, opCallDataLoad, opSLoad)
	a.returnWord()

	a.label("price")
	a.op(opPush8)
	a.op(price...)
	a.returnWord()

	runtime := a.assemble()
	initCode := []byte{
		opPush1, byte(len(runtime)), opDup1,
		opPush1, 0x0b, opPush1, 0, opCodeCopy,
		opPush1, 0, opReturn,
	}
	return append(initCode, runtime...)
}

// Artifact the stand-in as a loaded artifact
func Artifact() *artifacts.Artifact {
	parsed, err := abi.JSON(strings.NewReader(domains.ABI))
	if err != nil {
		panic(err)
	}
	return &artifacts.Artifact{
		ContractName: domains.ContractName,
		SourceName:   "contracts/Domains.sol",
		ABI:          parsed,
		Bytecode:     Bytecode(),
	}
}

// WriteArtifact writes the stand-in below root in the Hardhat layout
func WriteArtifact(root string) error {
	dir := filepath.Join(root, "contracts", "Domains.sol")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.Marshal(map[string]interface{}{
		"_format":      "hh-sol-artifact-1",
		"contractName": domains.ContractName,
		"sourceName":   "contracts/Domains.sol",
		"abi":          json.RawMessage(domains.ABI),
		"bytecode":     hexutil.Encode(Bytecode()),
	})
	if err != nil {
		return err
	}
	return ioutil.WriteFile(filepath.Join(dir, domains.ContractName+".json"), data, 0644)
}
