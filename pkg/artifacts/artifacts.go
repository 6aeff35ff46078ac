// Package artifacts loads compiled contract artifacts in the Hardhat layout
// (artifacts/contracts/<Source>.sol/<Name>.json).
package artifacts

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/bluele/gcache"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

const cacheSize = 64

var (
	ErrNotFound      = errors.New("artifact not found")
	ErrNotDeployable = errors.New("artifact has no bytecode")

	errFound = errors.New("found")
)

// Artifact compiled contract
type Artifact struct {
	ContractName string
	SourceName   string
	ABI          abi.ABI
	Bytecode     []byte
}

type hardhatArtifact struct {
	ContractName string          `json:"contractName"`
	SourceName   string          `json:"sourceName"`
	ABI          json.RawMessage `json:"abi"`
	Bytecode     string          `json:"bytecode"`
}

// Store resolves artifacts by contract name below a root directory
type Store struct {
	root  string
	cache gcache.Cache
}

func NewStore(root string) *Store {
	s := &Store{root: root}
	s.cache = gcache.New(cacheSize).LRU().LoaderFunc(func(key interface{}) (interface{}, error) {
		return s.load(key.(string))
	}).Build()
	return s
}

// Load returns the artifact of the named contract
func (s *Store) Load(name string) (*Artifact, error) {
	v, err := s.cache.Get(name)
	if err != nil {
		return nil, err
	}
	return v.(*Artifact), nil
}

func (s *Store) load(name string) (*Artifact, error) {
	path, err := s.find(name)
	if err != nil {
		return nil, err
	}

	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}

	art, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(art.Bytecode) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotDeployable, name)
	}
	return art, nil
}

// find walks the root for <name>.json, skipping Hardhat debug files
func (s *Store) find(name string) (string, error) {
	var found string
	target := name + ".json"

	err := filepath.Walk(s.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() && info.Name() == "build-info" {
			return filepath.SkipDir
		}
		if !info.IsDir() && info.Name() == target {
			found = path
			return errFound
		}
		return nil
	})
	if err != nil && err != errFound {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s in %s", ErrNotFound, name, s.root)
		}
		return "", err
	}
	if found == "" {
		return "", fmt.Errorf("%w: %s in %s", ErrNotFound, name, s.root)
	}
	return found, nil
}

// Parse decodes a single Hardhat artifact file
func Parse(data []byte) (*Artifact, error) {
	var raw hardhatArtifact
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if len(raw.ABI) == 0 {
		return nil, errors.New("missing abi")
	}

	parsed, err := abi.JSON(bytes.NewReader(raw.ABI))
	if err != nil {
		return nil, fmt.Errorf("abi: %w", err)
	}

	var code []byte
	if bc := strings.TrimSpace(raw.Bytecode); bc != "" && bc != "0x" {
		code, err = hexutil.Decode(bc)
		if err != nil {
			return nil, fmt.Errorf("bytecode: %w", err)
		}
	}

	return &Artifact{
		ContractName: raw.ContractName,
		SourceName:   raw.SourceName,
		ABI:          parsed,
		Bytecode:     code,
	}, nil
}
