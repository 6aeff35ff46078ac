// Package journal keeps a history of deployment runs in badger
package journal

import (
	"errors"
	"sort"
	"time"

	"github.com/dgraph-io/badger"
	"github.com/fxamacker/cbor/v2"
)

var runPrefix = []byte("run/")

var ErrNotFound = errors.New("run not found")

// timestamps keep nanoseconds so runs started within the same second still order
var encMode = func() cbor.EncMode {
	em, err := cbor.EncOptions{Time: cbor.TimeRFC3339Nano}.EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Step one completed step of a run
type Step struct {
	Name   string    `cbor:"1,keyasint"`
	TxHash string    `cbor:"2,keyasint,omitempty"`
	Block  uint64    `cbor:"3,keyasint,omitempty"`
	Output string    `cbor:"4,keyasint,omitempty"`
	At     time.Time `cbor:"5,keyasint"`
}

// Run a single deployment attempt
type Run struct {
	ID        string    `cbor:"1,keyasint"`
	Network   string    `cbor:"2,keyasint"`
	ChainId   uint64    `cbor:"3,keyasint"`
	Contract  string    `cbor:"4,keyasint"`
	Address   string    `cbor:"5,keyasint,omitempty"`
	Steps     []Step    `cbor:"6,keyasint"`
	Status    Status    `cbor:"7,keyasint"`
	Err       string    `cbor:"8,keyasint,omitempty"`
	StartedAt time.Time `cbor:"9,keyasint"`
	EndedAt   time.Time `cbor:"10,keyasint,omitempty"`
}

type Journal struct {
	db *badger.DB
}

// Open opens or creates the journal stored in dir
func Open(dir string) (*Journal, error) {
	db, err := badger.Open(badger.DefaultOptions(dir))
	if err != nil {
		return nil, err
	}
	return &Journal{db: db}, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

// Put stores run, replacing an earlier version with the same id
func (j *Journal) Put(run *Run) error {
	data, err := encMode.Marshal(run)
	if err != nil {
		return err
	}
	return j.db.Update(func(txn *badger.Txn) error {
		return txn.Set(runKey(run.ID), data)
	})
}

func (j *Journal) Get(id string) (*Run, error) {
	var run Run
	err := j.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(runKey(id))
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		data, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		return cbor.Unmarshal(data, &run)
	})
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// List returns every run ordered by start time
func (j *Journal) List() ([]*Run, error) {
	var runs []*Run
	err := j.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(runPrefix); it.ValidForPrefix(runPrefix); it.Next() {
			data, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			var run Run
			if err := cbor.Unmarshal(data, &run); err != nil {
				return err
			}
			runs = append(runs, &run)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(runs, func(a, b int) bool {
		return runs[a].StartedAt.Before(runs[b].StartedAt)
	})
	return runs, nil
}

func runKey(id string) []byte {
	return append(append([]byte{}, runPrefix...), id...)
}
