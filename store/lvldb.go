package store

import (
	"errors"

	"github.com/syndtr/goleveldb/leveldb"
)

var ErrNotFound = errors.New("key not found")

type KeyValueReaderWriter interface {
	GetByKey(key []byte) ([]byte, error)
	SetByKey(key []byte, value []byte) error
}

// LvlDB is a file-backed key-value store used for optimistic order state that
// has to survive restarts.
type LvlDB struct {
	db *leveldb.DB
}

func NewLvlDB(path string) (*LvlDB, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}

	return &LvlDB{db: db}, nil
}

func (l *LvlDB) GetByKey(key []byte) ([]byte, error) {
	value, err := l.db.Get(key, nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return value, nil
}

func (l *LvlDB) SetByKey(key []byte, value []byte) error {
	return l.db.Put(key, value, nil)
}

func (l *LvlDB) Close() error {
	return l.db.Close()
}
