package storage

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	goMath "math"

	badger "github.com/dgraph-io/badger/v2"
	uuid "github.com/satori/go.uuid"
	log "github.com/sirupsen/logrus"
)

var (
	imagePrefix []byte = []byte("img/")
	pathPrefix  []byte = []byte("path/")
)

var (
	ImageNotFoundError error = errors.New("Image not found")
	EmptyPathError     error = errors.New("Image path is empty")
	PathTooLongError   error = errors.New("Image path is too long")
)

// ImageEntry describes one registered image. The index refers to images only by Id.
type ImageEntry struct {
	Id      uuid.UUID
	Path    string
	Width   int
	Height  int
	Regions int
}

// Catalog is the image registry. It maps image ids to their source files and keeps
// a path -> id mapping so that a file keeps its id across registrations.
type Catalog struct {
	db *badger.DB
}

// OpenCatalog opens a catalog in dir. An empty dir keeps the catalog in memory.
func OpenCatalog(dir string) (*Catalog, error) {
	logger := log.New()
	logger.SetLevel(log.WarnLevel)

	options := badger.LSMOnlyOptions(dir).WithLogger(logger)
	if dir == "" {
		options = options.WithInMemory(true)
	}

	db, err := badger.Open(options)
	if err != nil {
		return nil, err
	}
	return &Catalog{db: db}, nil
}

func (this *Catalog) Close() error {
	return this.db.Close()
}

// Register stores entry. A zero Id is replaced by the id previously registered for
// the same path, or by a new random id.
func (this *Catalog) Register(entry *ImageEntry) error {
	if entry.Path == "" {
		return EmptyPathError
	}
	if len(entry.Path) > goMath.MaxUint16 {
		return PathTooLongError
	}

	return this.db.Update(func(txn *badger.Txn) error {
		if uuid.Equal(entry.Id, uuid.Nil) {
			item, err := txn.Get(pathKey(entry.Path))
			if err == nil {
				if err := item.Value(func(val []byte) error {
					id, err := uuid.FromBytes(val)
					entry.Id = id
					return err
				}); err != nil {
					return err
				}
			} else if err == badger.ErrKeyNotFound {
				entry.Id = uuid.NewV4()
			} else {
				return err
			}
		}

		var buf bytes.Buffer
		if err := entry.save(&buf); err != nil {
			return err
		}
		if err := txn.Set(imageKey(entry.Id), buf.Bytes()); err != nil {
			return err
		}
		return txn.Set(pathKey(entry.Path), entry.Id.Bytes())
	})
}

func (this *Catalog) Get(id uuid.UUID) (*ImageEntry, error) {
	entry := &ImageEntry{}
	err := this.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(imageKey(id))
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return entry.load(bytes.NewReader(val))
		})
	})
	if err == badger.ErrKeyNotFound {
		return nil, ImageNotFoundError
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (this *Catalog) GetByPath(path string) (*ImageEntry, error) {
	var id uuid.UUID
	err := this.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(pathKey(path))
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			id, err = uuid.FromBytes(val)
			return err
		})
	})
	if err == badger.ErrKeyNotFound {
		return nil, ImageNotFoundError
	}
	if err != nil {
		return nil, err
	}
	return this.Get(id)
}

// List returns every registered image ordered by id.
func (this *Catalog) List() ([]*ImageEntry, error) {
	entries := make([]*ImageEntry, 0)
	err := this.db.View(func(txn *badger.Txn) error {
		iterOpt := badger.DefaultIteratorOptions
		iterOpt.Prefix = imagePrefix

		iterator := txn.NewIterator(iterOpt)
		defer iterator.Close()

		for iterator.Seek(imagePrefix); iterator.Valid(); iterator.Next() {
			entry := &ImageEntry{}
			err := iterator.Item().Value(func(val []byte) error {
				return entry.load(bytes.NewReader(val))
			})
			if err != nil {
				return err
			}
			entries = append(entries, entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func imageKey(id uuid.UUID) []byte {
	b := make([]byte, len(imagePrefix)+uuid.Size)
	copy(b, imagePrefix)
	copy(b[len(imagePrefix):], id.Bytes())
	return b
}

func pathKey(path string) []byte {
	return append(append([]byte{}, pathPrefix...), path...)
}

func (this *ImageEntry) save(w io.Writer) error {
	if _, err := w.Write(this.Id.Bytes()); err != nil {
		return err
	}
	if len(this.Path) > goMath.MaxUint16 {
		return PathTooLongError
	}
	if err := binary.Write(w, binary.BigEndian, uint16(len(this.Path))); err != nil {
		return err
	}
	if _, err := io.WriteString(w, this.Path); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, uint32(this.Width)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, uint32(this.Height)); err != nil {
		return err
	}
	return binary.Write(w, binary.BigEndian, uint32(this.Regions))
}

func (this *ImageEntry) load(r io.Reader) error {
	var uint16Val uint16
	var uint32Val uint32

	idBytes := make([]byte, uuid.Size)
	if _, err := io.ReadFull(r, idBytes); err != nil {
		return err
	}
	id, err := uuid.FromBytes(idBytes)
	if err != nil {
		return err
	}
	this.Id = id

	if err := binary.Read(r, binary.BigEndian, &uint16Val); err != nil {
		return err
	}
	pathBytes := make([]byte, uint16Val)
	if _, err := io.ReadFull(r, pathBytes); err != nil {
		return err
	}
	this.Path = string(pathBytes)

	if err := binary.Read(r, binary.BigEndian, &uint32Val); err != nil {
		return err
	}
	this.Width = int(uint32Val)

	if err := binary.Read(r, binary.BigEndian, &uint32Val); err != nil {
		return err
	}
	this.Height = int(uint32Val)

	if err := binary.Read(r, binary.BigEndian, &uint32Val); err != nil {
		return err
	}
	this.Regions = int(uint32Val)

	return nil
}
