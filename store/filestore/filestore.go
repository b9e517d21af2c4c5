// Package filestore keeps rules in plain files on a billy filesystem.
//
// Each file is a sequence of rows. A row is its size followed by columns, and
// a column is its id, its size and its bytes. All integers are little endian
// uint32.
package filestore

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/google/uuid"

	"github.com/jvitoroc/gorules/store"
)

const (
	rulesFile    = "rules"
	metadataFile = "metadata"
)

const (
	ruleIDColumn uint32 = iota + 1
	ruleNameColumn
	ruleTextColumn
)

const (
	metadataKeyColumn uint32 = iota + 1
	metadataValueColumn
)

type Store struct {
	mu       sync.Mutex
	fs       billy.Filesystem
	rules    []*store.Rule
	metadata map[string]string
}

var _ store.Store = (*Store)(nil)

// Open keeps rules in the directory at path, creating it if needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("create rules directory %q: %w", path, err)
	}

	return New(osfs.New(path))
}

// New loads whatever rules and metadata fs already holds.
func New(fs billy.Filesystem) (*Store, error) {
	s := &Store{
		fs:       fs,
		metadata: make(map[string]string),
	}

	rows, err := s.readFile(rulesFile)
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		id := row[ruleIDColumn]
		if len(id) != 4 {
			return nil, fmt.Errorf("%s: invalid rule id", rulesFile)
		}

		s.rules = append(s.rules, &store.Rule{
			ID:   binary.LittleEndian.Uint32(id),
			Name: string(row[ruleNameColumn]),
			Text: string(row[ruleTextColumn]),
		})
	}

	rows, err = s.readFile(metadataFile)
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		s.metadata[string(row[metadataKeyColumn])] = string(row[metadataValueColumn])
	}

	return s, nil
}

func (s *Store) Store(_ context.Context, name, text string) error {
	if name == "" {
		return store.ErrInvalidName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rules := make([]*store.Rule, 0, len(s.rules)+1)
	found := false
	for _, r := range s.rules {
		if r.Name == name {
			updated := *r
			updated.Text = text
			r = &updated
			found = true
		}
		rules = append(rules, r)
	}
	if !found {
		rules = append(rules, &store.Rule{
			ID:   uuid.New().ID(),
			Name: name,
			Text: text,
		})
	}

	if err := s.writeRules(rules); err != nil {
		return err
	}
	s.rules = rules

	return nil
}

func (s *Store) Fetch(_ context.Context, name string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.getRule(name)
	if r == nil {
		return "", false, nil
	}

	return r.Text, true, nil
}

func (s *Store) List(_ context.Context) ([]store.Rule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rules := make([]store.Rule, len(s.rules))
	for i, r := range s.rules {
		rules[i] = *r
	}

	slices.SortFunc(rules, func(a, b store.Rule) int {
		return strings.Compare(a.Name, b.Name)
	})

	return rules, nil
}

func (s *Store) Remove(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rules := slices.DeleteFunc(slices.Clone(s.rules), func(r *store.Rule) bool {
		return r.Name == name
	})

	if len(rules) == len(s.rules) {
		return nil
	}

	if err := s.writeRules(rules); err != nil {
		return err
	}
	s.rules = rules

	return nil
}

func (s *Store) SetMetadata(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	metadata := maps.Clone(s.metadata)
	metadata[key] = value

	if err := s.writeMetadata(metadata); err != nil {
		return err
	}
	s.metadata = metadata

	return nil
}

func (s *Store) Metadata(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.metadata[key]

	return v, ok, nil
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) getRule(name string) *store.Rule {
	for _, r := range s.rules {
		if r.Name == name {
			return r
		}
	}

	return nil
}

// The write methods take the state to persist so that callers only commit it
// to memory once it is on disk.
func (s *Store) writeRules(rules []*store.Rule) error {
	rows := make([]map[uint32][]byte, len(rules))
	for i, r := range rules {
		id := make([]byte, 4)
		binary.LittleEndian.PutUint32(id, r.ID)

		rows[i] = map[uint32][]byte{
			ruleIDColumn:   id,
			ruleNameColumn: []byte(r.Name),
			ruleTextColumn: []byte(r.Text),
		}
	}

	return s.writeFile(rulesFile, rows, []uint32{ruleIDColumn, ruleNameColumn, ruleTextColumn})
}

func (s *Store) writeMetadata(metadata map[string]string) error {
	keys := slices.Sorted(maps.Keys(metadata))

	rows := make([]map[uint32][]byte, len(keys))
	for i, k := range keys {
		rows[i] = map[uint32][]byte{
			metadataKeyColumn:   []byte(k),
			metadataValueColumn: []byte(metadata[k]),
		}
	}

	return s.writeFile(metadataFile, rows, []uint32{metadataKeyColumn, metadataValueColumn})
}

func (s *Store) writeFile(name string, rows []map[uint32][]byte, columns []uint32) error {
	file, err := s.fs.OpenFile(name, os.O_TRUNC|os.O_WRONLY|os.O_CREATE, 0o666)
	if err != nil {
		return err
	}

	buf := &bytes.Buffer{}
	for _, row := range rows {
		buf.Write(serializeRow(row, columns))
	}

	if _, err := file.Write(buf.Bytes()); err != nil {
		file.Close()
		return fmt.Errorf("an error occurred writing %s to disk: %w", name, err)
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("an error occurred writing %s to disk: %w", name, err)
	}

	return nil
}

func (s *Store) readFile(name string) ([]map[uint32][]byte, error) {
	file, err := s.fs.Open(name)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	rows, err := readRows(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	return rows, nil
}

func serializeRow(row map[uint32][]byte, columns []uint32) []byte {
	var body []byte

	int32Bytes := make([]byte, 4)
	for _, c := range columns {
		binary.LittleEndian.PutUint32(int32Bytes, c)
		body = append(body, int32Bytes...) // column id

		binary.LittleEndian.PutUint32(int32Bytes, uint32(len(row[c])))
		body = append(body, int32Bytes...) // column size

		body = append(body, row[c]...)
	}

	blob := make([]byte, 4, 4+len(body))
	binary.LittleEndian.PutUint32(blob, uint32(len(body)))

	return append(blob, body...)
}

// readRows decodes rows until r is drained. Sizes are checked against what is
// left in r before anything is allocated for them.
func readRows(r *bytes.Reader) ([]map[uint32][]byte, error) {
	var rows []map[uint32][]byte

	rowSizeBytes := make([]byte, 4)
	for {
		_, err := io.ReadFull(r, rowSizeBytes)
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}

		rowBytes, err := makeSized(r, rowSizeBytes)
		if err != nil {
			return nil, err
		}
		if _, err := io.ReadFull(r, rowBytes); err != nil {
			return nil, err
		}

		row, err := deserializeRow(rowBytes)
		if err != nil {
			return nil, err
		}

		rows = append(rows, row)
	}
}

func deserializeRow(row []byte) (map[uint32][]byte, error) {
	r := bytes.NewReader(row)
	mappedRow := make(map[uint32][]byte)

	int32Bytes := make([]byte, 4)
	for {
		_, err := io.ReadFull(r, int32Bytes)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		columnID := binary.LittleEndian.Uint32(int32Bytes)

		if _, err := io.ReadFull(r, int32Bytes); err != nil {
			return nil, err
		}

		value, err := makeSized(r, int32Bytes)
		if err != nil {
			return nil, err
		}
		if _, err := io.ReadFull(r, value); err != nil {
			return nil, err
		}

		mappedRow[columnID] = value
	}

	return mappedRow, nil
}

func makeSized(r *bytes.Reader, sizeBytes []byte) ([]byte, error) {
	size := binary.LittleEndian.Uint32(sizeBytes)
	if int64(size) > int64(r.Len()) {
		return nil, fmt.Errorf("size %d exceeds the %d bytes left: %w", size, r.Len(), io.ErrUnexpectedEOF)
	}

	return make([]byte, size), nil
}
